// Package runloop provides the single control thread on which the player graph
// runs. Work produced on other goroutines (engine timers, HTTP handlers) is
// posted to it instead of touching the graph directly.
package runloop

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrStopped is returned when work is posted to a loop that is no longer running
var ErrStopped = errors.New("run loop stopped")

// Executor runs tasks on the control thread
type Executor interface {
	Post(task func())
}

// Inline runs every task immediately on the caller's goroutine. It is the
// executor of choice for tests and for hosts that already serialize calls.
type Inline struct{}

// Post runs task right away
func (Inline) Post(task func()) {
	task()
}

// Loop is a serial task queue drained by Run. The queue is unbounded so
// posting never blocks, including from tasks running on the loop itself.
type Loop struct {
	logger   *zap.Logger
	mu       sync.Mutex
	queue    []func()
	wake     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewLoop creates a loop whose queue starts with room for size tasks
func NewLoop(logger *zap.Logger, size int) *Loop {
	if size <= 0 {
		size = 64
	}
	return &Loop{
		logger: logger.Named("runloop"),
		queue:  make([]func(), 0, size),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Post queues task. Tasks posted after the loop stopped are dropped.
func (l *Loop) Post(task func()) {
	if !l.enqueue(task) {
		l.logger.Debug("Dropping task posted to stopped loop")
	}
}

func (l *Loop) enqueue(task func()) bool {
	l.mu.Lock()
	select {
	case <-l.done:
		l.mu.Unlock()
		return false
	default:
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Call runs task on the loop and waits for it to finish. It must not be
// called from a task running on the loop.
func (l *Loop) Call(ctx context.Context, task func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		task()
	}

	if !l.enqueue(wrapped) {
		return ErrStopped
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drains the queue until ctx is cancelled or Stop is called
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("Run loop started")
	defer l.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Run loop stopped")
			return ctx.Err()
		case <-l.done:
			l.logger.Info("Run loop stopped")
			return nil
		case <-l.wake:
			l.drain()
		}
	}
}

// drain runs every queued task, including tasks queued while draining
func (l *Loop) drain() {
	for {
		l.mu.Lock()
		tasks := l.queue
		l.queue = nil
		l.mu.Unlock()

		if len(tasks) == 0 {
			return
		}
		for _, task := range tasks {
			select {
			case <-l.done:
				return
			default:
			}
			l.run(task)
		}
	}
}

func (l *Loop) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Task failed", zap.Error(fmt.Errorf("panic: %v", r)))
		}
	}()
	task()
}

// Stop ends Run and rejects further work
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
	})
}

// Done is closed once the loop has stopped
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
