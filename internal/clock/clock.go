// Package clock provides a time abstraction so engine timing can be driven
// manually in tests. Use RealClock in production and MockClock in tests.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Clock is the subset of time operations the player needs
type Clock interface {
	// Now returns the current time
	Now() time.Time

	// AfterFunc calls f once d has elapsed and returns a Timer that can cancel it
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer represents a single scheduled call that can be stopped
type Timer interface {
	// Stop prevents the Timer from firing. Returns true if the call stops the timer.
	Stop() bool
}

// RealClock implements Clock using the standard time package
type RealClock struct{}

// NewRealClock creates a new RealClock instance
func NewRealClock() *RealClock {
	return &RealClock{}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// AfterFunc calls f in its own goroutine after d
func (c *RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// MockClock is a Clock whose time only moves through Advance
type MockClock struct {
	mu      sync.Mutex
	current time.Time
	seq     int
	timers  []*mockTimer
}

type mockTimer struct {
	clock    *MockClock
	deadline time.Time
	seq      int
	f        func()
	stopped  bool
}

// NewMockClock creates a new MockClock starting at the given time
func NewMockClock(start time.Time) *MockClock {
	return &MockClock{current: start}
}

// Now returns the mock current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// AfterFunc schedules f to be called once the clock reaches now+d
func (c *MockClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	timer := &mockTimer{
		clock:    c,
		deadline: c.current.Add(d),
		seq:      c.seq,
		f:        f,
	}
	c.timers = append(c.timers, timer)
	return timer
}

// Pending returns the number of timers that have not fired or been stopped
func (c *MockClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Advance moves the clock forward by d, firing due timers in deadline order on
// the caller's goroutine. Timers scheduled by a firing callback also fire if
// they fall inside the window, so periodic work steps through the whole span.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.current.Add(d)
	c.mu.Unlock()

	for {
		timer := c.popDue(target)
		if timer == nil {
			break
		}
		timer.f()
	}

	c.mu.Lock()
	if target.After(c.current) {
		c.current = target
	}
	c.mu.Unlock()
}

// popDue removes and returns the earliest timer due by target, moving the
// clock to its deadline. Returns nil when nothing is due.
func (c *MockClock) popDue(target time.Time) *mockTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].deadline.Equal(c.timers[j].deadline) {
			return c.timers[i].seq < c.timers[j].seq
		}
		return c.timers[i].deadline.Before(c.timers[j].deadline)
	})

	if len(c.timers) == 0 || c.timers[0].deadline.After(target) {
		return nil
	}

	timer := c.timers[0]
	c.timers = c.timers[1:]
	timer.stopped = true
	if timer.deadline.After(c.current) {
		c.current = timer.deadline
	}
	return timer
}

// Stop prevents the timer from firing
func (t *mockTimer) Stop() bool {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.stopped {
		return false
	}
	t.stopped = true
	for i, other := range c.timers {
		if other == t {
			c.timers = append(c.timers[:i:i], c.timers[i+1:]...)
			break
		}
	}
	return true
}
