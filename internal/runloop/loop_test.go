package runloop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInline_RunsImmediately(t *testing.T) {
	ran := false
	Inline{}.Post(func() { ran = true })
	assert.True(t, ran)
}

func TestLoop_RunsTasksInOrder(t *testing.T) {
	loop := NewLoop(zap.NewNop(), 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go loop.Run(ctx)

	var mu sync.Mutex
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		loop.Post(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}

	// Call is queued behind the posted tasks
	require.NoError(t, loop.Call(ctx, func() {}))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestLoop_PanickingTaskDoesNotStopLoop(t *testing.T) {
	loop := NewLoop(zap.NewNop(), 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go loop.Run(ctx)

	loop.Post(func() { panic("boom") })

	ran := false
	require.NoError(t, loop.Call(ctx, func() { ran = true }))
	assert.True(t, ran)
}

func TestLoop_StopRejectsWork(t *testing.T) {
	loop := NewLoop(zap.NewNop(), 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	finished := make(chan error, 1)
	go func() { finished <- loop.Run(ctx) }()

	loop.Stop()

	select {
	case err := <-finished:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}

	err := loop.Call(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrStopped)

	// Post after stop returns without blocking
	loop.Post(func() {})
}

func TestLoop_RunReturnsOnContextCancel(t *testing.T) {
	loop := NewLoop(zap.NewNop(), 1)
	ctx, cancel := context.WithCancel(context.Background())

	finished := make(chan error, 1)
	go func() { finished <- loop.Run(ctx) }()
	cancel()

	select {
	case err := <-finished:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}

	<-loop.Done()
}

func TestLoop_PostFromLoopBeyondInitialCapacity(t *testing.T) {
	loop := NewLoop(zap.NewNop(), 4)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go loop.Run(ctx)

	ran := 0
	require.NoError(t, loop.Call(ctx, func() {
		for i := 0; i < 100; i++ {
			loop.Post(func() { ran++ })
		}
	}))

	// Queued behind the 100 tasks posted from inside the loop
	require.NoError(t, loop.Call(ctx, func() {}))
	assert.Equal(t, 100, ran)
}

func TestLoop_NestedPostsRunInOrder(t *testing.T) {
	loop := NewLoop(zap.NewNop(), 1)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go loop.Run(ctx)

	var order []string
	finished := make(chan struct{})
	loop.Post(func() {
		order = append(order, "outer")
		loop.Post(func() {
			order = append(order, "inner")
			close(finished)
		})
	})

	select {
	case <-finished:
	case <-ctx.Done():
		t.Fatal("nested task never ran")
	}
	assert.Equal(t, []string{"outer", "inner"}, order)
}
