package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPool_RunsSubmittedTasks(t *testing.T) {
	pool := NewPool(3, 16, zap.NewNop())
	pool.Start()

	var count atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		require.True(t, pool.Submit(func(ctx context.Context) {
			defer wg.Done()
			count.Add(1)
		}))
	}
	wg.Wait()
	assert.Equal(t, int32(10), count.Load())
	require.NoError(t, pool.Stop(context.Background()))
}

func TestPool_SubmitDoesNotBlockWhenFull(t *testing.T) {
	pool := NewPool(1, 1, zap.NewNop())
	pool.Start()

	release := make(chan struct{})
	started := make(chan struct{})
	require.True(t, pool.Submit(func(ctx context.Context) {
		close(started)
		<-release
	}))
	<-started
	require.True(t, pool.Submit(func(ctx context.Context) {}))

	begin := time.Now()
	accepted := pool.Submit(func(ctx context.Context) {})
	assert.False(t, accepted, "queue is full")
	assert.Less(t, time.Since(begin), 100*time.Millisecond)

	close(release)
	require.NoError(t, pool.Stop(context.Background()))
}

func TestPool_StopDrainsQueue(t *testing.T) {
	pool := NewPool(1, 8, zap.NewNop())
	var count atomic.Int32
	for i := 0; i < 5; i++ {
		require.True(t, pool.Submit(func(ctx context.Context) { count.Add(1) }))
	}
	pool.Start()
	require.NoError(t, pool.Stop(context.Background()))
	assert.Equal(t, int32(5), count.Load())

	assert.False(t, pool.Submit(func(ctx context.Context) {}), "stopped pool rejects tasks")
	assert.ErrorIs(t, pool.Stop(context.Background()), ErrPoolStopped)
}

func TestPool_StopDeadlineCancelsRunningTasks(t *testing.T) {
	pool := NewPool(1, 1, zap.NewNop())
	pool.Start()

	cancelled := make(chan struct{})
	require.True(t, pool.Submit(func(ctx context.Context) {
		<-ctx.Done()
		close(cancelled)
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := pool.Stop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("task context was not cancelled")
	}
}

func TestPool_RecoversFromPanics(t *testing.T) {
	pool := NewPool(1, 4, zap.NewNop())
	pool.Start()

	done := make(chan struct{})
	require.True(t, pool.Submit(func(ctx context.Context) { panic("boom") }))
	require.True(t, pool.Submit(func(ctx context.Context) { close(done) }))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker died after panic")
	}
	require.NoError(t, pool.Stop(context.Background()))
}

func TestPool_RejectsNilTask(t *testing.T) {
	pool := NewPool(1, 1, nil)
	assert.False(t, pool.Submit(nil))
	require.NoError(t, pool.Stop(context.Background()))
}
