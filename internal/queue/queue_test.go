package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuePriorityOrder(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	require.NoError(t, q.Push(&Task{ID: "low", Priority: 1}))
	require.NoError(t, q.Push(&Task{ID: "high", Priority: 10}))
	require.NoError(t, q.Push(&Task{ID: "mid", Priority: 5}))

	assert.Equal(t, 3, q.Size())

	for _, want := range []string{"high", "mid", "low"} {
		task, err := q.Pop(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, task.ID)
	}
}

func TestQueueEqualPriorityIsFIFO(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	require.NoError(t, q.Push(&Task{ID: "first"}))
	require.NoError(t, q.Push(&Task{ID: "second"}))

	task, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", task.ID)
}

func TestQueuePopBlocksUntilPush(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	result := make(chan *Task, 1)
	go func() {
		task, err := q.Pop(ctx)
		if err == nil {
			result <- task
		}
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, q.Push(&Task{ID: "late"}))

	select {
	case task := <-result:
		assert.Equal(t, "late", task.ID)
	case <-time.After(time.Second):
		t.Fatal("Pop did not return after Push")
	}
}

func TestQueuePopRespectsContext(t *testing.T) {
	q := NewInMemoryQueue()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Pop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueueSurvivesCancelledWaiter(t *testing.T) {
	q := NewInMemoryQueue()

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := q.Pop(ctx)
		errs <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Pop did not return after cancellation")
	}

	// The abandoned wait must leave the queue fully usable.
	require.NoError(t, q.Push(&Task{ID: "after"}))
	task, err := q.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "after", task.ID)
	require.NoError(t, q.Close())
}

func TestQueueClose(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	require.NoError(t, q.Push(&Task{ID: "pending"}))
	require.NoError(t, q.Close())

	assert.ErrorIs(t, q.Push(&Task{ID: "rejected"}), ErrQueueClosed)

	// Drain what was queued before the close, then report closed.
	task, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pending", task.ID)

	_, err = q.Pop(ctx)
	assert.ErrorIs(t, err, ErrQueueClosed)
}
