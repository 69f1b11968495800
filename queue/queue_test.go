package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CreateAndGetQueue(t *testing.T) {
	r := NewRegistry()

	q, err := r.CreateQueue("emails", nil)
	require.NoError(t, err)
	assert.Equal(t, "emails", q.Name())

	_, err = r.CreateQueue("emails", nil)
	assert.Error(t, err, "duplicate queue name")

	_, err = r.CreateQueue("", nil)
	assert.Error(t, err)

	assert.Same(t, q, r.GetQueue("emails"))
	assert.True(t, r.HasQueue("emails"))

	// GetQueue creates on demand
	assert.NotNil(t, r.GetQueue("reports"))
	assert.True(t, r.HasQueue("reports"))
}

func TestWorker_ProcessesTasks(t *testing.T) {
	r := NewRegistry()
	defer r.Shutdown(context.Background())

	var processed atomic.Int64
	_, err := r.CreateWorker("emails", ProcessorFunc(func(ctx context.Context, task *Task) error {
		processed.Add(1)
		return nil
	}), nil)
	require.NoError(t, err)

	q := r.GetQueue("emails")
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(&Task{Name: "send"}))
	}

	require.Eventually(t, func() bool {
		return processed.Load() == 5
	}, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		return q.GetMetrics()["completed"] == 5
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorker_DefaultProcessorRunsFuncPayloads(t *testing.T) {
	r := NewRegistry()
	defer r.Shutdown(context.Background())

	_, err := r.CreateWorker("jobs", nil, nil)
	require.NoError(t, err)

	done := make(chan struct{})
	require.NoError(t, r.GetQueue("jobs").EnqueueFunc("ping", func(ctx context.Context) error {
		close(done)
		return nil
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("func payload was not executed")
	}
}

func TestWorker_RetriesThenSucceeds(t *testing.T) {
	r := NewRegistry()
	defer r.Shutdown(context.Background())

	q, err := r.CreateQueue("flaky", &Config{
		Size:       10,
		MaxRetries: 3,
		RetryDelay: 5 * time.Millisecond,
	})
	require.NoError(t, err)

	var attempts atomic.Int64
	_, err = r.CreateWorker("flaky", ProcessorFunc(func(ctx context.Context, task *Task) error {
		if attempts.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	}), nil)
	require.NoError(t, err)

	require.NoError(t, q.Enqueue(&Task{Name: "sync"}))

	require.Eventually(t, func() bool {
		m := q.GetMetrics()
		return m["completed"] == 1 && m["retried"] == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorker_PermanentFailureAfterMaxRetries(t *testing.T) {
	r := NewRegistry()
	defer r.Shutdown(context.Background())

	q, err := r.CreateQueue("doomed", &Config{
		Size:       10,
		MaxRetries: 2,
		RetryDelay: 5 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = r.CreateWorker("doomed", ProcessorFunc(func(ctx context.Context, task *Task) error {
		return errors.New("permanent")
	}), nil)
	require.NoError(t, err)

	require.NoError(t, q.Enqueue(&Task{Name: "sync"}))

	require.Eventually(t, func() bool {
		m := q.GetMetrics()
		return m["failed"] == 1 && m["retried"] == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorker_RecoverFromPanic(t *testing.T) {
	r := NewRegistry()
	defer r.Shutdown(context.Background())

	q, err := r.CreateQueue("panicky", &Config{Size: 10, MaxRetries: 0, RetryDelay: time.Millisecond})
	require.NoError(t, err)

	var after atomic.Int64
	_, err = r.CreateWorker("panicky", ProcessorFunc(func(ctx context.Context, task *Task) error {
		if task.Name == "bad" {
			panic("nil dereference")
		}
		after.Add(1)
		return nil
	}), &WorkerConfig{Concurrency: 1})
	require.NoError(t, err)

	require.NoError(t, q.Enqueue(&Task{Name: "bad", MaxRetries: -1}))
	require.NoError(t, q.Enqueue(&Task{Name: "good", MaxRetries: -1}))

	require.Eventually(t, func() bool {
		return after.Load() == 1
	}, 2*time.Second, 10*time.Millisecond, "worker survives a panicking task")
}

func TestQueue_FullBuffer(t *testing.T) {
	r := NewRegistry()
	q, err := r.CreateQueue("tiny", &Config{Size: 1})
	require.NoError(t, err)

	// No worker attached, so the buffer fills immediately
	require.NoError(t, q.Enqueue(&Task{Name: "one"}))
	assert.ErrorIs(t, q.Enqueue(&Task{Name: "two"}), ErrQueueFull)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_DelayedTask(t *testing.T) {
	r := NewRegistry()
	defer r.Shutdown(context.Background())

	var processed atomic.Int64
	_, err := r.CreateWorker("later", ProcessorFunc(func(ctx context.Context, task *Task) error {
		processed.Add(1)
		return nil
	}), nil)
	require.NoError(t, err)

	q := r.GetQueue("later")
	require.NoError(t, q.Enqueue(&Task{
		Name:      "reminder",
		TriggerAt: time.Now().Add(100 * time.Millisecond),
	}))

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, processed.Load(), "task must not run before its trigger time")

	require.Eventually(t, func() bool {
		return processed.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestQueue_TaskGetsGeneratedID(t *testing.T) {
	r := NewRegistry()
	q, err := r.CreateQueue("ids", &Config{Size: 2})
	require.NoError(t, err)

	task := &Task{Name: "x"}
	require.NoError(t, q.Enqueue(task))
	assert.NotEmpty(t, task.ID)
}

func TestRegistry_ShutdownWaitsForDelayedTasks(t *testing.T) {
	r := NewRegistry()
	q, err := r.CreateQueue("drain", nil)
	require.NoError(t, err)

	require.NoError(t, q.Enqueue(&Task{
		Name:      "reminder",
		TriggerAt: time.Now().Add(50 * time.Millisecond),
	}))

	r.Shutdown(context.Background())

	assert.Equal(t, int64(1), q.GetMetrics()["enqueued"], "delayed task reaches the buffer before close")
	assert.Equal(t, 1, q.Len())
}

func TestRegistry_ShutdownDeadlineAbandonsFarDelayedTask(t *testing.T) {
	r := NewRegistry()
	q, err := r.CreateQueue("slow", nil)
	require.NoError(t, err)

	require.NoError(t, q.Enqueue(&Task{
		Name:      "someday",
		TriggerAt: time.Now().Add(10 * time.Second),
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	r.Shutdown(ctx)
	assert.Less(t, time.Since(start), time.Second, "shutdown is bounded by the context deadline")
}

func TestRegistry_ShutdownClosesQueues(t *testing.T) {
	r := NewRegistry()
	q, err := r.CreateQueue("closing", nil)
	require.NoError(t, err)

	r.Shutdown(context.Background())
	assert.ErrorIs(t, q.Enqueue(&Task{Name: "late"}), ErrQueueClosed)
}
