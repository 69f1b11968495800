package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/jalgreatworks0/ClientForge-sub014/logging/logger"
)

var (
	// ErrQueueFull is returned when a queue's buffer has no room for a task
	ErrQueueFull = errors.New("task queue is full")
	// ErrQueueClosed is returned when enqueuing to a stopped queue
	ErrQueueClosed = errors.New("queue is closed")
)

// Task represents a unit of background work
type Task struct {
	ID        string
	Name      string
	Payload   any
	TriggerAt time.Time

	// Retry bookkeeping
	RetryCount int
	MaxRetries int
	RetryDelay time.Duration
}

// Config represents queue configuration
type Config struct {
	Size        int           // task buffer size
	TaskTimeout time.Duration // timeout for a single task
	MaxRetries  int           // default retries for tasks enqueued without their own
	RetryDelay  time.Duration // base delay between retries
}

// DefaultConfig returns default queue configuration
func DefaultConfig() *Config {
	return &Config{
		Size:        1000,
		TaskTimeout: time.Minute,
		MaxRetries:  3,
		RetryDelay:  time.Second,
	}
}

// Metrics tracks a queue's operational counters
type Metrics struct {
	Enqueued  atomic.Int64
	Completed atomic.Int64
	Failed    atomic.Int64
	Retried   atomic.Int64
}

// Queue is a named in-process task buffer. Workers created through the
// registry consume from it; the queue itself never executes tasks.
type Queue struct {
	name string
	cfg  *Config

	tasks   chan *Task
	closed  atomic.Bool
	metrics Metrics

	pending sync.WaitGroup // delayed tasks not yet in the buffer
}

func newQueue(name string, cfg *Config) *Queue {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Size < 1 {
		cfg.Size = DefaultConfig().Size
	}
	return &Queue{
		name:  name,
		cfg:   cfg,
		tasks: make(chan *Task, cfg.Size),
	}
}

// Name returns the queue name
func (q *Queue) Name() string { return q.name }

// Enqueue adds a task to the queue. A task without an ID gets a generated
// one; a task without retry settings inherits the queue defaults.
func (q *Queue) Enqueue(task *Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	if q.closed.Load() {
		return ErrQueueClosed
	}

	if task.ID == "" {
		task.ID = gonanoid.Must()
	}
	if task.MaxRetries == 0 {
		task.MaxRetries = q.cfg.MaxRetries
	}
	if task.RetryDelay == 0 {
		task.RetryDelay = q.cfg.RetryDelay
	}

	if delay := time.Until(task.TriggerAt); delay > 0 {
		q.pending.Add(1)
		time.AfterFunc(delay, func() {
			defer q.pending.Done()
			if err := q.push(task); err != nil {
				q.metrics.Failed.Add(1)
				logger.Warnf(nil, "queue %q: dropping delayed task %s: %v", q.name, task.ID, err)
			}
		})
		return nil
	}

	return q.push(task)
}

// EnqueueFunc wraps a func in a task and enqueues it
func (q *Queue) EnqueueFunc(name string, fn func(ctx context.Context) error) error {
	return q.Enqueue(&Task{Name: name, Payload: fn})
}

func (q *Queue) push(task *Task) error {
	if q.closed.Load() {
		return ErrQueueClosed
	}
	select {
	case q.tasks <- task:
		q.metrics.Enqueued.Add(1)
		return nil
	default:
		return ErrQueueFull
	}
}

// retry re-enqueues a failed task after its backoff delay. The delay grows
// linearly with the attempt count.
func (q *Queue) retry(task *Task) {
	task.RetryCount++
	q.metrics.Retried.Add(1)

	delay := task.RetryDelay * time.Duration(task.RetryCount)
	q.pending.Add(1)
	time.AfterFunc(delay, func() {
		defer q.pending.Done()
		if err := q.push(task); err != nil {
			q.metrics.Failed.Add(1)
			logger.Warnf(nil, "queue %q: dropping retry of task %s: %v", q.name, task.ID, err)
		}
	})
}

// Len returns the number of buffered tasks
func (q *Queue) Len() int { return len(q.tasks) }

// GetMetrics returns a snapshot of the queue counters
func (q *Queue) GetMetrics() map[string]int64 {
	return map[string]int64{
		"enqueued":  q.metrics.Enqueued.Load(),
		"completed": q.metrics.Completed.Load(),
		"failed":    q.metrics.Failed.Load(),
		"retried":   q.metrics.Retried.Load(),
	}
}

// drain waits for scheduled delayed tasks to reach the buffer, up to the
// context deadline. Tasks scheduled past the deadline are abandoned.
func (q *Queue) drain(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		q.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// close marks the queue closed so no further tasks are accepted
func (q *Queue) close() {
	q.closed.Store(true)
}
