package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jalgreatworks0/ClientForge-sub014/logging/logger"
)

// Processor represents the task execution logic attached to a worker
type Processor interface {
	Process(ctx context.Context, task *Task) error
}

// ProcessorFunc adapts a function to the Processor interface
type ProcessorFunc func(ctx context.Context, task *Task) error

// Process calls fn
func (fn ProcessorFunc) Process(ctx context.Context, task *Task) error {
	return fn(ctx, task)
}

// defaultProcessor executes func-typed payloads
type defaultProcessor struct{}

func (defaultProcessor) Process(ctx context.Context, task *Task) error {
	switch fn := task.Payload.(type) {
	case func(ctx context.Context) error:
		return fn(ctx)
	case func() error:
		return fn()
	case func():
		fn()
		return nil
	default:
		return fmt.Errorf("unsupported task payload type: %T", task.Payload)
	}
}

// WorkerConfig represents worker pool configuration
type WorkerConfig struct {
	Concurrency int           // number of worker goroutines
	TaskTimeout time.Duration // overrides the queue's per-task timeout when set
}

// DefaultWorkerConfig returns default worker configuration
func DefaultWorkerConfig() *WorkerConfig {
	return &WorkerConfig{Concurrency: 10}
}

// Worker is a pool of goroutines consuming one queue with one processor
type Worker struct {
	queue     *Queue
	processor Processor
	cfg       *WorkerConfig

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newWorker(q *Queue, p Processor, cfg *WorkerConfig) *Worker {
	if p == nil {
		p = defaultProcessor{}
	}
	if cfg == nil {
		cfg = DefaultWorkerConfig()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = DefaultWorkerConfig().Concurrency
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		queue:     q,
		processor: p,
		cfg:       cfg,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// start launches the worker goroutines
func (w *Worker) start() {
	for i := 0; i < w.cfg.Concurrency; i++ {
		w.wg.Add(1)
		go w.run()
	}
}

func (w *Worker) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case task, ok := <-w.queue.tasks:
			if !ok {
				return
			}
			w.handle(task)
		}
	}
}

// handle executes one task under a recover boundary and drives retries
func (w *Worker) handle(task *Task) {
	err := w.process(task)
	if err == nil {
		w.queue.metrics.Completed.Add(1)
		return
	}

	if task.RetryCount < task.MaxRetries {
		logger.Warnf(nil, "queue %q: task %s (%s) failed, retry %d/%d: %v",
			w.queue.name, task.ID, task.Name, task.RetryCount+1, task.MaxRetries, err)
		w.queue.retry(task)
		return
	}

	w.queue.metrics.Failed.Add(1)
	logger.Errorf(nil, "queue %q: task %s (%s) failed permanently: %v",
		w.queue.name, task.ID, task.Name, err)
}

func (w *Worker) process(task *Task) error {
	timeout := w.cfg.TaskTimeout
	if timeout == 0 {
		timeout = w.queue.cfg.TaskTimeout
	}

	ctx := w.ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("task panic: %v", r)
			}
		}()
		done <- w.processor.Process(ctx, task)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop signals the workers and waits for in-flight tasks up to the context
// deadline
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.New("worker stop timed out")
	}
}
