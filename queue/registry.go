package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/jalgreatworks0/ClientForge-sub014/logging/logger"
)

// Registry holds the named queues and their workers. Modules reach it
// through the shared module context to register background jobs.
type Registry struct {
	mu      sync.RWMutex
	queues  map[string]*Queue
	workers []*Worker
}

// NewRegistry creates an empty queue registry
func NewRegistry() *Registry {
	return &Registry{
		queues: make(map[string]*Queue),
	}
}

// CreateQueue creates a named queue. Creating an existing name fails.
func (r *Registry) CreateQueue(name string, cfg *Config) (*Queue, error) {
	if name == "" {
		return nil, fmt.Errorf("queue name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.queues[name]; exists {
		return nil, fmt.Errorf("queue %q already exists", name)
	}

	q := newQueue(name, cfg)
	r.queues[name] = q
	logger.Debugf(nil, "created queue %q (size=%d)", name, q.cfg.Size)
	return q, nil
}

// GetQueue returns the named queue, creating it with defaults if absent
func (r *Registry) GetQueue(name string) *Queue {
	r.mu.RLock()
	q, exists := r.queues[name]
	r.mu.RUnlock()
	if exists {
		return q
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if q, exists = r.queues[name]; exists {
		return q
	}
	q = newQueue(name, nil)
	r.queues[name] = q
	return q
}

// HasQueue reports whether the named queue exists
func (r *Registry) HasQueue(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.queues[name]
	return exists
}

// CreateWorker attaches a worker pool to the named queue and starts it
func (r *Registry) CreateWorker(queueName string, processor Processor, cfg *WorkerConfig) (*Worker, error) {
	q := r.GetQueue(queueName)

	w := newWorker(q, processor, cfg)
	w.start()

	r.mu.Lock()
	r.workers = append(r.workers, w)
	r.mu.Unlock()

	logger.Debugf(nil, "started worker on queue %q (concurrency=%d)", queueName, w.cfg.Concurrency)
	return w, nil
}

// GetMetrics returns per-queue counters
func (r *Registry) GetMetrics() map[string]map[string]int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]map[string]int64, len(r.queues))
	for name, q := range r.queues {
		out[name] = q.GetMetrics()
	}
	return out
}

// Shutdown drains delayed tasks into their buffers, closes all queues and
// stops all workers, waiting up to the context deadline throughout
func (r *Registry) Shutdown(ctx context.Context) {
	r.mu.Lock()
	workers := r.workers
	r.workers = nil
	queues := make([]*Queue, 0, len(r.queues))
	for _, q := range r.queues {
		queues = append(queues, q)
	}
	r.mu.Unlock()

	for _, q := range queues {
		q.drain(ctx)
		q.close()
	}

	for _, w := range workers {
		if err := w.Stop(ctx); err != nil {
			logger.Warnf(nil, "queue %q: %v", w.queue.name, err)
		}
	}
}
