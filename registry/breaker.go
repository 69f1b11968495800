package registry

import (
	"time"

	"github.com/sony/gobreaker"

	"github.com/jalgreatworks0/ClientForge-sub014/module"
)

// ExecuteWithCircuitBreaker runs fn under the named module's circuit
// breaker. Hosts use it around explicit cross-module calls so a
// repeatedly failing module is shed instead of dragging its callers down.
func (r *Registry) ExecuteWithCircuitBreaker(name string, fn func() (any, error)) (any, error) {
	if !r.HasModule(name) {
		return nil, module.Errorf(name, module.PhaseRegister, "module not found")
	}

	r.mu.Lock()
	cb, ok := r.breakers[name]
	if !ok {
		cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 100,
			Interval:    5 * time.Second,
			Timeout:     3 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
		})
		r.breakers[name] = cb
	}
	r.mu.Unlock()

	return cb.Execute(fn)
}
