package registry

import (
	"context"

	"github.com/jalgreatworks0/ClientForge-sub014/module"
)

// HealthCheck aggregates the health of every registered module. Modules
// that failed to boot report down; modules without the capability report
// their lifecycle status as ok/down only.
func (r *Registry) HealthCheck(ctx context.Context) map[string]module.Health {
	r.mu.RLock()
	modules := make(map[string]module.Interface, len(r.modules))
	for name, m := range r.modules {
		modules[name] = m
	}
	failed := make(map[string]error, len(r.failed))
	for name, err := range r.failed {
		failed[name] = err
	}
	r.mu.RUnlock()

	out := make(map[string]module.Health, len(modules))
	for name, m := range modules {
		if err, ok := failed[name]; ok {
			out[name] = module.Down(err.Error())
			continue
		}

		hc, ok := m.(module.HealthCheckable)
		if !ok {
			out[name] = module.Healthy()
			continue
		}

		out[name] = checkOne(ctx, hc)
	}
	return out
}

// checkOne runs a single health check under a recover boundary
func checkOne(ctx context.Context, hc module.HealthCheckable) (h module.Health) {
	defer func() {
		if rec := recover(); rec != nil {
			h = module.Down("health check panicked")
		}
	}()
	return hc.HealthCheck(ctx)
}
