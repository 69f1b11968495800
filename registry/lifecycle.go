package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/jalgreatworks0/ClientForge-sub014/event"
	"github.com/jalgreatworks0/ClientForge-sub014/logging/logger"
	"github.com/jalgreatworks0/ClientForge-sub014/module"
)

// InitializeAll resolves the dependency order and drives every module
// through its lifecycle, strictly sequentially in the computed order.
//
// A resolution failure (cycle or missing required dependency) aborts the
// whole boot: no valid order exists. A single module's failure does not:
// the module is recorded as failed, a warning is logged, and the loop
// proceeds, so one module's bug never prevents the rest of the system
// from booting.
func (r *Registry) InitializeAll(ctx context.Context, base *module.Context) error {
	order, err := r.ResolveDependencies()
	if err != nil {
		return fmt.Errorf("dependency resolution failed, aborting boot: %w", err)
	}

	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return fmt.Errorf("modules already initialized")
	}
	r.booted = true
	r.loadOrder = order
	r.mu.Unlock()

	if base == nil {
		base = &module.Context{}
	}
	if base.Events == nil {
		base.Events = r.bus
	}
	if base.Modules == nil {
		base.Modules = r
	}

	for _, name := range order {
		r.initializeModule(ctx, name, base)
	}

	r.logBootSummary(order)
	r.bus.EmitAsync(event.KindRegistryReady, map[string]any{
		"total":  len(order),
		"failed": len(r.Failed()),
	})
	return nil
}

// initializeModule drives one module through migrate, initialize and
// event handler registration, isolating its failures from the loop
func (r *Registry) initializeModule(ctx context.Context, name string, base *module.Context) {
	r.mu.RLock()
	m := r.modules[name]
	r.mu.RUnlock()

	if r.strict {
		if dep, err := r.failedDependency(m); err != nil {
			r.markFailed(name, module.Errorf(name, module.PhaseInitialize,
				"skipped: dependency %q failed to initialize", dep))
			logger.Warnf(nil, "skipping module %q: dependency %q failed", name, dep)
			return
		}
	}

	mctx := base.Named(logger.WithModule(name))

	if mg, ok := m.(module.Migratable); ok {
		r.setStatus(name, module.StatusMigrating)
		err := r.runHook(ctx, func(hctx context.Context) error {
			return mg.Migrate(hctx, mctx)
		})
		if err != nil {
			// Migrations are best-effort and assumed idempotent; a failure
			// never stops initialization.
			logger.Warnf(nil, "%v", module.NewError(name, module.PhaseMigrate, err))
		}
	}

	r.setStatus(name, module.StatusInitializing)
	start := time.Now()

	err := r.runHook(ctx, func(hctx context.Context) error {
		if err := m.Initialize(hctx, mctx); err != nil {
			return err
		}
		if reg, ok := m.(module.EventHandlerRegistrar); ok {
			return reg.RegisterEventHandlers(mctx.Events)
		}
		return nil
	})
	if err != nil {
		r.markFailed(name, module.NewError(name, module.PhaseInitialize, err))
		logger.Warnf(nil, "failed to initialize module %q: %v", name, err)
		r.bus.EmitAsync(event.KindModuleFailed, map[string]any{
			"name":  name,
			"error": err.Error(),
		})
		return
	}

	r.mu.Lock()
	r.initialized[name] = true
	r.status[name] = module.StatusActive
	r.mu.Unlock()

	logger.Debugf(nil, "initialized module %q in %s", name, time.Since(start))
	r.bus.EmitAsync(event.KindModuleInitialized, map[string]any{
		"name":    name,
		"version": m.Version(),
	})
}

// failedDependency returns the first required dependency of m that failed
func (r *Registry) failedDependency(m module.Interface) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, dep := range m.Dependencies() {
		if err, failed := r.failed[dep]; failed {
			return dep, err
		}
	}
	return "", nil
}

// markFailed records a module's terminal boot failure
func (r *Registry) markFailed(name string, err error) {
	r.mu.Lock()
	r.failed[name] = err
	r.status[name] = module.StatusFailed
	r.mu.Unlock()
}

// logBootSummary logs succeeded vs total counts and names the failures
func (r *Registry) logBootSummary(order []string) {
	r.mu.RLock()
	succeeded := len(r.initialized)
	failedNames := make([]string, 0, len(r.failed))
	for _, name := range order {
		if _, ok := r.failed[name]; ok {
			failedNames = append(failedNames, name)
		}
	}
	r.mu.RUnlock()

	logger.Infof(nil, "initialized %d/%d modules", succeeded, len(order))
	if len(failedNames) > 0 {
		logger.Warnf(nil, "modules failed to initialize: %v", failedNames)
	}
}

// ShutdownAll shuts down modules in the reverse of the last computed load
// order. Each Shutdown hook runs under its own recover boundary and a
// bounded timeout; errors are logged and never block the rest of the
// sequence.
func (r *Registry) ShutdownAll(ctx context.Context) {
	order := r.LoadOrder()

	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]

		r.mu.RLock()
		m, exists := r.modules[name]
		r.mu.RUnlock()
		if !exists {
			continue
		}

		sd, ok := m.(module.ShutdownAware)
		if !ok {
			continue
		}

		hctx, cancel := context.WithTimeout(ctx, r.shutdownTimeout)
		err := awaitHook(hctx, sd.Shutdown)
		cancel()
		if err != nil {
			logger.Warnf(nil, "%v", module.NewError(name, module.PhaseShutdown, err))
			continue
		}
		r.setStatus(name, module.StatusShutDown)
	}
}

// runHook executes a boot-phase hook under the registry's optional init
// timeout. Shutdown hooks go through awaitHook directly so the init
// timeout never caps them.
func (r *Registry) runHook(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.initTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.initTimeout)
		defer cancel()
	}
	return awaitHook(ctx, fn)
}

// awaitHook executes a lifecycle hook with panic recovery, honoring the
// context deadline. The hook is awaited before the caller proceeds; only
// the boundary is supervised.
func awaitHook(ctx context.Context, fn func(ctx context.Context) error) error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- fmt.Errorf("hook panic: %v", rec)
			}
		}()
		done <- fn(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
