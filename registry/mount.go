package registry

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/jalgreatworks0/ClientForge-sub014/logging/logger"
	"github.com/jalgreatworks0/ClientForge-sub014/module"
	"github.com/jalgreatworks0/ClientForge-sub014/queue"
)

// MountRoutes mounts the routes of every successfully initialized module
// implementing RouteRegistrar onto the router. A panicking registrar is
// isolated and reported as a routes-phase error; the remaining modules
// still mount.
func (r *Registry) MountRoutes(router *gin.Engine) []error {
	var errs []error

	for _, name := range r.LoadOrder() {
		if !r.isInitialized(name) {
			continue
		}

		m, err := r.GetModule(name)
		if err != nil {
			continue
		}
		rr, ok := m.(module.RouteRegistrar)
		if !ok {
			continue
		}

		if err := safeCall(func() { rr.RegisterRoutes(router.Group("")) }); err != nil {
			merr := module.NewError(name, module.PhaseRoutes, err)
			logger.Warnf(nil, "%v", merr)
			errs = append(errs, merr)
		}
	}
	return errs
}

// RegisterJobs invokes the JobRegistrar capability of every successfully
// initialized module against the given queue registry, under the same
// per-module isolation as route mounting.
func (r *Registry) RegisterJobs(ctx context.Context, queues *queue.Registry) []error {
	var errs []error

	for _, name := range r.LoadOrder() {
		if !r.isInitialized(name) {
			continue
		}

		m, err := r.GetModule(name)
		if err != nil {
			continue
		}
		jr, ok := m.(module.JobRegistrar)
		if !ok {
			continue
		}

		var jerr error
		if err := safeCall(func() { jerr = jr.RegisterJobs(ctx, queues) }); err != nil {
			jerr = err
		}
		if jerr != nil {
			merr := module.NewError(name, module.PhaseJobs, jerr)
			logger.Warnf(nil, "%v", merr)
			errs = append(errs, merr)
		}
	}
	return errs
}

// isInitialized reports whether the named module completed initialization
func (r *Registry) isInitialized(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.initialized[name]
}

// safeCall runs fn and converts a panic into an error
func safeCall(fn func()) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	fn()
	return nil
}
