// Package clientforge wires the module lifecycle runtime together: a
// registry of independently-authored modules, an in-process event bus,
// feature flags, a background-job registry and a shared data layer,
// assembled once at process start and handed to every module through a
// shared context.
package clientforge

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jalgreatworks0/ClientForge-sub014/config"
	"github.com/jalgreatworks0/ClientForge-sub014/data"
	"github.com/jalgreatworks0/ClientForge-sub014/event"
	"github.com/jalgreatworks0/ClientForge-sub014/feature"
	"github.com/jalgreatworks0/ClientForge-sub014/logging/logger"
	"github.com/jalgreatworks0/ClientForge-sub014/module"
	"github.com/jalgreatworks0/ClientForge-sub014/queue"
	"github.com/jalgreatworks0/ClientForge-sub014/registry"
)

// Runtime is the assembled module runtime. The host constructs one at
// process start, registers its modules and calls Boot.
type Runtime struct {
	Config   *config.Config
	Data     *data.Data
	Queues   *queue.Registry
	Events   *event.Bus
	Flags    *feature.Flags
	Registry *registry.Registry

	cleanupLogger func()
	cleanupData   func() []error
	baseCtx       *module.Context
}

// New builds a runtime from configuration
func New(cfg *config.Config) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	cleanupLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	d, cleanupData, err := data.New(cfg.Data)
	if err != nil {
		cleanupLogger()
		return nil, fmt.Errorf("failed to initialize data layer: %w", err)
	}

	environ := os.Environ()

	envPrefix := feature.DefaultEnvPrefix
	if cfg.Feature != nil && cfg.Feature.EnvPrefix != "" {
		envPrefix = cfg.Feature.EnvPrefix
	}
	flags := feature.New(feature.WithEnviron(environ, envPrefix))
	if cfg.Feature != nil {
		for name, enabled := range cfg.Feature.Flags {
			if err := flags.Register(name, &feature.Config{Enabled: enabled}); err != nil {
				logger.Warnf(nil, "skipping feature flag %q from config: %v", name, err)
			}
		}
	}

	bus := event.NewBus()
	queues := queue.NewRegistry()

	var regOpts []registry.Option
	regOpts = append(regOpts, registry.WithEventBus(bus))
	if cfg.Registry != nil {
		if cfg.Registry.StrictDependencies {
			regOpts = append(regOpts, registry.WithStrictDependencies())
		}
		if dur, err := time.ParseDuration(cfg.Registry.InitTimeout); err == nil && dur > 0 {
			regOpts = append(regOpts, registry.WithInitTimeout(dur))
		}
		if dur, err := time.ParseDuration(cfg.Registry.ShutdownTimeout); err == nil && dur > 0 {
			regOpts = append(regOpts, registry.WithShutdownTimeout(dur))
		}
	}
	reg := registry.New(regOpts...)

	rt := &Runtime{
		Config:        cfg,
		Data:          d,
		Queues:        queues,
		Events:        bus,
		Flags:         flags,
		Registry:      reg,
		cleanupLogger: cleanupLogger,
		cleanupData:   cleanupData,
	}

	rt.baseCtx = &module.Context{
		Data:    d,
		Queues:  queues,
		Events:  bus,
		Flags:   flags,
		Logger:  logger.WithModule("host"),
		Modules: reg,
		Environ: environ,
		Config:  cfg,
	}

	return rt, nil
}

// Register adds modules to the registry. Order is irrelevant.
func (rt *Runtime) Register(modules ...module.Interface) error {
	for _, m := range modules {
		if err := rt.Registry.Register(m); err != nil {
			return err
		}
	}
	return nil
}

// Context returns the shared module context
func (rt *Runtime) Context() *module.Context { return rt.baseCtx }

// Boot initializes all registered modules in dependency order and then
// registers their background jobs. Per-module failures degrade the boot
// rather than aborting it; only an unresolvable dependency graph is fatal.
func (rt *Runtime) Boot(ctx context.Context) error {
	if err := rt.Registry.InitializeAll(ctx, rt.baseCtx); err != nil {
		return err
	}
	rt.Registry.RegisterJobs(ctx, rt.Queues)
	return nil
}

// Shutdown stops modules in reverse load order, then drains the job
// queues and closes shared resources.
func (rt *Runtime) Shutdown(ctx context.Context) {
	rt.Registry.ShutdownAll(ctx)
	rt.Queues.Shutdown(ctx)

	if rt.cleanupData != nil {
		rt.cleanupData()
	}
	if rt.cleanupLogger != nil {
		rt.cleanupLogger()
	}
}
