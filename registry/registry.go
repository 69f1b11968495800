package registry

import (
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/jalgreatworks0/ClientForge-sub014/event"
	"github.com/jalgreatworks0/ClientForge-sub014/logging/logger"
	"github.com/jalgreatworks0/ClientForge-sub014/module"
)

// DefaultShutdownTimeout bounds a single module's Shutdown hook so a hung
// module cannot stall the rest of the reverse-ordered sequence.
const DefaultShutdownTimeout = 30 * time.Second

// Registry holds registered modules, resolves their dependency order,
// drives initialization and shutdown, and isolates per-module failures.
// It is an explicit value constructed once at process start; there is no
// package-level shared instance.
//
// Register/InitializeAll/ShutdownAll are expected to be driven from a
// single control-flow path; the accessors are safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	modules     map[string]module.Interface
	status      map[string]string
	initialized map[string]bool
	failed      map[string]error
	loadOrder   []string
	booted      bool

	bus      *event.Bus
	breakers map[string]*gobreaker.CircuitBreaker

	strict          bool
	initTimeout     time.Duration
	shutdownTimeout time.Duration
}

// Option configures a Registry
type Option func(*Registry)

// WithEventBus attaches the bus used for lifecycle events. When absent
// the registry creates its own.
func WithEventBus(bus *event.Bus) Option {
	return func(r *Registry) { r.bus = bus }
}

// WithStrictDependencies makes the registry skip dependents of failed
// modules instead of initializing them against a failed dependency. The
// default preserves the registration-only guarantee: a dependent
// initializes as long as its dependencies were registered, even if one
// of them failed to initialize.
func WithStrictDependencies() Option {
	return func(r *Registry) { r.strict = true }
}

// WithInitTimeout bounds a single module's Migrate/Initialize hooks.
// Zero means no timeout.
func WithInitTimeout(d time.Duration) Option {
	return func(r *Registry) { r.initTimeout = d }
}

// WithShutdownTimeout bounds a single module's Shutdown hook
func WithShutdownTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.shutdownTimeout = d
		}
	}
}

// New creates a Registry
func New(opts ...Option) *Registry {
	r := &Registry{
		modules:         make(map[string]module.Interface),
		status:          make(map[string]string),
		initialized:     make(map[string]bool),
		failed:          make(map[string]error),
		breakers:        make(map[string]*gobreaker.CircuitBreaker),
		shutdownTimeout: DefaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.bus == nil {
		r.bus = event.NewBus()
	}
	return r
}

// Register adds a module to the registry. Registration order is
// irrelevant; the dependency resolver computes the load order.
func (r *Registry) Register(m module.Interface) error {
	if m == nil {
		return module.Errorf("", module.PhaseRegister, "module is nil")
	}

	name := m.Name()
	if name == "" {
		return module.Errorf(name, module.PhaseRegister, "module name is required")
	}
	if m.Version() == "" {
		return module.Errorf(name, module.PhaseRegister, "module version is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[name]; exists {
		return module.Errorf(name, module.PhaseRegister, "module already registered")
	}

	r.modules[name] = m
	r.status[name] = module.StatusRegistered
	return nil
}

// Unregister removes a module. It fails while any other registered module
// lists the name as a required dependency; optional dependencies are
// warn-only when absent, so they never block removal. Routes or schema
// changes already applied are not undone.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[name]; !exists {
		return module.Errorf(name, module.PhaseRegister, "module not registered")
	}

	for other, m := range r.modules {
		if other == name {
			continue
		}
		for _, dep := range m.Dependencies() {
			if dep == name {
				return module.Errorf(name, module.PhaseRegister,
					"module %q depends on it", other)
			}
		}
	}

	delete(r.modules, name)
	delete(r.initialized, name)
	delete(r.failed, name)
	delete(r.status, name)
	delete(r.breakers, name)

	r.bus.EmitAsync(event.KindModuleUnregistered, map[string]any{"name": name})
	logger.Infof(nil, "unregistered module %q", name)
	return nil
}

// GetModule returns the named module
func (r *Registry) GetModule(name string) (module.Interface, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.modules[name]
	if !exists {
		return nil, module.Errorf(name, module.PhaseRegister, "module not found")
	}
	return m, nil
}

// GetModules returns a copy of the module table
func (r *Registry) GetModules() map[string]module.Interface {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]module.Interface, len(r.modules))
	for name, m := range r.modules {
		out[name] = m
	}
	return out
}

// HasModule reports whether a module is registered
func (r *Registry) HasModule(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.modules[name]
	return exists
}

// LoadOrder returns the most recently computed load order. It is empty
// until InitializeAll has run.
func (r *Registry) LoadOrder() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.loadOrder...)
}

// Initialized returns the names that completed initialization
func (r *Registry) Initialized() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.initialized))
	for name := range r.initialized {
		out = append(out, name)
	}
	return out
}

// Failed returns the per-module initialization errors
func (r *Registry) Failed() map[string]error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]error, len(r.failed))
	for name, err := range r.failed {
		out[name] = err
	}
	return out
}

// Status returns the lifecycle status of every registered module
func (r *Registry) Status() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.status))
	for name, s := range r.status {
		out[name] = s
	}
	return out
}

// Events returns the lifecycle event bus
func (r *Registry) Events() *event.Bus { return r.bus }

// setStatus records a module's lifecycle status
func (r *Registry) setStatus(name, status string) {
	r.mu.Lock()
	r.status[name] = status
	r.mu.Unlock()
}
