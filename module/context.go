package module

import (
	"github.com/sirupsen/logrus"

	"github.com/jalgreatworks0/ClientForge-sub014/config"
	"github.com/jalgreatworks0/ClientForge-sub014/data"
	"github.com/jalgreatworks0/ClientForge-sub014/event"
	"github.com/jalgreatworks0/ClientForge-sub014/feature"
	"github.com/jalgreatworks0/ClientForge-sub014/queue"
)

// Lookup resolves registered modules by name. The registry satisfies it;
// the indirection keeps modules from importing the registry package.
type Lookup interface {
	GetModule(name string) (Interface, error)
}

// Context is the value bundle handed to every module at initialization.
// It is constructed once by the host and shared read-only by all modules;
// the registry swaps in a module-namespaced logger per module but never
// mutates the shared resources.
type Context struct {
	// Data exposes the relational pool, search index client and redis client
	Data *data.Data
	// Queues is the background-job registry
	Queues *queue.Registry
	// Events is the in-process event bus
	Events *event.Bus
	// Flags is the feature-flag reader
	Flags *feature.Flags
	// Logger is namespaced to the receiving module
	Logger *logrus.Entry
	// Modules resolves other modules for explicit cross-module calls
	Modules Lookup
	// Environ is the raw process environment as returned by os.Environ
	Environ []string
	// Config is the application configuration
	Config *config.Config
}

// Named returns a shallow copy of the context whose logger is namespaced
// to the given module. The shared resources are the same instances.
func (c *Context) Named(entry *logrus.Entry) *Context {
	cp := *c
	cp.Logger = entry
	return &cp
}

// GetModule resolves another module by name for explicit cross-module
// calls. Returns an error when no lookup is attached or the module is
// unknown.
func (c *Context) GetModule(name string) (Interface, error) {
	if c.Modules == nil {
		return nil, NewError(name, PhaseInitialize, ErrNoLookup)
	}
	return c.Modules.GetModule(name)
}
