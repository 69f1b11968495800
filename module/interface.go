package module

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jalgreatworks0/ClientForge-sub014/event"
	"github.com/jalgreatworks0/ClientForge-sub014/queue"
)

// Interface is the minimal contract every module must satisfy. Everything
// else a module can do is expressed as a capability interface below, and
// consumers test for capabilities with interface assertions.
type Interface interface {
	// Name returns the unique module name used as the registry key
	Name() string
	// Version returns the module's semver version string
	Version() string
	// Dependencies returns the names of modules that must be registered
	// before this module initializes
	Dependencies() []string
	// Initialize is invoked exactly once per process lifetime, after all
	// declared required dependencies have been registered
	Initialize(ctx context.Context, mctx *Context) error
}

// OptionalDependent declares dependencies that are warn-only when absent.
// Present optional dependencies still participate in load ordering.
type OptionalDependent interface {
	OptionalDependencies() []string
}

// Migratable is implemented by modules that apply schema or data
// migrations before initialization. Migrations are treated as best-effort
// and idempotent; a failed migration does not stop initialization.
type Migratable interface {
	Migrate(ctx context.Context, mctx *Context) error
}

// RouteRegistrar is implemented by modules that expose HTTP routes. The
// host mounts them after boot; handlers themselves are module business.
type RouteRegistrar interface {
	RegisterRoutes(router *gin.RouterGroup)
}

// JobRegistrar is implemented by modules that register background jobs
type JobRegistrar interface {
	RegisterJobs(ctx context.Context, queues *queue.Registry) error
}

// EventHandlerRegistrar is implemented by modules that subscribe to bus
// events during initialization
type EventHandlerRegistrar interface {
	RegisterEventHandlers(bus *event.Bus) error
}

// ShutdownAware is implemented by modules that release resources on
// process shutdown
type ShutdownAware interface {
	Shutdown(ctx context.Context) error
}

// HealthCheckable is implemented by modules that report health to the
// host's aggregated health endpoint
type HealthCheckable interface {
	HealthCheck(ctx context.Context) Health
}
