package module

// Lifecycle status constants for a registered module
const (
	// StatusRegistered indicates the module is registered but not yet initialized
	StatusRegistered = "registered"
	// StatusMigrating indicates the module's best-effort migrations are running
	StatusMigrating = "migrating"
	// StatusInitializing indicates the module's Initialize hook is running
	StatusInitializing = "initializing"
	// StatusActive indicates the module initialized successfully
	StatusActive = "active"
	// StatusFailed indicates the module failed to initialize
	StatusFailed = "failed"
	// StatusShutDown indicates the module was shut down
	StatusShutDown = "shutdown"
)
