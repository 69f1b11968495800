package module

// HealthStatus is the coarse health level a module reports
type HealthStatus string

const (
	// StatusOK indicates the module is healthy
	StatusOK HealthStatus = "ok"
	// StatusDegraded indicates the module works with reduced capability
	StatusDegraded HealthStatus = "degraded"
	// StatusDown indicates the module is not functioning
	StatusDown HealthStatus = "down"
)

// Health is the result of a module health check, aggregated by the host's
// health endpoint
type Health struct {
	Status  HealthStatus   `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Healthy is shorthand for an ok report
func Healthy() Health { return Health{Status: StatusOK} }

// Degraded builds a degraded report with a message
func Degraded(message string) Health {
	return Health{Status: StatusDegraded, Message: message}
}

// Down builds a down report with a message
func Down(message string) Health {
	return Health{Status: StatusDown, Message: message}
}
