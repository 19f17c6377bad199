package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component represents a lifecycle-managed infrastructure component.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string
	// Start initializes and starts the component.
	Start(ctx context.Context) error
	// Stop shuts the component down and releases its resources.
	Stop(ctx context.Context) error
	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// Description is a one-line self report used in startup summaries.
type Description struct {
	Name    string
	Type    string
	Details string
}

// Describable is optionally implemented by components that can describe
// their configuration.
type Describable interface {
	Describe() Description
}
