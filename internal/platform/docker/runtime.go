// Package docker manages the server's backing services (message broker,
// document store) as named containers on the local engine.
//
// Startup is non-destructive: an existing container is reused, a stopped
// one is started, and only a missing one is created. Teardown stops and
// removes exactly the containers declared by the caller.
package docker

import "context"

// HealthState is the engine's view of a service's health.
type HealthState string

const (
	// Healthy means the container reports a passing healthcheck, or is
	// running without one (see Runtime.Health).
	Healthy HealthState = "healthy"
	// Unhealthy means the container exists but is stopped or failing
	// its healthcheck.
	Unhealthy HealthState = "unhealthy"
	// Unknown means the healthcheck has not concluded yet, or the
	// container has no healthcheck configured; callers should fall back
	// to a port probe.
	Unknown HealthState = "unknown"
)

// PortBinding maps a host port to a container port.
type PortBinding struct {
	Host      int
	Container int
}

// Service describes one backing service container.
type Service struct {
	Name  string
	Image string
	Env   []string
	Ports []PortBinding
}

// Runtime defines the backing-service engine surface the orchestrator
// depends on.
type Runtime interface {
	// EnsureStarted brings every service up without recreating anything:
	// missing containers are created (pulling the image when absent),
	// stopped ones are started, running ones are left alone.
	EnsureStarted(ctx context.Context, services []Service) error

	// Health returns the engine's health view of a named service.
	Health(ctx context.Context, name string) (HealthState, error)

	// Remove stops and removes the given services. Containers that no
	// longer exist are tolerated.
	Remove(ctx context.Context, services []Service) error
}
