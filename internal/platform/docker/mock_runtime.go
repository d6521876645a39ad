package docker

import "context"

// MockRuntime is a mock implementation of Runtime. Zero-value methods
// succeed and report Healthy; set the Func fields to override.
type MockRuntime struct {
	EnsureStartedFunc func(ctx context.Context, services []Service) error
	HealthFunc        func(ctx context.Context, name string) (HealthState, error)
	RemoveFunc        func(ctx context.Context, services []Service) error
}

// Ensure interface compliance
var _ Runtime = (*MockRuntime)(nil)

// EnsureStarted mocks batch startup.
func (m *MockRuntime) EnsureStarted(ctx context.Context, services []Service) error {
	if m.EnsureStartedFunc != nil {
		return m.EnsureStartedFunc(ctx, services)
	}
	return nil
}

// Health mocks the health inspection.
func (m *MockRuntime) Health(ctx context.Context, name string) (HealthState, error) {
	if m.HealthFunc != nil {
		return m.HealthFunc(ctx, name)
	}
	return Healthy, nil
}

// Remove mocks teardown.
func (m *MockRuntime) Remove(ctx context.Context, services []Service) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, services)
	}
	return nil
}
