package docker

import (
	"context"
	"errors"
	"testing"
)

func TestMockRuntime_InterfaceCompliance(_ *testing.T) {
	var _ Runtime = (*MockRuntime)(nil)
}

func TestMockRuntime_Defaults(t *testing.T) {
	m := &MockRuntime{}
	ctx := context.Background()

	if err := m.EnsureStarted(ctx, []Service{{Name: "broker"}}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	state, err := m.Health(ctx, "broker")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if state != Healthy {
		t.Errorf("expected Healthy, got %s", state)
	}

	if err := m.Remove(ctx, []Service{{Name: "broker"}}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMockRuntime_CustomFuncs(t *testing.T) {
	expectedErr := errors.New("engine down")
	m := &MockRuntime{
		EnsureStartedFunc: func(_ context.Context, services []Service) error {
			if len(services) != 2 {
				t.Errorf("expected 2 services, got %d", len(services))
			}
			return expectedErr
		},
		HealthFunc: func(_ context.Context, name string) (HealthState, error) {
			if name != "docstore" {
				t.Errorf("expected 'docstore', got %q", name)
			}
			return Unknown, nil
		},
	}
	ctx := context.Background()

	err := m.EnsureStarted(ctx, []Service{{Name: "broker"}, {Name: "docstore"}})
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected %v, got %v", expectedErr, err)
	}

	state, err := m.Health(ctx, "docstore")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if state != Unknown {
		t.Errorf("expected Unknown, got %s", state)
	}
}
