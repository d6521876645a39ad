package ec2

import (
	"context"
	"errors"
	"testing"
)

func TestMockClient_InterfaceCompliance(_ *testing.T) {
	var _ Provisioner = (*MockClient)(nil)
}

func TestMockClient_RunInstance_Default(t *testing.T) {
	m := &MockClient{}

	id, err := m.RunInstance(context.Background(), InstanceCreateOpts{ImageID: "ami-1"})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if id != "i-mock" {
		t.Errorf("expected 'i-mock', got %q", id)
	}
}

func TestMockClient_RunInstance_CustomFunc(t *testing.T) {
	expectedErr := errors.New("custom error")
	m := &MockClient{
		RunInstanceFunc: func(_ context.Context, opts InstanceCreateOpts) (string, error) {
			if opts.ImageID != "ami-agent" {
				t.Errorf("expected image 'ami-agent', got %q", opts.ImageID)
			}
			return "", expectedErr
		},
	}

	_, err := m.RunInstance(context.Background(), InstanceCreateOpts{ImageID: "ami-agent"})
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

func TestMockClient_DescribeAddress_Default(t *testing.T) {
	m := &MockClient{}

	addr, err := m.DescribeAddress(context.Background(), "i-1")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if addr != "192.0.2.1" {
		t.Errorf("expected '192.0.2.1', got %q", addr)
	}
}
