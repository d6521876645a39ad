package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/deepdefend/bkpops/internal/config"
	"github.com/deepdefend/bkpops/internal/platform/docker"
)

func upTestConfig() *config.Config {
	return &config.Config{
		Services: []config.ServiceSpec{
			{
				Name:         "broker",
				Image:        "rabbitmq:3-management",
				Port:         5672,
				PollInterval: 5 * time.Millisecond,
				MaxWait:      time.Second,
			},
		},
		Server: config.ServerConfig{Command: "true"},
	}
}

func TestUp(t *testing.T) {
	origLoad := loadConfigFile
	origRuntime := newRuntime
	origOrchestrator := newOrchestrator
	defer func() {
		loadConfigFile = origLoad
		newRuntime = origRuntime
		newOrchestrator = origOrchestrator
	}()

	loadConfigFile = func(_ string) (*config.Config, error) {
		return upTestConfig(), nil
	}

	var started, removed []docker.Service
	mock := &docker.MockRuntime{
		EnsureStartedFunc: func(_ context.Context, services []docker.Service) error {
			started = services
			return nil
		},
		RemoveFunc: func(_ context.Context, services []docker.Service) error {
			removed = services
			return nil
		},
	}
	newRuntime = func() (docker.Runtime, error) { return mock, nil }

	err := Up(context.Background(), "test.yaml")
	require.NoError(t, err)
	require.Len(t, started, 1)
	require.Equal(t, "broker", started[0].Name)
	require.Len(t, removed, 1, "services must be torn down after the main process exits")
}

func TestUpMissingServer(t *testing.T) {
	origLoad := loadConfigFile
	defer func() { loadConfigFile = origLoad }()

	loadConfigFile = func(_ string) (*config.Config, error) {
		cfg := upTestConfig()
		cfg.Server.Command = ""
		return cfg, nil
	}

	err := Up(context.Background(), "test.yaml")
	require.Error(t, err)
	require.Contains(t, err.Error(), "command is required")
}

func TestUpRuntimeUnavailable(t *testing.T) {
	origLoad := loadConfigFile
	origRuntime := newRuntime
	defer func() {
		loadConfigFile = origLoad
		newRuntime = origRuntime
	}()

	loadConfigFile = func(_ string) (*config.Config, error) {
		return upTestConfig(), nil
	}
	newRuntime = func() (docker.Runtime, error) {
		return nil, context.DeadlineExceeded
	}

	err := Up(context.Background(), "test.yaml")
	require.Error(t, err)
}
