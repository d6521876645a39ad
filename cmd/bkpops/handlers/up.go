package handlers

import (
	"context"

	"github.com/deepdefend/bkpops/internal/orchestration"
	"github.com/deepdefend/bkpops/internal/platform/docker"
)

// Factory variables replaced in tests for dependency injection.
var (
	// newRuntime creates the container engine runtime.
	newRuntime = func() (docker.Runtime, error) {
		return docker.NewRealRuntime()
	}

	// newOrchestrator creates the service orchestrator.
	newOrchestrator = orchestration.New
)

// Up brings up the backing services, gates on their readiness, runs the
// server process, and tears the services down when it exits.
func Up(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateForUp(); err != nil {
		return err
	}

	runtime, err := newRuntime()
	if err != nil {
		return err
	}

	o := newOrchestrator(runtime)
	return o.Run(ctx, cfg.Services, orchestration.MainProcess(cfg.Server))
}
