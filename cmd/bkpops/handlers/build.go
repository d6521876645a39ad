package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/deepdefend/bkpops/internal/bundle"
)

// runPipeline is replaced in tests for dependency injection.
var runPipeline = bundle.Run

// Build runs the artifact pipeline: the agent package, then the
// installer package that embeds it. skipInstaller stops after the
// first chain.
func Build(ctx context.Context, configPath string, skipInstaller bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Build.ValidateForBuild(); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Build.DistDir, 0o755); err != nil {
		return fmt.Errorf("failed to create dist dir %s: %w", cfg.Build.DistDir, err)
	}

	stages := bundle.AgentStages(cfg.Build)
	if skipInstaller {
		stages = stages[:1]
	} else if err := bundle.ValidateChain(stages); err != nil {
		return err
	}

	return runPipeline(ctx, stages)
}
