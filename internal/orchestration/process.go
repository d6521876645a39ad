package orchestration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/deepdefend/bkpops/internal/config"
)

// MainProcess wraps the configured server command as the orchestrator's
// main function. The child inherits stdio; context cancellation kills it.
func MainProcess(cfg config.ServerConfig) func(context.Context) error {
	return func(ctx context.Context) error {
		// #nosec G204
		cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
		cmd.Dir = cfg.Dir
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		err := cmd.Run()
		if err != nil {
			// A kill caused by shutdown is not a main-process failure.
			if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return fmt.Errorf("main process %s failed: %w", cfg.Command, err)
		}
		return nil
	}
}
