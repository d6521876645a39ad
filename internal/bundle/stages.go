package bundle

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/deepdefend/bkpops/internal/config"
)

// CommandAction runs the configured bundler as the stage action. The
// bundler contract: `<bundler> <args...> -o <output> <inputs...>`
// produces a single-file executable embedding the inputs.
func CommandAction(bundler string, extraArgs []string) Action {
	return func(ctx context.Context, stage Stage) error {
		args := append([]string{}, extraArgs...)
		args = append(args, "-o", stage.Output)
		args = append(args, stage.Inputs...)

		// #nosec G204
		cmd := exec.CommandContext(ctx, bundler, args...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return err
		}

		// The bundler must have produced exactly the declared output.
		if _, err := os.Stat(stage.Output); err != nil {
			return fmt.Errorf("bundler exited 0 but output %s is missing", stage.Output)
		}
		return nil
	}
}

// AgentStages builds the two concrete chains: the agent package, then
// the installer package that embeds it. The installer stage declares the
// agent package as an input, so the dependency is explicit rather than
// implied by ordering.
func AgentStages(cfg config.BuildConfig) []Stage {
	action := CommandAction(cfg.Bundler, cfg.BundlerArgs)
	agentPackage := filepath.Join(cfg.DistDir, cfg.AgentPackage)
	installerPackage := filepath.Join(cfg.DistDir, cfg.InstallerPackage)

	agentInputs := []string{cfg.AgentBinary}
	if cfg.BackupTool != "" {
		agentInputs = append(agentInputs, cfg.BackupTool)
	}
	if cfg.AssetsDir != "" {
		agentInputs = append(agentInputs, cfg.AssetsDir)
	}

	installerInputs := []string{agentPackage}
	if cfg.SecurityAgent != "" {
		installerInputs = append(installerInputs, cfg.SecurityAgent)
	}
	if cfg.ServiceManager != "" {
		installerInputs = append(installerInputs, cfg.ServiceManager)
	}

	return []Stage{
		{
			Name:   "agent-package",
			Inputs: agentInputs,
			Output: agentPackage,
			Action: action,
		},
		{
			Name:   "installer-package",
			Inputs: installerInputs,
			Output: installerPackage,
			Action: action,
		},
	}
}
