package commands

import (
	"github.com/spf13/cobra"

	"github.com/deepdefend/bkpops/cmd/bkpops/handlers"
)

// Spawn returns the command for provisioning a new agent host.
//
// The command creates a compute instance from the configured image,
// waits for its public address, reads its hardware UUID over SSH, and
// appends the outcome to the provisioning log.
//
// Optional flags:
//
//	--config, -c: Path to the configuration file (default: bkpops.yaml)
//	--image:      Override the configured machine image
//	--type:       Override the configured instance type
//	--tag:        Name tag for the new instance (default: generated)
func Spawn() *cobra.Command {
	var (
		configPath   string
		image        string
		instanceType string
		tag          string
	)

	cmd := &cobra.Command{
		Use:   "spawn",
		Short: "Provision and identify a new agent host",
		Long: `Provision a new agent host.

The instance boots with a first-boot payload that installs and starts
the backup agent. Once the host has a public address, its hardware UUID
is read over SSH and recorded in the provisioning log; an identity
failure is recorded for manual follow-up rather than aborting the run.

Examples:
  # Spawn using bkpops.yaml in the current directory
  bkpops spawn

  # Spawn with an explicit name tag
  bkpops spawn --tag backup-agent-17`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Spawn(cmd.Context(), handlers.SpawnOptions{
				ConfigPath:   configPath,
				Image:        image,
				InstanceType: instanceType,
				Tag:          tag,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: bkpops.yaml)")
	cmd.Flags().StringVar(&image, "image", "", "Machine image to launch (overrides config)")
	cmd.Flags().StringVar(&instanceType, "type", "", "Instance type (overrides config)")
	cmd.Flags().StringVar(&tag, "tag", "", "Name tag for the instance")

	return cmd
}
