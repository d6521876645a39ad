package commands

import (
	"github.com/spf13/cobra"

	"github.com/deepdefend/bkpops/cmd/bkpops/handlers"
)

// Up returns the command that brings up the server stack.
//
// Backing services (message broker, document store) are started as one
// non-destructive batch, gated on readiness in declared order, and the
// server process runs only once every gate has passed. On any exit —
// including Ctrl+C — the services are stopped and removed.
func Up() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Start backing services and run the server",
		Long: `Start the backing-service stack and run the server.

Services come up in declared order behind readiness gates with finite
budgets; a service that never reports healthy aborts the startup with a
non-zero exit instead of hanging. The services are torn down on every
exit path.

Examples:
  bkpops up
  bkpops up -c production.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Up(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: bkpops.yaml)")

	return cmd
}
