package commands

import (
	"github.com/spf13/cobra"

	"github.com/deepdefend/bkpops/cmd/bkpops/handlers"
)

// Build returns the command that runs the artifact pipeline.
//
// The pipeline bundles the agent package first, then the installer
// package that embeds it. Each stage checks its declared inputs before
// running and the pipeline fails fast on the first problem.
func Build() *cobra.Command {
	var (
		configPath    string
		skipInstaller bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Bundle the agent and installer packages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Build(cmd.Context(), configPath, skipInstaller)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: bkpops.yaml)")
	cmd.Flags().BoolVar(&skipInstaller, "skip-installer", false, "Stop after the agent package")

	return cmd
}
