// Command agent-bootstrap is the first-boot one-shot that runs on a
// freshly provisioned host. It downloads the agent binary from the
// management server's bootstrap channel, writes the agent configuration,
// and launches the agent detached.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deepdefend/bkpops/internal/bootstrap"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		server     string
		org        string
		installDir string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "agent-bootstrap",
		Short: "Install and launch the backup agent on first boot",
		Long: `Install and launch the backup agent.

The agent binary is fetched from the management server's bootstrap
channel, installed with its configuration, and started detached. A fetch
failure aborts with a non-zero exit; the host must then be remediated
manually.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			injector := &bootstrap.Injector{
				ServerAddress: server,
				Organization:  org,
				Port:          port,
				InstallDir:    installDir,
			}
			return injector.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Management server address")
	cmd.Flags().StringVar(&org, "org", "", "Organization identifier written into the agent config")
	cmd.Flags().StringVar(&installDir, "install-dir", bootstrap.DefaultInstallDir, "Agent install directory")
	cmd.Flags().IntVar(&port, "port", 5000, "Management server bootstrap port")
	_ = cmd.MarkFlagRequired("server")
	_ = cmd.MarkFlagRequired("org")

	return cmd
}
