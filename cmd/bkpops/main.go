// Package main is the entry point for the bkpops CLI.
//
// bkpops is the operational automation tool for the DeepDefend backup
// platform: it spawns and identifies agent hosts, brings the server's
// backing services up behind readiness gates, and runs the artifact
// pipeline that produces the agent and installer packages.
//
// Commands: spawn, up, build, version.
//
// For detailed usage information, run:
//
//	bkpops --help
package main

import (
	"fmt"
	"os"

	"github.com/deepdefend/bkpops/cmd/bkpops/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
