// Package handlers implements the business logic for CLI commands.
//
// Handlers are framework-agnostic and testable independently of cobra.
// External collaborators are constructed through package-level factory
// variables so tests can inject fakes.
package handlers

import (
	"fmt"
	"os"

	"github.com/deepdefend/bkpops/internal/config"
)

// Factory variables replaced in tests for dependency injection.
var (
	loadConfigFile = config.LoadFile
	statFile       = os.Stat
)

// loadConfig resolves the config path (defaulting to bkpops.yaml in the
// working directory) and loads it.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if _, err := statFile(config.DefaultFile); err != nil {
			return nil, fmt.Errorf("no config file found: %s does not exist (use --config)", config.DefaultFile)
		}
		path = config.DefaultFile
	}
	return loadConfigFile(path)
}
