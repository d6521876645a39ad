// Package bootstrap implements the first-boot payload for new agent
// hosts: fetch the agent binary, materialize its configuration, and
// launch it unattended.
package bootstrap

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// ConfigFileName is the agent configuration artifact. The agent runtime
// reads it at every start; it is written once and never mutated.
const ConfigFileName = "config.jsonc"

// AgentConfig is the configuration baked onto a host at bootstrap time.
// The field names are the wire keys the agent runtime expects.
type AgentConfig struct {
	ServerAddress string `json:"SRVR_IP"`
	Organization  string `json:"ORG"`
}

// WriteConfig writes the artifact into dir. Existing files are
// overwritten: bootstrap runs once, and a re-run means the previous
// attempt is being redone deliberately.
func (c AgentConfig) WriteConfig(dir string) (string, error) {
	path := filepath.Join(dir, ConfigFileName)

	body, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal agent config: %w", err)
	}
	content := "// Written by agent-bootstrap at first boot. Do not edit.\n" + string(body) + "\n"

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write agent config %s: %w", path, err)
	}
	return path, nil
}

// ReadConfig parses the artifact from dir. The file is JSONC; comments
// are stripped before decoding.
func ReadConfig(dir string) (*AgentConfig, error) {
	path := filepath.Join(dir, ConfigFileName)
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent config %s: %w", path, err)
	}

	var cfg AgentConfig
	if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse agent config %s: %w", path, err)
	}
	if cfg.ServerAddress == "" {
		return nil, fmt.Errorf("agent config %s: SRVR_IP is missing", path)
	}
	return &cfg, nil
}
