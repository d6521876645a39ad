package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked for when none is given.
const DefaultFile = "bkpops.yaml"

// LoadFile reads and parses the configuration from a YAML file.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var rawConfig map[string]interface{}
	if err := yaml.Unmarshal(data, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		Result:     &cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := decoder.Decode(rawConfig); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Provisioning.SSHUser == "" {
		cfg.Provisioning.SSHUser = "ubuntu"
	}
	if cfg.Provisioning.LogPath == "" {
		cfg.Provisioning.LogPath = "provisioning.log"
	}
	if cfg.Provisioning.AddressWaitAttempts == 0 {
		cfg.Provisioning.AddressWaitAttempts = 10
	}
	if cfg.Bootstrap.Port == 0 {
		cfg.Bootstrap.Port = 5000
	}
	if cfg.Build.DistDir == "" {
		cfg.Build.DistDir = "dist"
	}

	for i := range cfg.Services {
		svc := &cfg.Services[i]
		if svc.PollInterval == 0 {
			svc.PollInterval = 2 * time.Second
		}
		// Waits are always finite; an unbounded gate hangs the whole
		// orchestrator when a service never comes up.
		if svc.MaxWait == 0 {
			svc.MaxWait = 5 * time.Minute
		}
		if svc.ContainerPort == 0 {
			svc.ContainerPort = svc.Port
		}
	}
}
