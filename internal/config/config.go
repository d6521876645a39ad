// Package config defines the bkpops.yaml configuration and its loader.
package config

import (
	"fmt"
	"time"
)

// Config is the root of bkpops.yaml.
type Config struct {
	Provisioning ProvisioningConfig `mapstructure:"provisioning"`
	Services     []ServiceSpec      `mapstructure:"services"`
	Server       ServerConfig       `mapstructure:"server"`
	Build        BuildConfig        `mapstructure:"build"`
	Bootstrap    BootstrapConfig    `mapstructure:"bootstrap"`
}

// ProvisioningConfig holds everything needed to spawn an agent host.
type ProvisioningConfig struct {
	Region           string   `mapstructure:"region"`
	ImageID          string   `mapstructure:"image"`
	InstanceType     string   `mapstructure:"instance_type"`
	KeyName          string   `mapstructure:"key_name"`
	SecurityGroupIDs []string `mapstructure:"security_groups"`
	SubnetID         string   `mapstructure:"subnet"`
	InstanceProfile  string   `mapstructure:"instance_profile"`

	SSHUser     string `mapstructure:"ssh_user"`
	SSHPassword string `mapstructure:"ssh_password"`

	// LogPath is the append-only provisioning record log.
	LogPath string `mapstructure:"log_path"`

	// AddressWaitAttempts bounds the describe-address poll loop.
	AddressWaitAttempts int `mapstructure:"address_wait_attempts"`
}

// ServiceSpec describes one backing service and its readiness budget.
// Order in the config is dependency order; gates run in this order.
type ServiceSpec struct {
	Name          string        `mapstructure:"name"`
	Image         string        `mapstructure:"image"`
	Env           []string      `mapstructure:"env"`
	Port          int           `mapstructure:"port"`
	ContainerPort int           `mapstructure:"container_port"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	MaxWait       time.Duration `mapstructure:"max_wait"`
}

// ServerConfig is the main application process the orchestrator releases
// once every backing service is ready.
type ServerConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
	Dir     string   `mapstructure:"dir"`
}

// BuildConfig drives the artifact pipeline. The bundler is any tool that
// accepts `-o <output>` followed by the input paths and produces a
// single-file executable embedding them.
type BuildConfig struct {
	Bundler     string   `mapstructure:"bundler"`
	BundlerArgs []string `mapstructure:"bundler_args"`
	DistDir     string   `mapstructure:"dist_dir"`

	AgentBinary      string `mapstructure:"agent_binary"`
	BackupTool       string `mapstructure:"backup_tool"`
	AssetsDir        string `mapstructure:"assets_dir"`
	AgentPackage     string `mapstructure:"agent_package"`
	SecurityAgent    string `mapstructure:"security_agent_installer"`
	ServiceManager   string `mapstructure:"service_manager"`
	InstallerPackage string `mapstructure:"installer_package"`
}

// BootstrapConfig is baked into the first-boot payload of new hosts.
type BootstrapConfig struct {
	ServerAddress string `mapstructure:"server_address"`
	Organization  string `mapstructure:"organization"`
	Port          int    `mapstructure:"port"`
}

// Validate checks cross-section invariants that hold for every command.
// Section-specific requirements are validated by the section methods.
func (c *Config) Validate() error {
	for i, svc := range c.Services {
		if svc.Name == "" {
			return fmt.Errorf("services[%d]: name is required", i)
		}
		if svc.Image == "" {
			return fmt.Errorf("service %s: image is required", svc.Name)
		}
		if svc.MaxWait <= 0 {
			return fmt.Errorf("service %s: max_wait must be a positive duration", svc.Name)
		}
		if svc.PollInterval <= 0 {
			return fmt.Errorf("service %s: poll_interval must be a positive duration", svc.Name)
		}
	}
	return nil
}

// ValidateForSpawn checks the fields the spawn workflow needs.
func (p *ProvisioningConfig) ValidateForSpawn() error {
	if p.Region == "" {
		return fmt.Errorf("provisioning: region is required")
	}
	if p.ImageID == "" {
		return fmt.Errorf("provisioning: image is required")
	}
	if p.InstanceType == "" {
		return fmt.Errorf("provisioning: instance_type is required")
	}
	return nil
}

// ValidateForUp checks the fields the orchestrator needs.
func (c *Config) ValidateForUp() error {
	if len(c.Services) == 0 {
		return fmt.Errorf("services: at least one backing service is required")
	}
	if c.Server.Command == "" {
		return fmt.Errorf("server: command is required")
	}
	return nil
}

// ValidateForBuild checks the fields the artifact pipeline needs.
func (b *BuildConfig) ValidateForBuild() error {
	if b.Bundler == "" {
		return fmt.Errorf("build: bundler is required")
	}
	if b.AgentBinary == "" {
		return fmt.Errorf("build: agent_binary is required")
	}
	return nil
}
