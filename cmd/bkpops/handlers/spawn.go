package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/deepdefend/bkpops/internal/bootstrap"
	"github.com/deepdefend/bkpops/internal/platform/ec2"
	"github.com/deepdefend/bkpops/internal/provisioning"
)

// SpawnOptions carries the spawn command's flags.
type SpawnOptions struct {
	ConfigPath   string
	Image        string
	InstanceType string
	Tag          string
}

// Factory variables replaced in tests for dependency injection.
var (
	// newProvisionClient creates the compute-provider client.
	newProvisionClient = func(ctx context.Context, region string) (ec2.Provisioner, error) {
		return ec2.NewRealClient(ctx, region)
	}

	// newProvisioner creates the spawn-and-identify workflow.
	newProvisioner = provisioning.NewProvisioner
)

// Spawn provisions one agent host and records the outcome.
//
// The workflow: launch the instance with the first-boot bootstrap
// payload, tag it (best-effort), poll for its public address, read the
// hardware UUID over SSH, and append exactly one record to the
// provisioning log. Identity failures are recorded, not fatal.
func Spawn(ctx context.Context, opts SpawnOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	prov := cfg.Provisioning
	if opts.Image != "" {
		prov.ImageID = opts.Image
	}
	if opts.InstanceType != "" {
		prov.InstanceType = opts.InstanceType
	}
	if err := prov.ValidateForSpawn(); err != nil {
		return err
	}

	client, err := newProvisionClient(ctx, prov.Region)
	if err != nil {
		return fmt.Errorf("failed to create provisioning client: %w", err)
	}

	p := newProvisioner(client, prov.LogPath)
	rec, err := p.Provision(ctx, provisioning.ProvisionOpts{
		Image:               prov.ImageID,
		InstanceType:        prov.InstanceType,
		KeyName:             prov.KeyName,
		SecurityGroupIDs:    prov.SecurityGroupIDs,
		SubnetID:            prov.SubnetID,
		InstanceProfile:     prov.InstanceProfile,
		UserData:            bootstrap.UserData(cfg.Bootstrap),
		Tag:                 opts.Tag,
		SSHUser:             prov.SSHUser,
		SSHPassword:         prov.SSHPassword,
		AddressWaitAttempts: prov.AddressWaitAttempts,
	})
	if err != nil {
		return fmt.Errorf("provisioning failed: %w", err)
	}

	switch rec.Status {
	case provisioning.StatusIdentified:
		log.Printf("[Spawn] Instance %s at %s identified as %s", rec.InstanceID, rec.PublicAddress, rec.HardwareUUID)
	case provisioning.StatusIdentityFetchFailed:
		log.Printf("[Spawn] Instance %s at %s created, but identity fetch failed; see %s", rec.InstanceID, rec.PublicAddress, prov.LogPath)
	default:
		log.Printf("[Spawn] Instance %s created with status %s; see %s", rec.InstanceID, rec.Status, prov.LogPath)
	}
	return nil
}
