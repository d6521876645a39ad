// Package ec2 wraps the AWS EC2 API used to provision agent hosts.
package ec2

import (
	"context"
	"errors"
)

// ErrNoInstanceID indicates the provider accepted the launch request but
// returned no instance in the reservation. This is fatal to the current
// provisioning attempt; provider-side launch failures are rarely transient
// in the window we care about, so callers do not retry.
var ErrNoInstanceID = errors.New("provider returned no instance id")

// InstanceCreateOpts holds all parameters for launching an agent host.
type InstanceCreateOpts struct {
	ImageID          string
	InstanceType     string
	KeyName          string
	SecurityGroupIDs []string
	SubnetID         string
	InstanceProfile  string

	// UserData is the first-boot bootstrap payload, plain text.
	// The client base64-encodes it as the API requires.
	UserData string
}

// Provisioner defines the compute-provider surface the instance
// provisioner depends on.
type Provisioner interface {
	// RunInstance launches a single instance and returns its ID.
	// Returns ErrNoInstanceID (wrapped) when the reservation is empty.
	RunInstance(ctx context.Context, opts InstanceCreateOpts) (string, error)

	// TagInstance applies a single key/value tag to the instance.
	TagInstance(ctx context.Context, instanceID, key, value string) error

	// DescribeAddress returns the instance's public IPv4 address, or ""
	// if the instance has not been assigned one yet.
	DescribeAddress(ctx context.Context, instanceID string) (string, error)
}
