package provisioning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/deepdefend/bkpops/internal/platform/ec2"
	"github.com/deepdefend/bkpops/internal/platform/ssh"
	"github.com/deepdefend/bkpops/internal/util/retry"
)

// DefaultIdentityCommand reads the hardware UUID on the remote host.
const DefaultIdentityCommand = "sudo dmidecode -s system-uuid"

// ProvisionOpts holds everything one spawn-and-identify run needs.
type ProvisionOpts struct {
	Image            string
	InstanceType     string
	KeyName          string
	SecurityGroupIDs []string
	SubnetID         string
	InstanceProfile  string
	UserData         string

	// Tag becomes the instance's Name tag. Empty generates one.
	Tag string

	SSHUser     string
	SSHPassword string

	// AddressWaitAttempts bounds the describe-address poll.
	AddressWaitAttempts int

	// IdentityCommand overrides DefaultIdentityCommand.
	IdentityCommand string
}

// CommandChannel executes a single command on a remote host.
type CommandChannel interface {
	Execute(ctx context.Context, command string) (string, error)
}

// Provisioner orchestrates the provider API and the remote command
// channel into the end-to-end spawn-and-identify workflow.
type Provisioner struct {
	Client   ec2.Provisioner
	Log      *Log
	Observer Observer

	// NewChannel builds the remote command channel for a host. Defaults
	// to an SSH client; injectable for tests.
	NewChannel func(cfg *ssh.Config) (CommandChannel, error)

	// AddressRetryDelay is the initial delay of the describe-address
	// poll. Zero means 3 seconds.
	AddressRetryDelay time.Duration
}

// NewProvisioner creates a provisioner with console observation.
func NewProvisioner(client ec2.Provisioner, logPath string) *Provisioner {
	return &Provisioner{
		Client:   client,
		Log:      &Log{Path: logPath},
		Observer: NewConsoleObserver(),
		NewChannel: func(cfg *ssh.Config) (CommandChannel, error) {
			return ssh.NewClient(cfg)
		},
	}
}

// Provision creates an instance, tags it, waits for its public address,
// reads its hardware UUID over the remote channel, and appends exactly
// one record to the log.
//
// Instance creation failure is fatal and returned. Tagging failure is
// best-effort. Identity-fetch failure is recorded with a sentinel and
// does not fail the run; the record is the operator's follow-up signal.
func (p *Provisioner) Provision(ctx context.Context, opts ProvisionOpts) (rec *Record, err error) {
	rec = &Record{Timestamp: time.Now()}

	// One record per invocation, terminated by the separator, no matter
	// which step failed. Whatever fields were obtained are preserved.
	defer func() {
		if logErr := p.Log.Append(rec); logErr != nil {
			p.Observer.Printf("[Provision] Failed to append record: %v", logErr)
			if err == nil {
				err = logErr
			}
		}
	}()

	tag := opts.Tag
	if tag == "" {
		tag = "agent-host-" + uuid.NewString()[:8]
	}

	p.Observer.Printf("[Provision] Launching instance from image %s (%s)...", opts.Image, opts.InstanceType)
	instanceID, err := p.Client.RunInstance(ctx, ec2.InstanceCreateOpts{
		ImageID:          opts.Image,
		InstanceType:     opts.InstanceType,
		KeyName:          opts.KeyName,
		SecurityGroupIDs: opts.SecurityGroupIDs,
		SubnetID:         opts.SubnetID,
		InstanceProfile:  opts.InstanceProfile,
		UserData:         opts.UserData,
	})
	if err != nil {
		return rec, fmt.Errorf("instance creation failed: %w", err)
	}
	rec.InstanceID = instanceID
	rec.Status = StatusCreated
	p.Observer.Printf("[Provision] Instance %s created", instanceID)

	// Tagging is operator metadata; the instance is already running, so
	// a tag failure is logged and the workflow continues.
	if tagErr := p.Client.TagInstance(ctx, instanceID, "Name", tag); tagErr != nil {
		p.Observer.Printf("[Provision] Tagging instance %s failed (continuing): %v", instanceID, tagErr)
	}

	address, err := p.waitForAddress(ctx, instanceID, opts.AddressWaitAttempts)
	if err != nil {
		return rec, fmt.Errorf("describe address for %s failed: %w", instanceID, err)
	}
	if address == "" {
		p.Observer.Printf("[Provision] Instance %s has no public address yet; identity read skipped", instanceID)
		return rec, nil
	}
	rec.PublicAddress = address
	rec.Status = StatusAddressed
	p.Observer.Printf("[Provision] Instance %s reachable at %s", instanceID, address)

	p.fetchIdentity(ctx, rec, opts)
	return rec, nil
}

// waitForAddress polls the provider until the instance has a public
// address, with backoff, bounded by attempts. An address that simply
// never appears yields ("", nil) and the caller records the partial
// outcome; a provider API failure is returned as an error and is fatal
// to the invocation.
func (p *Provisioner) waitForAddress(ctx context.Context, instanceID string, attempts int) (string, error) {
	if attempts <= 0 {
		attempts = 10
	}
	delay := p.AddressRetryDelay
	if delay <= 0 {
		delay = 3 * time.Second
	}

	var address string
	var apiErr error
	err := retry.Do(ctx, func() error {
		addr, err := p.Client.DescribeAddress(ctx, instanceID)
		if err != nil {
			apiErr = err
			if ec2.IsRateLimited(err) {
				return err
			}
			// Provider errors other than throttling do not resolve in
			// this window; stop polling.
			return retry.Fatal(err)
		}
		apiErr = nil
		if addr == "" {
			return fmt.Errorf("no public address yet for %s", instanceID)
		}
		address = addr
		return nil
	},
		retry.WithMaxAttempts(attempts),
		retry.WithInitialDelay(delay),
		retry.WithMaxDelay(20*time.Second),
	)
	if err != nil {
		if apiErr != nil {
			return "", apiErr
		}
		p.Observer.Printf("[Provision] Address wait for %s gave up: %v", instanceID, err)
		return "", nil
	}
	return address, nil
}

// fetchIdentity reads the hardware UUID over the remote channel. Any
// failure is recorded with the sentinel and does not abort the run.
func (p *Provisioner) fetchIdentity(ctx context.Context, rec *Record, opts ProvisionOpts) {
	command := opts.IdentityCommand
	if command == "" {
		command = DefaultIdentityCommand
	}

	channel, err := p.NewChannel(&ssh.Config{
		Host:     rec.PublicAddress,
		User:     opts.SSHUser,
		Password: opts.SSHPassword,
	})
	if err != nil {
		p.Observer.Printf("[Provision] Remote channel to %s failed: %v", rec.PublicAddress, err)
		rec.HardwareUUID = IdentityFailureSentinel
		rec.Status = StatusIdentityFetchFailed
		return
	}

	output, err := channel.Execute(ctx, command)
	if err != nil {
		if code, ok := ssh.IsExitError(err); ok {
			p.Observer.Printf("[Provision] Identity command on %s exited %d", rec.PublicAddress, code)
		} else {
			p.Observer.Printf("[Provision] Identity command on %s failed: %v", rec.PublicAddress, err)
		}
		rec.HardwareUUID = IdentityFailureSentinel
		rec.Status = StatusIdentityFetchFailed
		return
	}

	rec.HardwareUUID = strings.TrimSpace(output)
	rec.Status = StatusIdentified
	p.Observer.Printf("[Provision] Instance %s identified as %s", rec.InstanceID, rec.HardwareUUID)
}
