// Package ssh implements the remote command channel used to interrogate
// freshly provisioned agent hosts, typically to read the hardware UUID
// right after first boot.
//
// Connections are established per Execute call with bounded retry, since
// sshd on a new instance becomes reachable some time after the provider
// reports a public address.
//
// Security: host key verification is disabled by default because the
// hosts are ephemeral and their keys are generated at first boot.
// Configure HostKeyCallback when talking to persistent hosts.
package ssh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/deepdefend/bkpops/internal/util/retry"
)

const (
	defaultPort        = 22
	defaultDialTimeout = 10 * time.Second
	defaultMaxAttempts = 12
	defaultRetryDelay  = 5 * time.Second
	defaultMaxDelay    = 15 * time.Second
)

// Config holds remote channel configuration. Either Password or
// PrivateKey must be set; when both are set, key auth is tried first.
type Config struct {
	Host       string
	Port       int
	User       string
	Password   string
	PrivateKey []byte

	// DialTimeout is the timeout for establishing the TCP connection.
	// If zero, defaultDialTimeout is used.
	DialTimeout time.Duration

	// MaxAttempts is the number of connection attempts before giving up.
	// If zero, defaultMaxAttempts is used.
	MaxAttempts int

	// RetryDelay is the initial delay between connection attempts.
	// If zero, defaultRetryDelay is used.
	RetryDelay time.Duration

	// HostKeyCallback handles host key verification. If nil,
	// ssh.InsecureIgnoreHostKey() is used.
	HostKeyCallback ssh.HostKeyCallback
}

// Client executes commands on a remote host. The private key, when
// given, is parsed once at construction; connections are created
// on demand per Execute call.
type Client struct {
	config *Config
	signer ssh.Signer
}

// NewClient validates cfg and creates a client.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("config host cannot be empty")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("config user cannot be empty")
	}
	if cfg.Password == "" && len(cfg.PrivateKey) == 0 {
		return nil, fmt.Errorf("config needs a password or a private key")
	}

	// Copy config to avoid mutating the caller's struct
	configCopy := *cfg
	if configCopy.Port == 0 {
		configCopy.Port = defaultPort
	}
	if configCopy.DialTimeout == 0 {
		configCopy.DialTimeout = defaultDialTimeout
	}
	if configCopy.MaxAttempts == 0 {
		configCopy.MaxAttempts = defaultMaxAttempts
	}
	if configCopy.RetryDelay == 0 {
		configCopy.RetryDelay = defaultRetryDelay
	}
	if configCopy.HostKeyCallback == nil {
		configCopy.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // Ephemeral hosts, keys generated at first boot
	}

	c := &Client{config: &configCopy}

	if len(configCopy.PrivateKey) > 0 {
		signer, err := ssh.ParsePrivateKey(configCopy.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		c.signer = signer
	}

	return c, nil
}

// Execute runs a command on the remote host, dialing with retry first.
// Returns combined stdout+stderr and any execution error. A non-zero
// remote exit status is returned as an error wrapping *ssh.ExitError
// with the output preserved.
func (c *Client) Execute(ctx context.Context, command string) (string, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = client.Close() }()

	return c.runCommand(client, command)
}

// connect establishes the SSH connection with retry. Hosts straight out
// of provisioning may take a minute or two before sshd answers.
func (c *Client) connect(ctx context.Context) (*ssh.Client, error) {
	var auth []ssh.AuthMethod
	if c.signer != nil {
		auth = append(auth, ssh.PublicKeys(c.signer))
	}
	if c.config.Password != "" {
		auth = append(auth, ssh.Password(c.config.Password))
	}

	config := &ssh.ClientConfig{
		User:            c.config.User,
		Auth:            auth,
		HostKeyCallback: c.config.HostKeyCallback,
		Timeout:         c.config.DialTimeout,
	}

	addr := fmt.Sprintf("%s:%d", c.config.Host, c.config.Port)
	var client *ssh.Client

	err := retry.Do(ctx, func() error {
		var dialErr error
		client, dialErr = ssh.Dial("tcp", addr, config)
		return dialErr
	},
		retry.WithMaxAttempts(c.config.MaxAttempts),
		retry.WithInitialDelay(c.config.RetryDelay),
		retry.WithMaxDelay(defaultMaxDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to establish SSH connection to %s after %d attempts: %w",
			addr, c.config.MaxAttempts, err)
	}

	return client, nil
}

// runCommand executes a command on an established connection.
func (c *Client) runCommand(client *ssh.Client, command string) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create SSH session on %s: %w", c.config.Host, err)
	}
	defer func() { _ = session.Close() }()

	output, err := session.CombinedOutput(command)
	if err != nil {
		return string(output), fmt.Errorf("command failed on %s: %w\nCommand: %s\nOutput: %s",
			c.config.Host, err, command, string(output))
	}

	return string(output), nil
}

// IsExitError reports whether err came from a command that ran but
// returned a non-zero status, and returns that status.
func IsExitError(err error) (int, bool) {
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitStatus(), true
	}
	return 0, false
}
