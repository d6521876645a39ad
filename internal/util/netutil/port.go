// Package netutil provides TCP reachability checks used by the readiness
// gates for the message broker and document store.
package netutil

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"
)

const dialTimeout = 2 * time.Second

// PortOpen reports whether a TCP connection to host:port succeeds within
// a short dial timeout. It is a single-shot probe; looping belongs to the
// caller's readiness gate.
func PortOpen(ctx context.Context, host string, port int) bool {
	address := net.JoinHostPort(host, strconv.Itoa(port))
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// WaitForPort blocks until a TCP port is reachable on host or the timeout
// elapses. It checks immediately, then once per second.
func WaitForPort(ctx context.Context, host string, port int, timeout time.Duration) error {
	address := net.JoinHostPort(host, strconv.Itoa(port))

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if PortOpen(ctx, host, port) {
		return nil
	}

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return fmt.Errorf("timeout waiting for %s", address)
			}
			return ctx.Err()
		case <-ticker.C:
			if PortOpen(ctx, host, port) {
				return nil
			}
		}
	}
}
