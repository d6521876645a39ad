// Package readiness blocks dependents until a service proves healthy.
//
// A gate polls a probe at a fixed interval under a finite budget. The
// budget is mandatory: an unbounded wait turns one dead service into a
// hung orchestrator, so a non-positive timeout is rejected outright.
package readiness

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Probe checks a service once. A nil return means healthy.
type Probe func(ctx context.Context) error

// ErrGateTimeout is the sentinel unwrapped by every TimeoutError.
var ErrGateTimeout = errors.New("readiness timeout")

// TimeoutError reports which service never became ready within budget.
type TimeoutError struct {
	Service string
	Timeout time.Duration
	LastErr error
}

func (e *TimeoutError) Error() string {
	if e.LastErr != nil {
		return fmt.Sprintf("service %s not ready after %v (last probe: %v)", e.Service, e.Timeout, e.LastErr)
	}
	return fmt.Sprintf("service %s not ready after %v", e.Service, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return ErrGateTimeout }

// Gate polls a probe until it passes or the budget runs out.
type Gate struct {
	Interval time.Duration
	Timeout  time.Duration
}

// Wait blocks until probe reports healthy, the budget elapses, or ctx is
// cancelled. The probe runs once immediately, then once per interval.
func (g Gate) Wait(ctx context.Context, name string, probe Probe) error {
	if g.Timeout <= 0 {
		return fmt.Errorf("gate for %s: timeout must be positive", name)
	}
	interval := g.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	lastErr := probe(ctx)
	if lastErr == nil {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return &TimeoutError{Service: name, Timeout: g.Timeout, LastErr: lastErr}
			}
			return ctx.Err()
		case <-ticker.C:
			if lastErr = probe(ctx); lastErr == nil {
				return nil
			}
		}
	}
}
