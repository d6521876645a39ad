package readiness

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepdefend/bkpops/internal/platform/docker"
)

func TestGate_ReadyImmediately(t *testing.T) {
	calls := 0
	probe := func(context.Context) error {
		calls++
		return nil
	}

	g := Gate{Interval: time.Hour, Timeout: time.Hour}
	err := g.Wait(context.Background(), "broker", probe)

	require.NoError(t, err)
	assert.Equal(t, 1, calls, "healthy first probe should not wait for the ticker")
}

func TestGate_ReadyAfterPolls(t *testing.T) {
	calls := 0
	probe := func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("still starting")
		}
		return nil
	}

	g := Gate{Interval: 20 * time.Millisecond, Timeout: 5 * time.Second}
	err := g.Wait(context.Background(), "broker", probe)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestGate_TimesOut(t *testing.T) {
	probe := func(context.Context) error {
		return errors.New("never healthy")
	}

	g := Gate{Interval: 20 * time.Millisecond, Timeout: 150 * time.Millisecond}
	start := time.Now()
	err := g.Wait(context.Background(), "docstore", probe)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGateTimeout)

	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "docstore", te.Service)
	assert.Contains(t, te.Error(), "never healthy")

	// Within budget plus roughly one poll interval.
	assert.GreaterOrEqual(t, elapsed, 150*time.Millisecond)
	assert.Less(t, elapsed, 400*time.Millisecond)
}

func TestGate_RejectsUnboundedWait(t *testing.T) {
	g := Gate{Interval: time.Second}
	err := g.Wait(context.Background(), "broker", func(context.Context) error { return nil })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout must be positive")
}

func TestGate_ExternalCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	probe := func(context.Context) error { return errors.New("not yet") }

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	g := Gate{Interval: 10 * time.Millisecond, Timeout: time.Hour}
	err := g.Wait(ctx, "broker", probe)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrGateTimeout)
}

func TestDockerHealthProbe(t *testing.T) {
	cases := []struct {
		name    string
		state   docker.HealthState
		port    int
		wantErr bool
	}{
		{"healthy", docker.Healthy, 0, false},
		{"unhealthy", docker.Unhealthy, 0, true},
		{"unknown without port", docker.Unknown, 0, true},
		{"unknown with closed port", docker.Unknown, 45681, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rt := &docker.MockRuntime{
				HealthFunc: func(_ context.Context, _ string) (docker.HealthState, error) {
					return tc.state, nil
				},
			}
			probe := DockerHealthProbe(rt, "broker", "127.0.0.1", tc.port)
			err := probe(context.Background())
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDockerHealthProbe_EngineError(t *testing.T) {
	engineErr := errors.New("engine unavailable")
	rt := &docker.MockRuntime{
		HealthFunc: func(_ context.Context, _ string) (docker.HealthState, error) {
			return docker.Unknown, engineErr
		},
	}

	err := DockerHealthProbe(rt, "broker", "127.0.0.1", 0)(context.Background())
	assert.ErrorIs(t, err, engineErr)
}

func TestPortProbe_ClosedPort(t *testing.T) {
	err := PortProbe("127.0.0.1", 45682)(context.Background())
	assert.Error(t, err)
}
