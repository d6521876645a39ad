package readiness

import (
	"context"
	"fmt"

	"github.com/deepdefend/bkpops/internal/platform/docker"
	"github.com/deepdefend/bkpops/internal/util/netutil"
)

// DockerHealthProbe checks a named container's engine-reported health.
// When the engine has no verdict (no healthcheck configured, or still
// starting) and a port is declared, reachability of the published port
// decides; a zero port leaves Unknown as not-yet-healthy.
func DockerHealthProbe(runtime docker.Runtime, name, host string, port int) Probe {
	return func(ctx context.Context) error {
		state, err := runtime.Health(ctx, name)
		if err != nil {
			return err
		}
		switch state {
		case docker.Healthy:
			return nil
		case docker.Unhealthy:
			return fmt.Errorf("service %s reports unhealthy", name)
		default:
			if port > 0 {
				if netutil.PortOpen(ctx, host, port) {
					return nil
				}
				return fmt.Errorf("service %s: port %d not reachable yet", name, port)
			}
			return fmt.Errorf("service %s health unknown", name)
		}
	}
}

// PortProbe reports healthy once a TCP connection to host:port succeeds.
func PortProbe(host string, port int) Probe {
	return func(ctx context.Context) error {
		if netutil.PortOpen(ctx, host, port) {
			return nil
		}
		return fmt.Errorf("port %d not reachable on %s", port, host)
	}
}
