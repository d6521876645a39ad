// Package orchestration sequences the server's backing services behind
// readiness gates and owns their teardown.
//
// The contract is scoped acquisition: services started for a run are
// stopped and removed on every exit path — normal return, error, panic,
// or an external interrupt during any wait.
package orchestration

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/deepdefend/bkpops/internal/config"
	"github.com/deepdefend/bkpops/internal/platform/docker"
	"github.com/deepdefend/bkpops/internal/readiness"
)

// RunState is the orchestrator's explicit lifecycle value. It is owned
// by the orchestrator and transitioned by signal delivery, never by
// package-level flags.
type RunState string

const (
	// StateIdle means Run has not started.
	StateIdle RunState = "idle"
	// StateRunning means services are up or coming up.
	StateRunning RunState = "running"
	// StateShuttingDown means an exit path has begun; teardown follows.
	StateShuttingDown RunState = "shutting-down"
)

// teardownTimeout bounds how long container removal may take once the
// run context is already dead.
const teardownTimeout = 1 * time.Minute

// Orchestrator brings up backing services in declared order and releases
// the main process only when every readiness gate has passed.
type Orchestrator struct {
	Runtime docker.Runtime

	// ProbeHost is where published service ports are probed. Defaults
	// to localhost.
	ProbeHost string

	mu    sync.Mutex
	state RunState
}

// New creates an orchestrator for the local engine runtime.
func New(runtime docker.Runtime) *Orchestrator {
	return &Orchestrator{Runtime: runtime, ProbeHost: "127.0.0.1", state: StateIdle}
}

// State returns the current lifecycle value.
func (o *Orchestrator) State() RunState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s RunState) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Run starts all declared services as one batch, gates on each in
// declared order, then invokes main and blocks for its lifetime.
//
// Teardown (stop+remove the declared services, restore the starting
// working directory) runs exactly once whether main returns, errors,
// panics, or the process receives SIGINT/SIGTERM while anything above
// is still waiting.
func (o *Orchestrator) Run(ctx context.Context, services []config.ServiceSpec, main func(context.Context) error) error {
	startDir, dirErr := os.Getwd()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	o.setState(StateRunning)
	go func() {
		<-ctx.Done()
		o.setState(StateShuttingDown)
	}()

	dockerServices := toDockerServices(services)

	var once sync.Once
	teardown := func() {
		once.Do(func() {
			o.setState(StateShuttingDown)
			// The run context is typically dead by now; removal gets
			// its own budget.
			tctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
			defer cancel()

			if err := o.Runtime.Remove(tctx, dockerServices); err != nil {
				log.Printf("[Orchestrator] Teardown failed: %v", err)
			} else {
				log.Printf("[Orchestrator] Backing services removed")
			}
			if dirErr == nil {
				_ = os.Chdir(startDir)
			}
		})
	}
	defer teardown()

	log.Printf("[Orchestrator] Starting %d backing services...", len(services))
	if err := o.Runtime.EnsureStarted(ctx, dockerServices); err != nil {
		return err
	}

	for _, svc := range services {
		gate := readiness.Gate{Interval: svc.PollInterval, Timeout: svc.MaxWait}
		probe := readiness.DockerHealthProbe(o.Runtime, svc.Name, o.ProbeHost, svc.Port)

		log.Printf("[Orchestrator] Waiting for %s (budget %v)...", svc.Name, svc.MaxWait)
		if err := gate.Wait(ctx, svc.Name, probe); err != nil {
			return err
		}
		log.Printf("[Orchestrator] %s is ready", svc.Name)
	}

	log.Printf("[Orchestrator] All services ready; releasing main process")
	return main(ctx)
}

func toDockerServices(services []config.ServiceSpec) []docker.Service {
	out := make([]docker.Service, 0, len(services))
	for _, svc := range services {
		ds := docker.Service{
			Name:  svc.Name,
			Image: svc.Image,
			Env:   svc.Env,
		}
		if svc.Port > 0 {
			ds.Ports = []docker.PortBinding{{Host: svc.Port, Container: svc.ContainerPort}}
		}
		out = append(out, ds)
	}
	return out
}
