package docker

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

// RealRuntime implements Runtime against a local docker engine.
type RealRuntime struct {
	cli *client.Client
}

// NewRealRuntime connects to the engine using the standard environment
// (DOCKER_HOST etc.) with API version negotiation.
func NewRealRuntime() (*RealRuntime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &RealRuntime{cli: cli}, nil
}

var _ Runtime = (*RealRuntime)(nil)

// EnsureStarted brings every service up, reusing whatever already exists.
func (r *RealRuntime) EnsureStarted(ctx context.Context, services []Service) error {
	for _, svc := range services {
		if err := r.ensureOne(ctx, svc); err != nil {
			return fmt.Errorf("failed to start service %s: %w", svc.Name, err)
		}
	}
	return nil
}

func (r *RealRuntime) ensureOne(ctx context.Context, svc Service) error {
	existing, err := r.findContainer(ctx, svc.Name)
	if err != nil {
		return err
	}

	if existing == nil {
		id, err := r.createContainer(ctx, svc)
		if err != nil {
			return err
		}
		log.Printf("[Docker] Created container %s (%s)", svc.Name, svc.Image)
		return r.cli.ContainerStart(ctx, id, container.StartOptions{})
	}

	if existing.State == "running" {
		log.Printf("[Docker] Reusing running container %s", svc.Name)
		return nil
	}

	log.Printf("[Docker] Starting existing container %s", svc.Name)
	return r.cli.ContainerStart(ctx, existing.ID, container.StartOptions{})
}

// findContainer returns the container named exactly name, or nil.
func (r *RealRuntime) findContainer(ctx context.Context, name string) (*types.Container, error) {
	list, err := r.cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("name", "^/"+name+"$")),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

func (r *RealRuntime) createContainer(ctx context.Context, svc Service) (string, error) {
	if err := r.ensureImage(ctx, svc.Image); err != nil {
		return "", err
	}

	exposed := nat.PortSet{}
	bindings := nat.PortMap{}
	for _, pb := range svc.Ports {
		port, err := nat.NewPort("tcp", strconv.Itoa(pb.Container))
		if err != nil {
			return "", fmt.Errorf("bad container port %d: %w", pb.Container, err)
		}
		exposed[port] = struct{}{}
		bindings[port] = []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: strconv.Itoa(pb.Host)}}
	}

	resp, err := r.cli.ContainerCreate(ctx,
		&container.Config{
			Image:        svc.Image,
			Env:          svc.Env,
			ExposedPorts: exposed,
		},
		&container.HostConfig{
			PortBindings: bindings,
		},
		nil, nil, svc.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}
	return resp.ID, nil
}

// ensureImage pulls the image if the engine does not have it yet.
func (r *RealRuntime) ensureImage(ctx context.Context, ref string) error {
	if _, _, err := r.cli.ImageInspectWithRaw(ctx, ref); err == nil {
		return nil
	}

	log.Printf("[Docker] Pulling image %s...", ref)
	rc, err := r.cli.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", ref, err)
	}
	defer func() { _ = rc.Close() }()

	// The pull completes when the progress stream is drained.
	if _, err := io.Copy(io.Discard, rc); err != nil {
		return fmt.Errorf("failed to pull image %s: %w", ref, err)
	}
	return nil
}

// Health reports the engine's health view of a named service. A running
// container without a healthcheck reports Unknown so the caller can fall
// back to a port probe.
func (r *RealRuntime) Health(ctx context.Context, name string) (HealthState, error) {
	info, err := r.cli.ContainerInspect(ctx, name)
	if err != nil {
		if client.IsErrNotFound(err) {
			return Unhealthy, nil
		}
		return Unknown, fmt.Errorf("failed to inspect container %s: %w", name, err)
	}

	if info.State == nil || !info.State.Running {
		return Unhealthy, nil
	}
	if info.State.Health == nil {
		return Unknown, nil
	}

	switch info.State.Health.Status {
	case "healthy":
		return Healthy, nil
	case "unhealthy":
		return Unhealthy, nil
	default: // "starting"
		return Unknown, nil
	}
}

// Remove stops and force-removes the given services.
func (r *RealRuntime) Remove(ctx context.Context, services []Service) error {
	for _, svc := range services {
		if err := r.cli.ContainerStop(ctx, svc.Name, container.StopOptions{}); err != nil {
			if client.IsErrNotFound(err) {
				continue
			}
			return fmt.Errorf("failed to stop container %s: %w", svc.Name, err)
		}
		if err := r.cli.ContainerRemove(ctx, svc.Name, container.RemoveOptions{Force: true}); err != nil {
			if client.IsErrNotFound(err) {
				continue
			}
			return fmt.Errorf("failed to remove container %s: %w", svc.Name, err)
		}
		log.Printf("[Docker] Removed container %s", svc.Name)
	}
	return nil
}
