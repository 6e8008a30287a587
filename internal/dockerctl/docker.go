package dockerctl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
)

// Controller drives the single container that hosts srcds.
type Controller struct {
	cli           *client.Client
	containerName string
}

type Status struct {
	Exists    bool
	Running   bool
	State     string
	Health    string
	StartedAt time.Time
}

// Uptime is zero unless the container is running.
func (s Status) Uptime(now time.Time) time.Duration {
	if !s.Running || s.StartedAt.IsZero() {
		return 0
	}
	return now.Sub(s.StartedAt)
}

func New(containerName string) (*Controller, error) {
	if strings.TrimSpace(containerName) == "" {
		return nil, errors.New("container name is required")
	}
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &Controller{cli: cli, containerName: containerName}, nil
}

func (c *Controller) Close() error {
	return c.cli.Close()
}

func (c *Controller) Name() string {
	return c.containerName
}

func (c *Controller) Status(ctx context.Context) (Status, error) {
	inspect, err := c.cli.ContainerInspect(ctx, c.containerName)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return Status{Exists: false}, nil
		}
		return Status{}, fmt.Errorf("inspect container %q: %w", c.containerName, err)
	}

	out := Status{Exists: true}
	if inspect.ContainerJSONBase == nil || inspect.ContainerJSONBase.State == nil {
		return out, nil
	}
	state := inspect.ContainerJSONBase.State
	out.State = state.Status
	out.Running = state.Running
	if state.Health != nil {
		out.Health = state.Health.Status
	}
	if started, err := time.Parse(time.RFC3339Nano, state.StartedAt); err == nil {
		out.StartedAt = started
	}
	return out, nil
}

func (c *Controller) Start(ctx context.Context) error {
	if err := c.cli.ContainerStart(ctx, c.containerName, container.StartOptions{}); err != nil {
		return fmt.Errorf("start container %q: %w", c.containerName, err)
	}
	return nil
}

func (c *Controller) Stop(ctx context.Context, timeout time.Duration) error {
	if err := c.cli.ContainerStop(ctx, c.containerName, stopOptions(timeout)); err != nil {
		return fmt.Errorf("stop container %q: %w", c.containerName, err)
	}
	return nil
}

func (c *Controller) Restart(ctx context.Context, timeout time.Duration) error {
	if err := c.cli.ContainerRestart(ctx, c.containerName, stopOptions(timeout)); err != nil {
		return fmt.Errorf("restart container %q: %w", c.containerName, err)
	}
	return nil
}

// stopOptions gives srcds at least ten seconds to flush before SIGKILL.
func stopOptions(timeout time.Duration) container.StopOptions {
	seconds := int(timeout.Seconds())
	if seconds < 10 {
		seconds = 10
	}
	return container.StopOptions{Timeout: &seconds}
}
