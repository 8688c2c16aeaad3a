package caddy

import (
	"context"
	"fmt"
	"os/exec"

	"evalgo.org/proxium/internal/docker"
)

// ControlMethod is how the proxy daemon's lifecycle is managed on this
// machine.
type ControlMethod string

const (
	ControlSystemd   ControlMethod = "systemd"
	ControlContainer ControlMethod = "container"
)

// DetectControlMethod checks whether a caddy-proxy user unit is
// enabled; if not, the daemon is assumed to run as a container.
func DetectControlMethod() ControlMethod {
	if err := exec.Command("systemctl", "--user", "is-enabled", "caddy-proxy").Run(); err == nil {
		return ControlSystemd
	}
	return ControlContainer
}

// Controller starts, stops and restarts the proxy daemon.
type Controller struct {
	docker *docker.Client
	method ControlMethod
}

// NewController builds a controller; docker may be nil when only the
// systemd method is in use.
func NewController(dockerClient *docker.Client, method ControlMethod) *Controller {
	return &Controller{docker: dockerClient, method: method}
}

func (c *Controller) Start(ctx context.Context) error   { return c.manage(ctx, "start") }
func (c *Controller) Stop(ctx context.Context) error    { return c.manage(ctx, "stop") }
func (c *Controller) Restart(ctx context.Context) error { return c.manage(ctx, "restart") }

func (c *Controller) manage(ctx context.Context, action string) error {
	if c.method == ControlSystemd {
		if err := exec.CommandContext(ctx, "systemctl", "--user", action, "caddy-proxy").Run(); err != nil {
			return fmt.Errorf("systemctl --user %s caddy-proxy: %w", action, err)
		}
		return nil
	}

	if c.docker == nil {
		return fmt.Errorf("cannot %s caddy-proxy: container engine not connected", action)
	}
	id, ok := c.docker.FindCaddyProxy(ctx)
	if !ok {
		return fmt.Errorf("cannot %s caddy-proxy: no such container", action)
	}

	switch action {
	case "start":
		return c.docker.StartContainer(ctx, id)
	case "stop":
		return c.docker.StopContainer(ctx, id)
	case "restart":
		return c.docker.RestartContainer(ctx, id)
	default:
		return fmt.Errorf("unknown caddy action %q", action)
	}
}
