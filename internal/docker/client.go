// Package docker wraps the container engine: connection autodetection,
// container enumeration for the runtime status merger, caddy daemon
// detection, and the compose apply runner.
package docker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	dockerclient "github.com/docker/docker/client"
)

// Runtime is the engine flavor behind the socket. It decides which
// compose command applies changes.
type Runtime string

const (
	RuntimeDocker Runtime = "docker"
	RuntimePodman Runtime = "podman"
)

// Client is a connected container engine handle.
type Client struct {
	cli     *dockerclient.Client
	runtime Runtime
	socket  string
}

// Connect autodetects the engine socket and verifies it with a ping.
// Priority: DOCKER_HOST environment variable, then the podman user
// socket at $XDG_RUNTIME_DIR/podman/podman.sock, then the default
// docker socket. An explicit socket path skips autodetection.
func Connect(ctx context.Context, socket string) (*Client, error) {
	if socket != "" {
		return connectTo(ctx, socket, RuntimeDocker)
	}

	if host := os.Getenv("DOCKER_HOST"); host != "" {
		cli, err := dockerclient.NewClientWithOpts(
			dockerclient.FromEnv,
			dockerclient.WithAPIVersionNegotiation(),
		)
		if err == nil {
			if _, err := cli.Ping(ctx); err == nil {
				return &Client{cli: cli, runtime: RuntimeDocker, socket: host}, nil
			}
			_ = cli.Close()
		}
	}

	podmanSock := filepath.Join(runtimeDir(), "podman", "podman.sock")
	if _, err := os.Stat(podmanSock); err == nil {
		if c, err := connectTo(ctx, podmanSock, RuntimePodman); err == nil {
			return c, nil
		}
	}

	const dockerSock = "/var/run/docker.sock"
	if _, err := os.Stat(dockerSock); err == nil {
		return connectTo(ctx, dockerSock, RuntimeDocker)
	}

	return nil, fmt.Errorf("no docker or podman socket found; is the engine running?")
}

func connectTo(ctx context.Context, socket string, runtime Runtime) (*Client, error) {
	host := socket
	if !strings.Contains(host, "://") {
		host = "unix://" + host
	}
	cli, err := dockerclient.NewClientWithOpts(
		dockerclient.WithHost(host),
		dockerclient.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("create engine client for %s: %w", socket, err)
	}
	if _, err := cli.Ping(ctx); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("ping engine at %s: %w", socket, err)
	}
	return &Client{cli: cli, runtime: runtime, socket: socket}, nil
}

func runtimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return fmt.Sprintf("/run/user/%d", os.Getuid())
}

// Runtime reports the detected engine flavor.
func (c *Client) Runtime() Runtime { return c.runtime }

// ComposeCommand is the CLI prefix for compose operations on this
// engine ("docker" or "podman").
func (c *Client) ComposeCommand() string {
	if c.runtime == RuntimePodman {
		return "podman"
	}
	return "docker"
}

// Close releases the underlying transport.
func (c *Client) Close() error {
	if c.cli == nil {
		return nil
	}
	return c.cli.Close()
}
