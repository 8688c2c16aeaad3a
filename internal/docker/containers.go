package docker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/docker/docker/api/types/container"

	"evalgo.org/proxium/internal/compose"
	"evalgo.org/proxium/models"
)

// composeProjectLabel and composeServiceLabel are set by compose
// implementations on every container they create.
const (
	composeProjectLabel = "com.docker.compose.project"
	composeServiceLabel = "com.docker.compose.service"
)

// caddyProxyName is the conventional name of the proxy daemon
// container.
const caddyProxyName = "caddy-proxy"

// ListCaddyServices enumerates all containers (including stopped ones)
// and returns those carrying at least one caddy label as runtime-sourced
// services. These are live proxy-exposed containers with no known
// compose declaration in the working tree, surfaced in the global view.
func (c *Client) ListCaddyServices(ctx context.Context) ([]models.Service, error) {
	containers, err := c.cli.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}
	return servicesFromContainers(containers), nil
}

func servicesFromContainers(containers []container.Summary) []models.Service {
	var services []models.Service
	for _, ctr := range containers {
		if !hasCaddyLabel(ctr.Labels) {
			continue
		}

		name := "unknown"
		if len(ctr.Names) > 0 {
			name = strings.TrimPrefix(ctr.Names[0], "/")
		}

		project := ctr.Labels[composeProjectLabel]
		if project == "" {
			project = "runtime"
		}

		services = append(services, models.Service{
			Name:           name,
			Project:        project,
			Proxy:          compose.DecodeProxyLabels(ctr.Labels),
			Status:         stateToStatus(ctr.State),
			Source:         models.ServiceSource{Kind: models.SourceRuntime},
			AvailablePorts: privatePorts(ctr.Ports),
		})
	}
	return services
}

func hasCaddyLabel(labels map[string]string) bool {
	for key := range labels {
		if key == "caddy" || strings.HasPrefix(key, "caddy.") {
			return true
		}
	}
	return false
}

func privatePorts(ports []container.Port) []int {
	seen := make(map[int]bool)
	for _, p := range ports {
		if p.PrivatePort > 0 {
			seen[int(p.PrivatePort)] = true
		}
	}
	out := make([]int, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// MergeRuntimeStatus overwrites the status of declared services with
// live engine state. Containers are indexed case-insensitively by both
// their stripped name and their compose service label; services with no
// live match keep their current status.
func (c *Client) MergeRuntimeStatus(ctx context.Context, services []models.Service) error {
	containers, err := c.cli.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return fmt.Errorf("list containers: %w", err)
	}
	mergeStatus(services, containers)
	return nil
}

func mergeStatus(services []models.Service, containers []container.Summary) {
	index := make(map[string]models.ContainerStatus)
	for _, ctr := range containers {
		status := stateToStatus(ctr.State)
		for _, name := range ctr.Names {
			index[strings.ToLower(strings.TrimPrefix(name, "/"))] = status
		}
		if svc := ctr.Labels[composeServiceLabel]; svc != "" {
			index[strings.ToLower(svc)] = status
		}
	}
	for i := range services {
		if status, ok := index[strings.ToLower(services[i].Name)]; ok {
			services[i].Status = status
		}
	}
}

func stateToStatus(state string) models.ContainerStatus {
	switch state {
	case "running":
		return models.StatusRunning
	case "exited", "created":
		return models.StatusStopped
	default:
		return models.StatusNotDeployed
	}
}

// ProxyDaemonStatus reports whether the caddy-proxy container is up.
// Engine unreachability degrades to Unknown; it is never surfaced as an
// error.
func (c *Client) ProxyDaemonStatus(ctx context.Context) models.CaddyProxyStatus {
	containers, err := c.cli.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return models.CaddyUnknown
	}
	for _, ctr := range containers {
		if !isCaddyProxy(ctr) {
			continue
		}
		if ctr.State == "running" {
			return models.CaddyUp
		}
		return models.CaddyDown
	}
	return models.CaddyUnknown
}

// FindCaddyProxy returns the container ID of the proxy daemon, if one
// exists.
func (c *Client) FindCaddyProxy(ctx context.Context) (string, bool) {
	containers, err := c.cli.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return "", false
	}
	for _, ctr := range containers {
		if isCaddyProxy(ctr) {
			return ctr.ID, true
		}
	}
	return "", false
}

// isCaddyProxy identifies the proxy daemon container: its stripped name
// equals caddy-proxy or ends with a _caddy-proxy/-caddy-proxy suffix, or
// its compose service label equals caddy-proxy.
func isCaddyProxy(ctr container.Summary) bool {
	for _, name := range ctr.Names {
		n := strings.TrimPrefix(name, "/")
		if n == caddyProxyName ||
			strings.HasSuffix(n, "_"+caddyProxyName) ||
			strings.HasSuffix(n, "-"+caddyProxyName) {
			return true
		}
	}
	return ctr.Labels[composeServiceLabel] == caddyProxyName
}

// StartContainer, StopContainer and RestartContainer control one
// container by ID; used by the caddy lifecycle controller.
func (c *Client) StartContainer(ctx context.Context, id string) error {
	return c.cli.ContainerStart(ctx, id, container.StartOptions{})
}

func (c *Client) StopContainer(ctx context.Context, id string) error {
	return c.cli.ContainerStop(ctx, id, container.StopOptions{})
}

func (c *Client) RestartContainer(ctx context.Context, id string) error {
	return c.cli.ContainerRestart(ctx, id, container.StopOptions{})
}
