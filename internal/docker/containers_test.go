package docker

import (
	"testing"

	"github.com/docker/docker/api/types/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/proxium/models"
)

func TestStateToStatus(t *testing.T) {
	tests := []struct {
		state string
		want  models.ContainerStatus
	}{
		{"running", models.StatusRunning},
		{"exited", models.StatusStopped},
		{"created", models.StatusStopped},
		{"paused", models.StatusNotDeployed},
		{"dead", models.StatusNotDeployed},
		{"", models.StatusNotDeployed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stateToStatus(tt.state), "state %q", tt.state)
	}
}

func TestIsCaddyProxy(t *testing.T) {
	tests := []struct {
		name string
		ctr  container.Summary
		want bool
	}{
		{
			name: "exact name",
			ctr:  container.Summary{Names: []string{"/caddy-proxy"}},
			want: true,
		},
		{
			name: "underscore project prefix",
			ctr:  container.Summary{Names: []string{"/myapp_caddy-proxy"}},
			want: true,
		},
		{
			name: "dash project prefix",
			ctr:  container.Summary{Names: []string{"/myapp-caddy-proxy-1"}},
			want: false,
		},
		{
			name: "compose service label",
			ctr: container.Summary{
				Names:  []string{"/myapp-caddy-proxy-1"},
				Labels: map[string]string{composeServiceLabel: "caddy-proxy"},
			},
			want: true,
		},
		{
			name: "unrelated container",
			ctr: container.Summary{
				Names:  []string{"/web"},
				Labels: map[string]string{composeServiceLabel: "web"},
			},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isCaddyProxy(tt.ctr))
		})
	}
}

func TestServicesFromContainers(t *testing.T) {
	containers := []container.Summary{
		{
			Names: []string{"/web"},
			State: "running",
			Labels: map[string]string{
				"caddy":               "web.myapp.localhost",
				"caddy.reverse_proxy": "{{upstreams 3000}}",
				composeProjectLabel:   "myapp",
			},
			Ports: []container.Port{
				{PrivatePort: 3000, PublicPort: 3000},
				{PrivatePort: 3000},
				{PrivatePort: 9090},
			},
		},
		{
			Names:  []string{"/db"},
			State:  "running",
			Labels: map[string]string{composeProjectLabel: "myapp"},
		},
		{
			Names:  []string{"/orphan"},
			State:  "exited",
			Labels: map[string]string{"caddy.tls": "internal"},
		},
	}

	services := servicesFromContainers(containers)
	require.Len(t, services, 2)

	web := services[0]
	assert.Equal(t, "web", web.Name)
	assert.Equal(t, "myapp", web.Project)
	assert.Equal(t, models.StatusRunning, web.Status)
	assert.Equal(t, models.SourceRuntime, web.Source.Kind)
	assert.Equal(t, []int{3000, 9090}, web.AvailablePorts)
	require.NotNil(t, web.Proxy)
	assert.Equal(t, "web.myapp.localhost", web.Proxy.Domain)
	assert.Equal(t, 3000, web.Proxy.Port)

	orphan := services[1]
	assert.Equal(t, "orphan", orphan.Name)
	assert.Equal(t, "runtime", orphan.Project)
	assert.Equal(t, models.StatusStopped, orphan.Status)
	assert.Nil(t, orphan.Proxy)
	assert.Equal(t, []int{}, orphan.AvailablePorts)
}

func TestMergeStatus(t *testing.T) {
	services := []models.Service{
		{Name: "Web", Status: models.StatusNotDeployed},
		{Name: "api", Status: models.StatusNotDeployed},
		{Name: "worker", Status: models.StatusNotDeployed},
	}
	containers := []container.Summary{
		{Names: []string{"/web"}, State: "running"},
		{
			Names:  []string{"/myapp-api-1"},
			State:  "exited",
			Labels: map[string]string{composeServiceLabel: "api"},
		},
	}

	mergeStatus(services, containers)

	assert.Equal(t, models.StatusRunning, services[0].Status)
	assert.Equal(t, models.StatusStopped, services[1].Status)
	assert.Equal(t, models.StatusNotDeployed, services[2].Status)
}
