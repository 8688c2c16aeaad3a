// Package models defines the entities shared between the compose,
// docker and caddy layers: reconciled services, proxy route configs,
// and the status enums derived from the container engine.
package models

import "fmt"

// ContainerStatus is the lifecycle state of a service's container as
// reported by the container engine. A service declared in a compose
// file with no matching live container stays NotDeployed.
type ContainerStatus string

const (
	StatusRunning     ContainerStatus = "running"
	StatusStopped     ContainerStatus = "stopped"
	StatusNotDeployed ContainerStatus = "not-deployed"
)

// CaddyProxyStatus is the observed state of the caddy-proxy daemon
// container. Unknown covers both "no such container" and "engine
// unreachable"; callers must treat it as advisory, never as an error.
type CaddyProxyStatus string

const (
	CaddyUp      CaddyProxyStatus = "up"
	CaddyDown    CaddyProxyStatus = "down"
	CaddyUnknown CaddyProxyStatus = "unknown"
)

// SourceKind distinguishes services declared in a compose file from
// containers discovered only at runtime.
type SourceKind string

const (
	SourceCompose SourceKind = "compose"
	SourceRuntime SourceKind = "runtime"
)

// ServiceSource records where a service came from. For compose-declared
// services File and ServiceName locate the declaration; runtime-only
// services carry just the kind.
type ServiceSource struct {
	Kind        SourceKind `json:"kind"`
	File        string     `json:"file,omitempty"`
	ServiceName string     `json:"serviceName,omitempty"`
}

// ProxyConfig is one reverse-proxy route: public hostname, backend
// container port, and a TLS policy tag. TLS defaults to "internal"
// wherever a config is decoded without an explicit caddy.tls label.
// Domain is deliberately free-form beyond being required: caddy routes
// wildcard hosts like *.myapp.localhost, so the daemon stays the
// arbiter of what a valid host matcher is.
type ProxyConfig struct {
	Domain string `json:"domain" validate:"required"`
	Port   int    `json:"port" validate:"required,min=1,max=65535"`
	TLS    string `json:"tls"`
}

// DefaultTLS is the policy applied when no caddy.tls label is present.
const DefaultTLS = "internal"

// UpstreamsLabel renders the caddy.reverse_proxy label value for the
// config's port.
func (p ProxyConfig) UpstreamsLabel() string {
	return fmt.Sprintf("{{upstreams %d}}", p.Port)
}

// Service is the reconciled view of one service, rebuilt from scratch
// on every refresh cycle. Proxy is nil when no complete route is
// declared; AvailablePorts are best-effort backend port hints sorted
// ascending.
type Service struct {
	Name           string          `json:"name"`
	Project        string          `json:"project"`
	Proxy          *ProxyConfig    `json:"proxy,omitempty"`
	Status         ContainerStatus `json:"status"`
	Source         ServiceSource   `json:"source"`
	AvailablePorts []int           `json:"availablePorts,omitempty"`
}
