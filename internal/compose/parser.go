package compose

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"evalgo.org/proxium/models"
)

var (
	// ErrUnreadable marks a compose file that could not be read.
	ErrUnreadable = errors.New("file unreadable")

	// ErrMalformed marks a compose file that is not valid YAML or does
	// not have the minimal expected document shape.
	ErrMalformed = errors.New("malformed document")
)

// ParseError reports a failed parse of a single compose file. It wraps
// either ErrUnreadable or ErrMalformed so batch callers can skip the
// offending file and continue.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse loads a compose file into a Document. All fields the engine
// does not model are retained so Serialize(Parse(x)) is semantically
// equivalent to x.
func Parse(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("%w: %v", ErrUnreadable, err)}
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	return &doc, nil
}

// Serialize renders a Document back to YAML.
func Serialize(doc *Document) ([]byte, error) {
	return yaml.Marshal(doc)
}

// ExtractServices converts a parsed document into declared Service
// records. The project name is the document-declared name, falling
// back to the parent directory of the file. Runtime status is not
// consulted here; every extracted service starts as NotDeployed.
func ExtractServices(doc *Document, path string) (string, []models.Service) {
	project := doc.Name
	if project == "" {
		project = filepath.Base(filepath.Dir(path))
	}
	if project == "" || project == "." || project == string(filepath.Separator) {
		project = "unknown"
	}

	names := make([]string, 0, len(doc.Services))
	for name := range doc.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	services := make([]models.Service, 0, len(names))
	for _, name := range names {
		svc := doc.Services[name]
		services = append(services, models.Service{
			Name:    name,
			Project: project,
			Proxy:   DecodeProxyLabels(svc.Labels.Map()),
			Status:  models.StatusNotDeployed,
			Source: models.ServiceSource{
				Kind:        models.SourceCompose,
				File:        path,
				ServiceName: name,
			},
			AvailablePorts: ExtractPorts(svc),
		})
	}
	return project, services
}

// DefaultDomain produces the pre-fill domain for the add-proxy form.
// It is never used to infer existing routes.
func DefaultDomain(service, project string) string {
	return fmt.Sprintf("%s.%s.localhost", service, project)
}

// DecodeProxyLabels resolves a canonical label map into a proxy config.
// A route is recognized only when both the caddy and caddy.reverse_proxy
// keys are present and the reverse_proxy value yields a valid port;
// a partial or unparseable declaration yields nil.
func DecodeProxyLabels(labels map[string]string) *models.ProxyConfig {
	domain, ok := labels["caddy"]
	if !ok {
		return nil
	}
	reverseProxy, ok := labels["caddy.reverse_proxy"]
	if !ok {
		return nil
	}
	port, ok := portFromReverseProxy(reverseProxy)
	if !ok {
		return nil
	}
	tls, ok := labels["caddy.tls"]
	if !ok {
		tls = models.DefaultTLS
	}
	return &models.ProxyConfig{Domain: domain, Port: port, TLS: tls}
}

// portFromReverseProxy extracts the backend port from a
// caddy.reverse_proxy label value. Shapes, in order:
// "{{upstreams 3000}}" (all digits anywhere in the value),
// "host:port" / ":port" (last non-empty colon segment), bare "port".
func portFromReverseProxy(value string) (int, bool) {
	trimmed := strings.TrimSpace(value)

	if strings.Contains(trimmed, "upstreams") {
		var digits strings.Builder
		for _, r := range trimmed {
			if r >= '0' && r <= '9' {
				digits.WriteRune(r)
			}
		}
		if digits.Len() == 0 {
			return 0, false
		}
		return parsePort(digits.String())
	}

	parts := strings.Split(trimmed, ":")
	for i := len(parts) - 1; i >= 0; i-- {
		if p := strings.TrimSpace(parts[i]); p != "" {
			return parsePort(p)
		}
	}
	return 0, false
}

// ExtractPorts derives the deduplicated ascending set of container-side
// ports from a service's port and expose declarations. Entries that do
// not parse are dropped; ports are hints for the add-proxy form, not a
// validation boundary.
func ExtractPorts(svc *Service) []int {
	seen := make(map[int]bool)
	for _, group := range [][]yaml.Node{svc.Ports, svc.Expose} {
		for i := range group {
			if port, ok := containerPort(&group[i]); ok {
				seen[port] = true
			}
		}
	}
	ports := make([]int, 0, len(seen))
	for p := range seen {
		ports = append(ports, p)
	}
	sort.Ints(ports)
	return ports
}

// containerPort resolves one port declaration node. Strings follow the
// compose short syntax: an optional /proto suffix is stripped, the last
// colon segment is the container port, and a range takes its low end.
// Long-form mappings resolve their target value through the same rules.
func containerPort(node *yaml.Node) (int, bool) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!int" {
			return parsePort(node.Value)
		}
		s := node.Value
		if i := strings.Index(s, "/"); i >= 0 {
			s = s[:i]
		}
		parts := strings.Split(s, ":")
		last := parts[len(parts)-1]
		if i := strings.Index(last, "-"); i >= 0 {
			last = last[:i]
		}
		return parsePort(strings.TrimSpace(last))
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == "target" {
				return containerPort(node.Content[i+1])
			}
		}
	}
	return 0, false
}

func parsePort(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 65535 {
		return 0, false
	}
	return n, true
}
