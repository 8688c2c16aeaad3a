package compose

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"evalgo.org/proxium/models"
)

// CaddyNetwork is the external network every proxied service is
// attached to; the caddy daemon routes into it.
const CaddyNetwork = "caddy"

// AddCaddyLabels sets the reverse-proxy route for the named service,
// creating the service entry if absent. Exactly three label keys are
// written (caddy, caddy.reverse_proxy, caddy.tls); all other labels are
// left untouched. A list-form label set is normalized to mapping form,
// which preserves every key/value pair. The service is attached to the
// caddy network and the document's top-level networks gain
// "caddy: {external: true}".
func AddCaddyLabels(doc *Document, serviceName string, config models.ProxyConfig) {
	if doc.Services == nil {
		doc.Services = make(map[string]*Service)
	}
	svc := doc.Services[serviceName]
	if svc == nil {
		svc = &Service{}
		doc.Services[serviceName] = svc
	}

	svc.Labels.Set("caddy", config.Domain)
	svc.Labels.Set("caddy.reverse_proxy", config.UpstreamsLabel())
	svc.Labels.Set("caddy.tls", config.TLS)

	attachNetwork(svc)

	if doc.Networks == nil {
		doc.Networks = make(map[string]*Network)
	}
	doc.Networks[CaddyNetwork] = &Network{External: true}
}

// attachNetwork ensures the service's networks field includes the caddy
// network, handling the three shapes the field can take: absent, list,
// or mapping. Any other shape is replaced wholesale by a fresh
// one-element list.
func attachNetwork(svc *Service) {
	node := &svc.Networks

	switch {
	case node.IsZero():
		*node = yaml.Node{
			Kind:    yaml.SequenceNode,
			Tag:     "!!seq",
			Content: []*yaml.Node{scalarNode(CaddyNetwork)},
		}
	case node.Kind == yaml.SequenceNode:
		for _, entry := range node.Content {
			if entry.Value == CaddyNetwork {
				return
			}
		}
		node.Content = append(node.Content, scalarNode(CaddyNetwork))
	case node.Kind == yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == CaddyNetwork {
				return
			}
		}
		node.Content = append(node.Content, scalarNode(CaddyNetwork), nullNode())
	default:
		*node = yaml.Node{
			Kind:    yaml.SequenceNode,
			Tag:     "!!seq",
			Content: []*yaml.Node{scalarNode(CaddyNetwork)},
		}
	}
}

// Write serializes the document and overwrites the file at path. Write
// failures are surfaced: a failed proxy-config save must be visible to
// the caller, never reported as success.
func Write(doc *Document, path string) error {
	data, err := Serialize(doc)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
