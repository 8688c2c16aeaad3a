// Package compose implements discovery, parsing, override merging and
// structural mutation of docker compose files.
//
// The document model is deliberately partial: only the fields the
// reconciliation engine understands (name, services, labels, ports,
// expose, networks) are typed. Everything else is carried through as
// raw yaml.Node values so that parsing and re-serializing a file never
// loses fields the engine does not know about.
package compose

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the structural representation of one compose file.
type Document struct {
	Name     string               `yaml:"name,omitempty"`
	Services map[string]*Service  `yaml:"services,omitempty"`
	Networks map[string]*Network  `yaml:"networks,omitempty"`
	Extra    map[string]yaml.Node `yaml:",inline"`
}

// Service is one service entry. Ports and Expose keep their raw node
// forms (integer, string, or long-form mapping); Networks is tri-state:
// a zero node (absent), a sequence node, or a mapping node. The field
// must be a value, not a pointer: the yaml decoder only captures raw
// nodes into value-typed yaml.Node fields.
type Service struct {
	Labels   LabelSet             `yaml:"labels,omitempty"`
	Ports    []yaml.Node          `yaml:"ports,omitempty"`
	Expose   []yaml.Node          `yaml:"expose,omitempty"`
	Networks yaml.Node            `yaml:"networks,omitempty"`
	Extra    map[string]yaml.Node `yaml:",inline"`
}

// Network is a top-level network definition. A network entry may also
// be entirely null ("networks: {caddy: ~}"), which is modeled as a nil
// *Network in Document.Networks.
type Network struct {
	External bool                 `yaml:"external,omitempty"`
	Name     string               `yaml:"name,omitempty"`
	Extra    map[string]yaml.Node `yaml:",inline"`
}

type labelEncoding int

const (
	labelsAbsent labelEncoding = iota
	labelsMapping
	labelsList
)

type labelPair struct {
	key   string
	value string
}

// LabelSet is polymorphic over the two compose label encodings: a
// mapping of key to string, or a list of "key=value" strings. The
// mapping form keeps document order so an untouched label block
// round-trips stably.
type LabelSet struct {
	encoding labelEncoding
	pairs    []labelPair
	list     []string
}

// Map returns the canonical key-to-value form regardless of encoding.
// List entries without a '=' separator are skipped.
func (l LabelSet) Map() map[string]string {
	out := make(map[string]string)
	switch l.encoding {
	case labelsMapping:
		for _, p := range l.pairs {
			out[p.key] = p.value
		}
	case labelsList:
		for _, item := range l.list {
			if k, v, ok := strings.Cut(item, "="); ok {
				out[k] = v
			}
		}
	}
	return out
}

// Set writes a key, converting a list-form label set to mapping form.
// Existing keys are updated in place, new keys appended, so repeated
// mutation is order-stable.
func (l *LabelSet) Set(key, value string) {
	if l.encoding == labelsList {
		pairs := make([]labelPair, 0, len(l.list))
		for _, item := range l.list {
			if k, v, ok := strings.Cut(item, "="); ok {
				pairs = append(pairs, labelPair{key: k, value: v})
			}
		}
		l.pairs = pairs
		l.list = nil
	}
	l.encoding = labelsMapping
	for i := range l.pairs {
		if l.pairs[i].key == key {
			l.pairs[i].value = value
			return
		}
	}
	l.pairs = append(l.pairs, labelPair{key: key, value: value})
}

// IsZero reports whether the label set is absent, letting yaml omit
// the field entirely on round-trip.
func (l LabelSet) IsZero() bool {
	return l.encoding == labelsAbsent
}

// UnmarshalYAML accepts either encoding.
func (l *LabelSet) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		l.encoding = labelsMapping
		l.pairs = l.pairs[:0]
		for i := 0; i+1 < len(value.Content); i += 2 {
			k := value.Content[i]
			v := value.Content[i+1]
			var val string
			if err := v.Decode(&val); err != nil {
				return fmt.Errorf("label %q: %w", k.Value, err)
			}
			l.pairs = append(l.pairs, labelPair{key: k.Value, value: val})
		}
		return nil
	case yaml.SequenceNode:
		l.encoding = labelsList
		return value.Decode(&l.list)
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			l.encoding = labelsAbsent
			return nil
		}
	}
	return fmt.Errorf("labels: unsupported node kind %d", value.Kind)
}

// MarshalYAML re-emits the encoding the set currently holds.
func (l LabelSet) MarshalYAML() (interface{}, error) {
	switch l.encoding {
	case labelsMapping:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, p := range l.pairs {
			node.Content = append(node.Content,
				scalarNode(p.key),
				scalarNode(p.value),
			)
		}
		return node, nil
	case labelsList:
		return l.list, nil
	default:
		return nil, nil
	}
}

// scalarNode builds a plain string scalar.
func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// nullNode builds an explicit null scalar, used for mapping-form
// network entries ("networks: {caddy: null}").
func nullNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}
