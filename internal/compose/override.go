package compose

import (
	"fmt"
	"path/filepath"

	"evalgo.org/proxium/models"
)

// OverrideFileName is the fixed name of the per-directory override
// file: a compose-shaped document that carries proxy labels for
// services without editing their original compose file.
const OverrideFileName = "compose.lcp.yaml"

// MergeOverrides applies override-file proxy configs onto already
// discovered services. For every distinct directory among the compose
// files the sibling override file is parsed; services matching by name
// whose proxy is still unset receive the override's decoded config.
// Declared-in-place labels always win and no new services are created.
// A missing or malformed override file is ignored per directory, so one
// bad file cannot block the others.
func MergeOverrides(services []models.Service, composeFiles []string) {
	seen := make(map[string]bool)
	for _, file := range composeFiles {
		dir := filepath.Dir(file)
		if seen[dir] {
			continue
		}
		seen[dir] = true

		doc, err := Parse(filepath.Join(dir, OverrideFileName))
		if err != nil {
			continue
		}
		for name, svc := range doc.Services {
			proxy := DecodeProxyLabels(svc.Labels.Map())
			if proxy == nil {
				continue
			}
			for i := range services {
				if services[i].Name == name && services[i].Proxy == nil {
					cfg := *proxy
					services[i].Proxy = &cfg
				}
			}
		}
	}
}

// WriteOverrideFile adds or updates one service's proxy route in the
// override file at path, preserving entries for other services already
// in the file. The resulting document is restricted to the persisted
// override shape: services.<name>.{labels,networks} plus a top-level
// caddy external network.
func WriteOverrideFile(path, serviceName string, config models.ProxyConfig) error {
	doc, err := Parse(path)
	if err != nil {
		doc = &Document{}
	}
	AddCaddyLabels(doc, serviceName, config)
	return Write(doc, path)
}

// Preview renders the override-file fragment a proxy config will
// produce for a service, shown to the user before saving.
func Preview(serviceName string, config models.ProxyConfig) string {
	return fmt.Sprintf(`# %s
services:
  %s:
    labels:
      caddy: %s
      caddy.reverse_proxy: "%s"
      caddy.tls: %s
    networks:
      - %s

networks:
  %s:
    external: true`,
		OverrideFileName, serviceName, config.Domain, config.UpstreamsLabel(),
		config.TLS, CaddyNetwork, CaddyNetwork)
}
