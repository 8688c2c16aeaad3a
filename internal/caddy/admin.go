// Package caddy talks to the caddy proxy daemon: its admin HTTP API
// for the active route list, and its process lifecycle via systemd or
// the container engine.
package caddy

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"
)

// DefaultAdminURL is where caddy serves its admin API on a local
// machine.
const DefaultAdminURL = "http://localhost:2019"

// AdminClient reads the proxy daemon's admin API. All reads are
// advisory: any network failure, timeout or malformed response
// degrades to an empty result so an unreachable daemon never stalls a
// reconciliation cycle.
type AdminClient struct {
	baseURL string
	http    *http.Client
}

// NewAdminClient builds a client with a short timeout bound; the
// timeout is mandatory so reads cannot block a refresh indefinitely.
func NewAdminClient(baseURL string, timeout time.Duration) *AdminClient {
	if baseURL == "" {
		baseURL = DefaultAdminURL
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &AdminClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// ActiveDomains returns the sorted, deduplicated hostnames currently
// routed by the daemon. The admin config tree has no stable shape, so
// every string inside an array under a "host" key is collected by a
// full recursive walk.
func (c *AdminClient) ActiveDomains(ctx context.Context) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/config/apps/http/servers", nil)
	if err != nil {
		return nil
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	var tree interface{}
	if err := json.NewDecoder(resp.Body).Decode(&tree); err != nil {
		return nil
	}

	var hosts []string
	collectHosts(tree, &hosts)

	sort.Strings(hosts)
	deduped := hosts[:0]
	for i, h := range hosts {
		if i == 0 || h != hosts[i-1] {
			deduped = append(deduped, h)
		}
	}
	return deduped
}

// IsReachable probes the admin API root config endpoint.
func (c *AdminClient) IsReachable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/config/", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// collectHosts walks every object and array node, gathering string
// entries of arrays keyed "host".
func collectHosts(node interface{}, out *[]string) {
	switch v := node.(type) {
	case map[string]interface{}:
		if arr, ok := v["host"].([]interface{}); ok {
			for _, entry := range arr {
				if s, ok := entry.(string); ok {
					*out = append(*out, s)
				}
			}
		}
		for _, child := range v {
			collectHosts(child, out)
		}
	case []interface{}:
		for _, child := range v {
			collectHosts(child, out)
		}
	}
}
