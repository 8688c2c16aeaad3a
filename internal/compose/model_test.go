package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLabelSetMap(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want map[string]string
	}{
		{
			name: "mapping form",
			yaml: "caddy: web.localhost\ncaddy.tls: internal\n",
			want: map[string]string{"caddy": "web.localhost", "caddy.tls": "internal"},
		},
		{
			name: "list form",
			yaml: "- caddy=web.localhost\n- caddy.reverse_proxy={{upstreams 3000}}\n",
			want: map[string]string{
				"caddy":               "web.localhost",
				"caddy.reverse_proxy": "{{upstreams 3000}}",
			},
		},
		{
			name: "list entries without separator are skipped",
			yaml: "- plainflag\n- key=value\n",
			want: map[string]string{"key": "value"},
		},
		{
			name: "value containing equals splits on first",
			yaml: "- key=a=b\n",
			want: map[string]string{"key": "a=b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ls LabelSet
			require.NoError(t, yaml.Unmarshal([]byte(tt.yaml), &ls))
			assert.Equal(t, tt.want, ls.Map())
		})
	}
}

func TestLabelSetSetConvertsListForm(t *testing.T) {
	var ls LabelSet
	require.NoError(t, yaml.Unmarshal([]byte("- app=web\n- tier=frontend\n"), &ls))

	ls.Set("caddy", "web.localhost")

	m := ls.Map()
	assert.Equal(t, "web", m["app"], "existing pairs survive the format upgrade")
	assert.Equal(t, "frontend", m["tier"])
	assert.Equal(t, "web.localhost", m["caddy"])

	// Re-marshaling emits the mapping form.
	out, err := yaml.Marshal(ls)
	require.NoError(t, err)
	assert.Contains(t, string(out), "app: web")
	assert.Contains(t, string(out), "caddy: web.localhost")
}

func TestLabelSetSetUpdatesInPlace(t *testing.T) {
	var ls LabelSet
	ls.Set("caddy", "old.localhost")
	ls.Set("caddy", "new.localhost")
	assert.Equal(t, map[string]string{"caddy": "new.localhost"}, ls.Map())
}

// The networks field must decode as a raw node in every shape it can
// take; a parse failure here skips the whole file in a batch refresh.
func TestServiceNetworksShapes(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		var svc Service
		require.NoError(t, yaml.Unmarshal([]byte("image: nginx\n"), &svc))
		assert.True(t, svc.Networks.IsZero())
	})

	t.Run("list form", func(t *testing.T) {
		var svc Service
		require.NoError(t, yaml.Unmarshal([]byte("networks:\n  - internal\n  - caddy\n"), &svc))
		require.Equal(t, yaml.SequenceNode, svc.Networks.Kind)
		var list []string
		require.NoError(t, svc.Networks.Decode(&list))
		assert.Equal(t, []string{"internal", "caddy"}, list)
	})

	t.Run("mapping form keeps aliases", func(t *testing.T) {
		var svc Service
		require.NoError(t, yaml.Unmarshal([]byte("networks:\n  internal:\n    aliases: [w]\n"), &svc))
		require.Equal(t, yaml.MappingNode, svc.Networks.Kind)

		out, err := yaml.Marshal(&svc)
		require.NoError(t, err)
		assert.Contains(t, string(out), "aliases:")
	})

	t.Run("scalar form", func(t *testing.T) {
		var svc Service
		require.NoError(t, yaml.Unmarshal([]byte("networks: internal\n"), &svc))
		assert.Equal(t, yaml.ScalarNode, svc.Networks.Kind)
	})
}

// Round-trip: fields the engine does not model survive parse/serialize
// untouched, at both document and service level.
func TestDocumentRoundTripPreservesUnknownFields(t *testing.T) {
	src := `
version: "3.9"
name: myapp
x-custom:
  anchor: value
services:
  web:
    image: nginx:1.27
    restart: unless-stopped
    environment:
      FOO: bar
    ports:
      - "3000:3000"
    labels:
      - caddy=web.myapp.localhost
      - caddy.reverse_proxy={{upstreams 3000}}
    depends_on:
      - db
    networks:
      - internal
  db:
    image: postgres:16
    volumes:
      - data:/var/lib/postgresql/data
    networks:
      internal:
        aliases:
          - database
volumes:
  data: null
networks:
  internal:
    driver: bridge
`
	var doc Document
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))

	out, err := Serialize(&doc)
	require.NoError(t, err)

	var got, want map[string]interface{}
	require.NoError(t, yaml.Unmarshal(out, &got))
	require.NoError(t, yaml.Unmarshal([]byte(src), &want))
	assert.Equal(t, want, got, "re-serializing an unmodified document must be semantically equivalent")
}
