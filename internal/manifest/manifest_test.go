package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocument_Valid(t *testing.T) {
	data := []byte(`
id: com.example.alpha
version: 1.2.3
provider: Example Inc
imports:
  - plugin: com.example.base
    version: "1.0"
    rule: compatible
runtime:
  library: alpha.wasm
  start: start
  stop: stop
extension-points:
  - id: hooks
    name: Hooks
extensions:
  - point: com.example.base.hooks
    config:
      priority: "10"
`)

	d, err := ParseDocument("/plugins/alpha", data)
	require.NoError(t, err)
	assert.Equal(t, "com.example.alpha", d.ID)
	assert.Equal(t, "1.2.3", d.Version.String())
	require.Len(t, d.Imports, 1)
	assert.Equal(t, "com.example.base", d.Imports[0].Target)
	assert.False(t, d.Imports[0].Optional)
	assert.Equal(t, "alpha.wasm", d.RuntimeLibPath)
	require.Len(t, d.ExtensionPoints, 1)
	assert.Equal(t, "hooks", d.ExtensionPoints[0].LocalID)
	require.Len(t, d.Extensions, 1)
	assert.Equal(t, "com.example.base.hooks", d.Extensions[0].Point)
}

func TestParseDocument_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing id", `version: "1.0"`},
		{"bad id format", "id: \"9bad\"\nversion: \"1.0\"\n"},
		{"import without plugin id", "id: a\nimports:\n  - version: \"1.0\"\n"},
		{"unknown match rule", "id: a\nimports:\n  - plugin: b\n    rule: weird\n"},
		{"extension point without id", "id: a\nextension-points:\n  - name: x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument("/plugins/a", []byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
