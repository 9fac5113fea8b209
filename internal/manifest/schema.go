package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// GenerateSchema reflects the plugin.yaml document shape into a JSON
// Schema, so tooling (an editor, `pluffhost validate`) can check a
// plugin.yaml file before it ever reaches the parser. Grounded on
// holomush-holomush/internal/plugin/schema.go's GenerateSchema.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{DoNotReference: true}
	schema := r.Reflect(&document{})
	schema.Title = "pluffgo plugin.yaml"
	schema.Description = "Schema for pluffgo plug-in descriptor documents"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}
	return data, nil
}
