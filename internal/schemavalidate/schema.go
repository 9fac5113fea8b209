// Package schemavalidate validates an extension's configuration tree
// against the JSON Schema an extension point declares (§3, "Extension
// point... optional schema path"). Grounded on
// holomush-holomush/internal/plugin/schema.go's compiled-schema caching and
// YAML/config-to-JSON-compatible-types conversion.
package schemavalidate

import (
	"encoding/json"
	"fmt"
	"sync"

	jschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/pluffgo/pluffgo/internal/engine"
)

// Validator compiles and caches JSON schemas by file path.
type Validator struct {
	mu    sync.Mutex
	cache map[string]*jschema.Schema
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{cache: make(map[string]*jschema.Schema)}
}

// Validate checks cfg's attributes/children against the schema document at
// schemaPath. A nil cfg with a non-empty schema is treated as an empty
// object.
func (v *Validator) Validate(schemaPath string, cfg *engine.ConfigElement) error {
	if schemaPath == "" {
		return nil
	}
	sch, err := v.compiled(schemaPath)
	if err != nil {
		return fmt.Errorf("compiling schema %s: %w", schemaPath, err)
	}

	data := configElementToJSONTypes(cfg)
	return sch.Validate(data)
}

func (v *Validator) compiled(path string) (*jschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if s, ok := v.cache[path]; ok {
		return s, nil
	}
	c := jschema.NewCompiler()
	sch, err := c.Compile(path)
	if err != nil {
		return nil, err
	}
	v.cache[path] = sch
	return sch, nil
}

// configElementToJSONTypes converts a ConfigElement (attributes + nested
// children) into the map[string]any/[]any shape jsonschema/v6 expects,
// mirroring holomush's YAML-to-JSON-compatible-types conversion.
func configElementToJSONTypes(el *engine.ConfigElement) any {
	if el == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(el.Attrs)+len(el.Children))
	for k, val := range el.Attrs {
		out[k] = jsonScalar(val)
	}
	for _, child := range el.Children {
		out[child.Name] = configElementToJSONTypes(child)
	}
	return out
}

// jsonScalar round-trips a string attribute value through JSON so that
// numeric/boolean-looking text is compared against a schema as the type it
// looks like, same trick holomush's helper uses for YAML scalars.
func jsonScalar(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}
