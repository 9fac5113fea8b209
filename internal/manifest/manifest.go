// Package manifest parses plugin.yaml descriptor documents into
// engine.Descriptor values. It implements engine.DescriptorParser, the
// spec's "external" descriptor-parser collaborator (§6, "Descriptor
// on-disk layout").
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/pluffgo/pluffgo/internal/engine"
)

// idPattern validates plug-in identifiers: printable, no leading/trailing
// dot, letters/digits/hyphen/underscore/dot for namespacing.
var idPattern = regexp.MustCompile(`^[a-zA-Z](?:[a-zA-Z0-9_.-]*[a-zA-Z0-9_-])?$`)

// manifestImport mirrors one entry of the "imports" list in plugin.yaml.
type manifestImport struct {
	Plugin   string `yaml:"plugin"`
	Version  string `yaml:"version,omitempty"`
	Rule     string `yaml:"rule,omitempty"`
	Optional bool   `yaml:"optional,omitempty"`
}

type manifestExtensionPoint struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name,omitempty"`
	Schema string `yaml:"schema,omitempty"`
}

type manifestExtension struct {
	ID     string         `yaml:"id,omitempty"`
	Point  string         `yaml:"point"`
	Name   string         `yaml:"name,omitempty"`
	Config map[string]any `yaml:"config,omitempty"`
}

type manifestRuntime struct {
	Library string `yaml:"library,omitempty"`
	Start   string `yaml:"start,omitempty"`
	Stop    string `yaml:"stop,omitempty"`
}

// document is the top-level shape of a plugin.yaml file.
type document struct {
	ID              string                    `yaml:"id"`
	Version         string                    `yaml:"version,omitempty"`
	Provider        string                    `yaml:"provider,omitempty"`
	Imports         []manifestImport          `yaml:"imports,omitempty"`
	Runtime         manifestRuntime           `yaml:"runtime,omitempty"`
	ExtensionPoints []manifestExtensionPoint  `yaml:"extension-points,omitempty"`
	Extensions      []manifestExtension       `yaml:"extensions,omitempty"`
}

var matchRules = map[string]engine.MatchRule{
	"":                 engine.MatchNone,
	"none":             engine.MatchNone,
	"perfect":          engine.MatchPerfect,
	"equivalent":       engine.MatchEquivalent,
	"compatible":       engine.MatchCompatible,
	"greater-or-equal": engine.MatchGreaterOrEqual,
}

// Parser implements engine.DescriptorParser against plugin.yaml documents.
type Parser struct{}

// New returns a manifest.Parser.
func New() *Parser { return &Parser{} }

// Parse reads dir/plugin.yaml and returns the engine.Descriptor it
// describes.
func (p *Parser) Parse(dir string) (*engine.Descriptor, error) {
	path := filepath.Join(dir, "plugin.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseDocument(dir, data)
}

// ParseDocument parses raw plugin.yaml bytes, attributing the result to
// installDir (the descriptor's install-path, used to resolve the runtime
// library's relative path at resolve time).
func ParseDocument(installDir string, data []byte) (*engine.Descriptor, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if doc.ID == "" {
		return nil, fmt.Errorf("plugin.yaml: id is required")
	}
	if !idPattern.MatchString(doc.ID) {
		return nil, fmt.Errorf("plugin.yaml: id %q has an invalid format", doc.ID)
	}

	d := engine.Descriptor{
		ID:       doc.ID,
		Provider: doc.Provider,
		Path:     installDir,
	}
	if doc.Version != "" {
		v, err := engine.ParseVersion(doc.Version)
		if err != nil {
			return nil, fmt.Errorf("plugin.yaml: %w", err)
		}
		d.Version = v
		d.HasVersion = true
	}

	for _, imp := range doc.Imports {
		if imp.Plugin == "" {
			return nil, fmt.Errorf("plugin.yaml: import with empty plugin id")
		}
		rule, ok := matchRules[imp.Rule]
		if !ok {
			return nil, fmt.Errorf("plugin.yaml: import %q has unknown rule %q", imp.Plugin, imp.Rule)
		}
		var v engine.Version
		if imp.Version != "" {
			parsed, err := engine.ParseVersion(imp.Version)
			if err != nil {
				return nil, fmt.Errorf("plugin.yaml: import %q: %w", imp.Plugin, err)
			}
			v = parsed
		}
		d.Imports = append(d.Imports, engine.Import{
			Target:   imp.Plugin,
			Version:  v,
			Rule:     rule,
			Optional: imp.Optional,
		})
	}

	d.RuntimeLibPath = doc.Runtime.Library
	d.StartSymbol = doc.Runtime.Start
	d.StopSymbol = doc.Runtime.Stop

	for _, ep := range doc.ExtensionPoints {
		if ep.ID == "" {
			return nil, fmt.Errorf("plugin.yaml: extension point with empty id")
		}
		d.ExtensionPoints = append(d.ExtensionPoints, engine.ExtensionPoint{
			LocalID: ep.ID,
			Name:    ep.Name,
			Schema:  ep.Schema,
		})
	}

	for _, ext := range doc.Extensions {
		if ext.Point == "" {
			return nil, fmt.Errorf("plugin.yaml: extension with empty target point")
		}
		d.Extensions = append(d.Extensions, engine.Extension{
			LocalID: ext.ID,
			Point:   ext.Point,
			Name:    ext.Name,
			Config:  configElementFromMap("config", ext.Config),
		})
	}

	return engine.NewDescriptor(d)
}

// configElementFromMap converts a YAML-parsed map[string]any config section
// into a ConfigElement tree. Leaf scalars become attributes of the element;
// nested maps become nested child elements.
func configElementFromMap(name string, m map[string]any) *engine.ConfigElement {
	if m == nil {
		return nil
	}
	el := &engine.ConfigElement{Name: name, Attrs: make(map[string]string)}
	for k, v := range m {
		switch val := v.(type) {
		case map[string]any:
			el.Children = append(el.Children, configElementFromMap(k, val))
		default:
			el.Attrs[k] = fmt.Sprintf("%v", val)
		}
	}
	return el
}
