package engine

import "context"

// StartFunc is a plug-in's resolved start entry point.
type StartFunc func() error

// StopFunc is a plug-in's resolved stop entry point. Per spec.md §4.3, stop
// never fails the transition; a non-nil return is logged, not propagated.
type StopFunc func() error

// RuntimeHandle is an opened native runtime library (§4.2, §5 "resource
// ownership"). internal/nativert implements this against wazero; the engine
// only ever sees this interface, matching the spec's "external symbol
// loader" collaborator.
type RuntimeHandle interface {
	StartFunc(name string) (StartFunc, bool)
	StopFunc(name string) (StopFunc, bool)
	Close() error
}

// RuntimeLoader opens a runtime library found at installDir/relPath.
type RuntimeLoader interface {
	Open(ctx context.Context, installDir, relPath string) (RuntimeHandle, error)
}

// DescriptorParser turns a plug-in directory into a Descriptor value. This
// is the spec's "external" descriptor-parser collaborator; internal/manifest
// implements it against YAML descriptor documents.
type DescriptorParser interface {
	Parse(dir string) (*Descriptor, error)
}

// ExtensionValidator checks an extension's configuration tree against the
// JSON Schema document at schemaPath (§3, extension point "Schema" field).
// internal/schemavalidate implements this.
type ExtensionValidator interface {
	Validate(schemaPath string, cfg *ConfigElement) error
}
