package engine

import (
	"sync/atomic"
	"unicode/utf8"
)

// MaxIdentifierBytes is the maximum length of a plug-in identifier, per
// spec.md §3.
const MaxIdentifierBytes = 63

// ConfigElement is one node of an extension's configuration tree: a name,
// an ordered set of attributes, optional text content, and ordered children.
type ConfigElement struct {
	Name     string
	Attrs    map[string]string
	Text     string
	Children []*ConfigElement
}

// Import declares a dependency of one plug-in on another.
type Import struct {
	Target   string
	Version  Version
	Rule     MatchRule
	Optional bool
}

// ExtensionPoint is a named slot a plug-in exposes for other plug-ins to
// contribute to.
type ExtensionPoint struct {
	LocalID  string
	GlobalID string
	Name     string
	Schema   string
	owner    string // descriptor id that declared this extension point
}

// Extension is a contribution targeting an extension point's global id.
type Extension struct {
	LocalID  string
	GlobalID string
	Point    string
	owner    string // descriptor id that contributed this extension; set on registration
	Name     string
	Config   *ConfigElement
}

// Descriptor is the immutable, reference-counted metadata record for a
// plug-in (C1). It is created by the descriptor parser and shared by
// reference count between the registered record that installed it and any
// handles the host holds (§4.7, §9).
type Descriptor struct {
	ID              string
	Version         Version
	HasVersion      bool
	Provider        string
	Path            string
	Imports         []Import
	RuntimeLibPath  string
	StartSymbol     string
	StopSymbol      string
	ExtensionPoints []ExtensionPoint
	Extensions      []Extension

	useCount int32
}

// NewDescriptor validates and wraps a parsed descriptor value with one
// initial use-count share, owned by the caller.
func NewDescriptor(d Descriptor) (*Descriptor, error) {
	if d.ID == "" {
		return nil, errMalformed("", "identifier must not be empty")
	}
	if len(d.ID) > MaxIdentifierBytes {
		return nil, errMalformed(d.ID, "identifier %q exceeds %d bytes", d.ID, MaxIdentifierBytes)
	}
	if !utf8.ValidString(d.ID) || !isPrintable(d.ID) {
		return nil, errMalformed(d.ID, "identifier %q is not printable", d.ID)
	}
	out := d
	out.useCount = 1
	return &out, nil
}

func isPrintable(s string) bool {
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

// Acquire increments the descriptor's use-count, returning a new handle
// share. Every handle returned to the host by get-info, list-info, or
// install must call this.
func (d *Descriptor) Acquire() {
	atomic.AddInt32(&d.useCount, 1)
}

// Release decrements the use-count. Double-release is a programming error:
// ok is false when the counter was already at zero (the caller should log
// this and otherwise no-op), and the counter floors at zero rather than
// going negative. reachedZero is true when this call is the decrement that
// brought the count to zero.
func (d *Descriptor) Release() (ok, reachedZero bool) {
	for {
		cur := atomic.LoadInt32(&d.useCount)
		if cur <= 0 {
			return false, false
		}
		if atomic.CompareAndSwapInt32(&d.useCount, cur, cur-1) {
			return true, cur-1 == 0
		}
	}
}

// UseCount returns the current reference count.
func (d *Descriptor) UseCount() int {
	return int(atomic.LoadInt32(&d.useCount))
}

// GlobalExtensionPointID builds the global id for a local extension-point id
// declared by descriptor d: descriptor-id "." local-id.
func GlobalExtensionPointID(descriptorID, localID string) string {
	return descriptorID + "." + localID
}
