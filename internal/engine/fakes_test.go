package engine

import (
	"context"
	"fmt"
)

// fakeHandle is a RuntimeHandle test double whose start/stop behavior and
// invocation counts are inspectable.
type fakeHandle struct {
	startErr   error
	stopErr    error
	startCalls int
	stopCalls  int
	closed     bool
	missing    map[string]bool // symbol names that should report "not found"
}

func (h *fakeHandle) StartFunc(name string) (StartFunc, bool) {
	if h.missing[name] {
		return nil, false
	}
	return func() error {
		h.startCalls++
		return h.startErr
	}, true
}

func (h *fakeHandle) StopFunc(name string) (StopFunc, bool) {
	if h.missing[name] {
		return nil, false
	}
	return func() error {
		h.stopCalls++
		return h.stopErr
	}, true
}

func (h *fakeHandle) Close() error {
	h.closed = true
	return nil
}

// fakeLoader resolves runtime libraries by relPath, failing for any path
// listed in failPaths.
type fakeLoader struct {
	handles   map[string]*fakeHandle
	failPaths map[string]bool
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{handles: make(map[string]*fakeHandle), failPaths: make(map[string]bool)}
}

func (l *fakeLoader) withHandle(relPath string, h *fakeHandle) *fakeLoader {
	l.handles[relPath] = h
	return l
}

func (l *fakeLoader) failing(relPath string) *fakeLoader {
	l.failPaths[relPath] = true
	return l
}

func (l *fakeLoader) Open(_ context.Context, _, relPath string) (RuntimeHandle, error) {
	if l.failPaths[relPath] {
		return nil, fmt.Errorf("simulated load failure for %s", relPath)
	}
	if h, ok := l.handles[relPath]; ok {
		return h, nil
	}
	return &fakeHandle{}, nil
}

// fakeParser implements DescriptorParser against an in-memory map, keyed by
// the directory Scan would pass it.
type fakeParser struct {
	byDir map[string]*Descriptor
}

func newFakeParser() *fakeParser {
	return &fakeParser{byDir: make(map[string]*Descriptor)}
}

func (p *fakeParser) add(dir string, d *Descriptor) *fakeParser {
	p.byDir[dir] = d
	return p
}

func (p *fakeParser) Parse(dir string) (*Descriptor, error) {
	d, ok := p.byDir[dir]
	if !ok {
		return nil, fmt.Errorf("no descriptor for %s", dir)
	}
	return d, nil
}

func mustDescriptor(t interface{ Helper(); Fatalf(string, ...any) }, d Descriptor) *Descriptor {
	t.Helper()
	out, err := NewDescriptor(d)
	if err != nil {
		t.Fatalf("NewDescriptor(%+v): %v", d, err)
	}
	return out
}
