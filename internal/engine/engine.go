package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Engine is the per-context registry (C3): plug-ins by id, extension points
// and extensions by global id, start order, configured directories, and the
// event bus, all behind one re-entrant guard (C8).
type Engine struct {
	guard *guard
	bus   *bus

	loader    RuntimeLoader
	parser    DescriptorParser
	validator ExtensionValidator

	plugins map[string]*registeredPlugin
	points  map[string]ExtensionPoint
	exts    map[string][]Extension // extension-point global id -> extensions targeting it

	started []string // ids, in the real-time order they entered ACTIVE
	dirs    []string

	destroyed bool
}

// Options configures the collaborators an Engine is built with; all three
// may be nil, in which case resolve/scan/extension-registration operations
// needing them fail with Runtime or IO errors, or simply skip validation,
// rather than panicking.
type Options struct {
	Loader    RuntimeLoader
	Parser    DescriptorParser
	Validator ExtensionValidator
}

// New creates a context (§4.1). Create never blocks and has no effect on
// other contexts.
func New(opts Options) *Engine {
	e := &Engine{
		guard:     newGuard(),
		bus:       newBus(),
		loader:    opts.Loader,
		parser:    opts.Parser,
		validator: opts.Validator,
		plugins:   make(map[string]*registeredPlugin),
		points:    make(map[string]ExtensionPoint),
		exts:      make(map[string][]Extension),
	}
	registerEngine(e)
	return e
}

// AddDirectory registers a plug-in directory with the context. Idempotent.
func (e *Engine) AddDirectory(path string) {
	e.guard.lock()
	defer e.guard.unlock()
	for _, d := range e.dirs {
		if d == path {
			return
		}
	}
	e.dirs = append(e.dirs, path)
}

// RemoveDirectory removes a previously added directory, if present.
func (e *Engine) RemoveDirectory(path string) {
	e.guard.lock()
	defer e.guard.unlock()
	for i, d := range e.dirs {
		if d == path {
			e.dirs = append(e.dirs[:i], e.dirs[i+1:]...)
			return
		}
	}
}

// Directories returns a snapshot of the configured directories.
func (e *Engine) Directories() []string {
	e.guard.lock()
	defer e.guard.unlock()
	out := make([]string, len(e.dirs))
	copy(out, e.dirs)
	return out
}

// Destroy is equivalent to uninstall-all then release of all resources
// (§4.1, §4.8). Per §5/§9, a context must reject destroying itself from
// inside one of its own start/stop callbacks with InvalidInvocation rather
// than reentrantly tearing itself down underneath the running callback.
func (e *Engine) Destroy(ctx context.Context) error {
	e.guard.lock()
	if e.guard.insideCallback() {
		e.guard.unlock()
		return errInvalidInvocation("destroy called from inside a start/stop callback")
	}
	if e.destroyed {
		e.guard.unlock()
		return nil
	}
	e.destroyed = true
	e.guard.unlock()

	e.UninstallAll(ctx)
	unregisterEngine(e)
	return nil
}

// State returns the current state of the plug-in identified by id, and
// whether it exists.
func (e *Engine) State(id string) (PluginState, bool) {
	e.guard.lock()
	defer e.guard.unlock()
	p, ok := e.plugins[id]
	if !ok {
		return 0, false
	}
	return p.state, true
}

// Info is a borrowed snapshot of a registered plug-in's public data. The
// caller owns one Descriptor use-count share for each Info returned and must
// call ReleaseInfo exactly once per Info (§4.7, C9).
type Info struct {
	ID         string
	Descriptor *Descriptor
	State      PluginState
}

// GetInfo returns a ref-counted snapshot for one plug-in, or false if id is
// not registered.
func (e *Engine) GetInfo(id string) (Info, bool) {
	e.guard.lock()
	defer e.guard.unlock()
	p, ok := e.plugins[id]
	if !ok {
		return Info{}, false
	}
	p.descriptor.Acquire()
	return Info{ID: p.id(), Descriptor: p.descriptor, State: p.state}, true
}

// ListInfo returns a ref-counted snapshot for every registered plug-in.
// Acquisition is atomic: either every Info is counted, or (impossible here,
// since listing never fails) none are.
func (e *Engine) ListInfo() []Info {
	e.guard.lock()
	defer e.guard.unlock()
	out := make([]Info, 0, len(e.plugins))
	ids := make([]string, 0, len(e.plugins))
	for id := range e.plugins {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		p := e.plugins[id]
		p.descriptor.Acquire()
		out = append(out, Info{ID: p.id(), Descriptor: p.descriptor, State: p.state})
	}
	return out
}

// ReleaseInfo releases the use-count share held by an Info returned from
// GetInfo/ListInfo/Install. Double-release is a programming error (§4.7):
// it is logged here and otherwise a no-op.
func (e *Engine) ReleaseInfo(info Info) {
	if info.Descriptor == nil {
		return
	}
	if ok, _ := info.Descriptor.Release(); !ok {
		e.guard.lock()
		e.logf(SeverityWarning, "engine", "plug-in %s: Info released more times than it was acquired (double release)", info.ID)
		e.guard.unlock()
	}
}

// StartedPlugins returns the ids currently ACTIVE, in the real-time order
// they entered ACTIVE.
func (e *Engine) StartedPlugins() []string {
	e.guard.lock()
	defer e.guard.unlock()
	out := make([]string, len(e.started))
	copy(out, e.started)
	return out
}

// AddEventListener registers a plug-in state-change listener (§4.6).
func (e *Engine) AddEventListener(fn EventListener) uuid.UUID {
	e.guard.lock()
	defer e.guard.unlock()
	return e.bus.addEventListener(fn)
}

// RemoveEventListener removes a previously registered event listener.
func (e *Engine) RemoveEventListener(id uuid.UUID) {
	e.guard.lock()
	defer e.guard.unlock()
	e.bus.removeEventListener(id)
}

// AddLogListener registers a logger with a minimum severity filter (§4.6).
func (e *Engine) AddLogListener(fn LogListener, minLevel Severity) uuid.UUID {
	e.guard.lock()
	defer e.guard.unlock()
	return e.bus.addLogListener(fn, minLevel)
}

// RemoveLogListener removes a previously registered logger.
func (e *Engine) RemoveLogListener(id uuid.UUID) {
	e.guard.lock()
	defer e.guard.unlock()
	e.bus.removeLogListener(id)
}

// logf formats and delivers a log record to this context's own listeners
// (AddLogListener, §4.6) and to every framework-wide logger (AddLogger,
// lifecycle.go) that admits it, skipping the format work entirely when
// neither wants it.
func (e *Engine) logf(sev Severity, source, format string, args ...any) {
	if !e.bus.shouldLog(sev) && !anyGlobalLoggerWants(sev) {
		return
	}
	rec := LogRecord{Severity: sev, Source: source, Message: fmt.Sprintf(format, args...)}
	e.bus.emitLog(rec)
	dispatchGlobalLog(e, rec)
}
