package engine

import "context"

// Uninstall stops plugin id, unresolves it (and every dependent, depth-first
// over the inverse import graph), deregisters its extension points and
// extensions, and removes it from the id map (C6, §4.4).
func (e *Engine) Uninstall(ctx context.Context, id string) error {
	e.guard.lock()
	defer e.guard.unlock()

	if e.guard.insideCallback() {
		return errInvalidInvocation("uninstall called from inside a start/stop callback")
	}

	p, ok := e.plugins[id]
	if !ok {
		return errUnknown(id)
	}
	e.uninstallRec(p)
	return nil
}

func (e *Engine) uninstallRec(p *registeredPlugin) {
	e.stopRec(p)
	e.unresolveRec(p)

	old := p.state
	if old == StateInstalled {
		e.bus.emitEvent(PluginEvent{PluginID: p.id(), OldState: old, NewState: StateUninstalled})
	}

	e.unregisterExtensionPointsAndExtensions(p.descriptor)
	delete(e.plugins, p.id())
	if _, reachedZero := p.descriptor.Release(); !reachedZero {
		if remaining := p.descriptor.UseCount(); remaining > 0 {
			e.logf(SeverityWarning, "engine", "plug-in %s: descriptor leaked with %d outstanding host handle(s) still held after uninstall", p.id(), remaining)
		}
	}
	e.logf(SeverityInfo, "engine", "uninstalled plug-in %s", p.id())
}

// unresolveRec moves p (and every dependent, which must move first) from
// RESOLVED back to INSTALLED, closing the runtime library. p.processed
// marks p as mid-traversal so a cyclic import graph does not recurse back
// into it.
func (e *Engine) unresolveRec(p *registeredPlugin) {
	if p.state < StateResolved || p.processed {
		return
	}
	p.processed = true
	// Snapshot before recursing: a dependent's own unresolveRec eventually
	// calls clearEdges, which removes that dependent from p.importing out
	// from under a live range over the field itself, shifting later
	// elements down and skipping them.
	dependents := append([]*registeredPlugin(nil), p.importing...)
	for _, dependent := range dependents {
		e.unresolveRec(dependent)
	}
	p.processed = false

	p.clearEdges()
	if p.runtime != nil {
		p.runtime.Close()
		p.runtime = nil
	}
	p.startFn = nil
	p.stopFn = nil

	old := p.state
	p.state = StateInstalled
	e.bus.emitEvent(PluginEvent{PluginID: p.id(), OldState: old, NewState: StateInstalled})
}

// UninstallAll stops every active plug-in, then uninstalls every registered
// plug-in (§4.4).
func (e *Engine) UninstallAll(ctx context.Context) {
	e.guard.lock()
	defer e.guard.unlock()

	for len(e.started) > 0 {
		last := e.started[len(e.started)-1]
		if p, ok := e.plugins[last]; ok {
			e.stopRec(p)
		} else {
			e.started = e.started[:len(e.started)-1]
		}
	}

	for len(e.plugins) > 0 {
		var any *registeredPlugin
		for _, p := range e.plugins {
			any = p
			break
		}
		e.uninstallRec(any)
	}
}
