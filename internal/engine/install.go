package engine

// Install registers d's identifier, extension points and extensions with
// the context and creates a registered record for it in state INSTALLED.
// Install takes ownership of one use-count share on the returned record; the
// Info handle returned carries its own separate share (§4.5, §4.7, C9).
//
// A duplicate id is a Conflict and leaves the existing registration (active
// or not) untouched, per end-to-end scenario 6 in spec.md §8.
func (e *Engine) Install(d *Descriptor) (Info, error) {
	e.guard.lock()
	defer e.guard.unlock()

	if e.guard.insideCallback() {
		return Info{}, errInvalidInvocation("install called from inside a start/stop callback")
	}

	if _, exists := e.plugins[d.ID]; exists {
		return Info{}, errConflict("plug-in %q is already installed", d.ID)
	}

	if err := e.registerExtensionPoints(d); err != nil {
		return Info{}, err
	}

	if err := e.validateExtensions(d); err != nil {
		e.unregisterExtensionPointsAndExtensions(d)
		return Info{}, err
	}

	p := newRegisteredPlugin(d)
	e.plugins[d.ID] = p
	e.registerExtensions(d)

	e.logf(SeverityInfo, "engine", "installed plug-in %s", d.ID)

	d.Acquire()
	return Info{ID: d.ID, Descriptor: d, State: p.state}, nil
}
