package engine

import "context"

// Start brings plugin id (and its dependencies) to state ACTIVE (C5, §4.3).
// No-op if already ACTIVE or beyond.
func (e *Engine) Start(ctx context.Context, id string) error {
	e.guard.lock()
	defer e.guard.unlock()

	if e.guard.insideCallback() {
		return errInvalidInvocation("start called from inside a start/stop callback")
	}

	p, ok := e.plugins[id]
	if !ok {
		return errUnknown(id)
	}

	started := make(map[string]bool)
	err := e.startRec(ctx, p, started)
	for id := range started {
		if pp, ok := e.plugins[id]; ok {
			pp.processed = false
		}
	}
	return err
}

func (e *Engine) startRec(ctx context.Context, p *registeredPlugin, visited map[string]bool) error {
	if p.state >= StateActive {
		return nil
	}
	if visited[p.id()] {
		return nil
	}
	visited[p.id()] = true

	if p.state < StateResolved {
		st := newResolveState()
		if _, err := e.resolvePrelim(ctx, p, st); err != nil {
			e.rollbackResolve(st)
			return err
		}
		e.commitResolve(st)
	}

	for _, target := range p.imported {
		if err := e.startRec(ctx, target, visited); err != nil {
			return err
		}
	}

	old := p.state
	p.state = StateStarting
	e.bus.emitEvent(PluginEvent{PluginID: p.id(), OldState: old, NewState: StateStarting})

	if p.startFn != nil {
		e.guard.enterStart()
		err := e.invokeStart(p.startFn)
		e.guard.leaveStart()
		if err != nil {
			e.logf(SeverityError, "engine", "plug-in %s failed to start: %v", p.id(), err)
			p.state = StateStopping
			e.bus.emitEvent(PluginEvent{PluginID: p.id(), OldState: StateStarting, NewState: StateStopping})
			if p.stopFn != nil {
				e.guard.enterStop()
				e.invokeStop(p.stopFn)
				e.guard.leaveStop()
			}
			p.state = StateResolved
			e.bus.emitEvent(PluginEvent{PluginID: p.id(), OldState: StateStopping, NewState: StateResolved})
			return errRuntime(p.id(), err, "start callback failed")
		}
	}

	p.state = StateActive
	e.started = append(e.started, p.id())
	e.bus.emitEvent(PluginEvent{PluginID: p.id(), OldState: StateStarting, NewState: StateActive})
	return nil
}

// invokeStart recovers a panicking start callback the same way
// corrreia-gostrike's manager.loadPluginEntry recovers a panicking Load().
func (e *Engine) invokeStart(fn StartFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errRuntime("", nil, "panic during start: %v", r)
		}
	}()
	return fn()
}

func (e *Engine) invokeStop(fn StopFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errRuntime("", nil, "panic during stop: %v", r)
		}
	}()
	return fn()
}

// Stop brings plugin id down from ACTIVE, stopping every dependent first
// (depth-first over the inverse import graph), per §4.3. Stop never fails.
func (e *Engine) Stop(ctx context.Context, id string) error {
	e.guard.lock()
	defer e.guard.unlock()

	p, ok := e.plugins[id]
	if !ok {
		return errUnknown(id)
	}
	e.stopRec(p)
	return nil
}

func (e *Engine) stopRec(p *registeredPlugin) {
	if p.state < StateActive || p.processed {
		return
	}
	// p.processed marks p as mid-traversal so a cyclic import graph does not
	// recurse back into it.
	p.processed = true
	for _, dependent := range p.importing {
		e.stopRec(dependent)
	}
	p.processed = false

	old := p.state
	p.state = StateStopping
	e.bus.emitEvent(PluginEvent{PluginID: p.id(), OldState: old, NewState: StateStopping})

	if p.stopFn != nil {
		e.guard.enterStop()
		if err := e.invokeStop(p.stopFn); err != nil {
			e.logf(SeverityWarning, "engine", "plug-in %s failed to stop cleanly: %v", p.id(), err)
		}
		e.guard.leaveStop()
	}

	e.removeFromStarted(p.id())
	p.state = StateResolved
	e.bus.emitEvent(PluginEvent{PluginID: p.id(), OldState: StateStopping, NewState: StateResolved})
}

func (e *Engine) removeFromStarted(id string) {
	for i, sid := range e.started {
		if sid == id {
			e.started = append(e.started[:i], e.started[i+1:]...)
			return
		}
	}
}

// StopAll repeatedly stops the last entry of the started list until empty,
// draining dependents before their dependencies.
func (e *Engine) StopAll(ctx context.Context) {
	e.guard.lock()
	defer e.guard.unlock()
	for len(e.started) > 0 {
		last := e.started[len(e.started)-1]
		p, ok := e.plugins[last]
		if !ok {
			e.started = e.started[:len(e.started)-1]
			continue
		}
		e.stopRec(p)
	}
}
