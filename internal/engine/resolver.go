package engine

import "context"

// resolveOutcome is the internal result of one phase-1 recursive step.
type resolveOutcome int

const (
	resolveOK         resolveOutcome = iota // this subgraph fully committed already (already RESOLVED)
	resolvePreliminary                      // this subgraph succeeded but is still awaiting phase-2 commit
)

// resolveState tracks one Resolve/Start call's phase-1 walk: visited guards
// against revisiting a plug-in (cycle-closing edges and diamond imports),
// and order records the post-order DFS sequence — a plug-in's imports are
// appended before the plug-in itself — so phase 2 commits dependencies
// before their dependents, matching
// resolve_plugin_commit_rec's ordered imported-list walk rather than Go's
// randomized map iteration.
type resolveState struct {
	visited map[string]bool
	order   []*registeredPlugin
}

func newResolveState() *resolveState {
	return &resolveState{visited: make(map[string]bool)}
}

// Resolve brings plugin id and all of its transitive imports to state
// RESOLVED (C4, §4.2). Idempotent once already RESOLVED or higher.
func (e *Engine) Resolve(rctx context.Context, id string) error {
	e.guard.lock()
	defer e.guard.unlock()

	p, ok := e.plugins[id]
	if !ok {
		return errUnknown(id)
	}
	if p.state >= StateResolved {
		return nil
	}

	st := newResolveState()
	_, err := e.resolvePrelim(rctx, p, st)
	if err != nil {
		e.rollbackResolve(st)
		return err
	}

	e.commitResolve(st)
	return nil
}

// resolvePrelim is phase 1: depth-first, marking visited, recording edges in
// import-declaration order, and loading the runtime library once all
// imports are satisfied. A plug-in is appended to st.order after its own
// imports have been, so st.order is a dependency-before-dependent sequence.
func (e *Engine) resolvePrelim(rctx context.Context, p *registeredPlugin, st *resolveState) (resolveOutcome, error) {
	if p.state >= StateResolved {
		return resolveOK, nil
	}
	if st.visited[p.id()] {
		// Ancestor still mid-traversal: this is the cycle-closing edge.
		return resolvePreliminary, nil
	}
	st.visited[p.id()] = true
	p.processed = true

	for _, imp := range p.descriptor.Imports {
		target, exists := e.plugins[imp.Target]
		if !exists {
			if imp.Optional {
				continue
			}
			return resolveOK, errDependency(p.id(), "missing required import %q", imp.Target)
		}
		if !imp.Version.IsZero() {
			// A target with no declared version compares as the zero
			// Version (0.0.0.0), per §4.2's "missing components are 0";
			// it is not exempt from a non-none match rule.
			if Mismatch(imp.Rule, target.descriptor.Version, imp.Version) {
				return resolveOK, errDependency(p.id(), "import %q requires version %s (%s), have %s",
					imp.Target, imp.Version, imp.Rule, target.descriptor.Version)
			}
		}

		p.addEdgeTo(target)
		if _, err := e.resolvePrelim(rctx, target, st); err != nil {
			return resolveOK, err
		}
	}

	if p.descriptor.RuntimeLibPath != "" && e.loader != nil {
		handle, err := e.loader.Open(rctx, p.descriptor.Path, p.descriptor.RuntimeLibPath)
		if err != nil {
			return resolveOK, errRuntime(p.id(), err, "opening runtime library %q", p.descriptor.RuntimeLibPath)
		}
		p.runtime = handle
		if p.descriptor.StartSymbol != "" {
			fn, found := handle.StartFunc(p.descriptor.StartSymbol)
			if !found {
				return resolveOK, errRuntime(p.id(), nil, "start symbol %q not found", p.descriptor.StartSymbol)
			}
			p.startFn = fn
		}
		if p.descriptor.StopSymbol != "" {
			fn, found := handle.StopFunc(p.descriptor.StopSymbol)
			if !found {
				return resolveOK, errRuntime(p.id(), nil, "stop symbol %q not found", p.descriptor.StopSymbol)
			}
			p.stopFn = fn
		}
	} else if p.descriptor.RuntimeLibPath != "" && e.loader == nil {
		return resolveOK, errRuntime(p.id(), nil, "no runtime loader configured but plug-in declares a runtime library")
	}

	st.order = append(st.order, p)
	return resolvePreliminary, nil
}

// commitResolve is phase 2: walk st.order (dependencies before dependents),
// transition every plug-in still INSTALLED to RESOLVED, emit the event, and
// clear the transient visited flag.
func (e *Engine) commitResolve(st *resolveState) {
	for _, p := range st.order {
		p.processed = false
		if p.state == StateInstalled {
			old := p.state
			p.state = StateResolved
			e.bus.emitEvent(PluginEvent{PluginID: p.id(), OldState: old, NewState: StateResolved})
		}
	}
}

// rollbackResolve undoes every edge recorded during a failed phase 1 and
// closes any runtime library opened on the failing path. It walks
// st.visited rather than st.order: the plug-in whose import lookup or
// runtime load actually failed is marked visited but never reaches the
// append at the end of resolvePrelim, so it would be missing from
// st.order even though it may hold partially-recorded edges that still
// need clearing. Rollback emits no events, so unlike commitResolve its
// traversal order carries no observable ordering guarantee to preserve.
func (e *Engine) rollbackResolve(st *resolveState) {
	for id := range st.visited {
		p, ok := e.plugins[id]
		if !ok {
			continue
		}
		p.processed = false
		if p.state == StateInstalled {
			p.clearEdges()
			if p.runtime != nil {
				p.runtime.Close()
				p.runtime = nil
			}
			p.startFn = nil
			p.stopFn = nil
		}
	}
}
