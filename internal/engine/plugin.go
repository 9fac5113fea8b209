package engine

// PluginState is a point in the per-plugin lifecycle state machine declared
// in spec.md §1.
type PluginState int

const (
	StateUninstalled PluginState = iota
	StateInstalled
	StateResolved
	StateStarting
	StateActive
	StateStopping
)

func (s PluginState) String() string {
	switch s {
	case StateUninstalled:
		return "UNINSTALLED"
	case StateInstalled:
		return "INSTALLED"
	case StateResolved:
		return "RESOLVED"
	case StateStarting:
		return "STARTING"
	case StateActive:
		return "ACTIVE"
	case StateStopping:
		return "STOPPING"
	default:
		return "UNKNOWN"
	}
}

// registeredPlugin is the mutable per-context record for one installed
// descriptor (C2).
type registeredPlugin struct {
	descriptor *Descriptor
	state      PluginState

	// imported/importing are kept in insertion order (imported: the order
	// p.descriptor.Imports declares its targets; importing: the order
	// dependents resolved against p) rather than as bare maps, so that
	// depth-first traversal during resolve/start/stop/uninstall always
	// visits a plug-in's dependencies in declaration order. The *Set maps
	// mirror the slices for O(1) membership checks; every mutation updates
	// both.
	imported     []*registeredPlugin
	importedSet  map[string]*registeredPlugin
	importing    []*registeredPlugin
	importingSet map[string]*registeredPlugin

	runtime RuntimeHandle
	startFn StartFunc
	stopFn  StopFunc

	processed bool // transient cycle-breaking flag, cleared at end of each top-level op
}

func newRegisteredPlugin(d *Descriptor) *registeredPlugin {
	return &registeredPlugin{
		descriptor:   d,
		state:        StateInstalled,
		importedSet:  make(map[string]*registeredPlugin),
		importingSet: make(map[string]*registeredPlugin),
	}
}

func (p *registeredPlugin) id() string { return p.descriptor.ID }

// clearEdges removes every imported/importing edge, updating both endpoints.
func (p *registeredPlugin) clearEdges() {
	for _, target := range p.imported {
		target.removeImporting(p.id())
	}
	p.imported = nil
	p.importedSet = make(map[string]*registeredPlugin)

	for _, dependent := range p.importing {
		dependent.removeImported(p.id())
	}
	p.importing = nil
	p.importingSet = make(map[string]*registeredPlugin)
}

// addEdgeTo records that p imports target, in the order it was declared.
// A target already recorded is left alone (p.descriptor.Imports names each
// target at most once per resolve pass, but addEdgeTo stays idempotent).
func (p *registeredPlugin) addEdgeTo(target *registeredPlugin) {
	if _, ok := p.importedSet[target.id()]; !ok {
		p.importedSet[target.id()] = target
		p.imported = append(p.imported, target)
	}
	if _, ok := target.importingSet[p.id()]; !ok {
		target.importingSet[p.id()] = p
		target.importing = append(target.importing, p)
	}
}

func (p *registeredPlugin) removeImported(id string) {
	if _, ok := p.importedSet[id]; !ok {
		return
	}
	delete(p.importedSet, id)
	for i, t := range p.imported {
		if t.id() == id {
			p.imported = append(p.imported[:i], p.imported[i+1:]...)
			break
		}
	}
}

func (p *registeredPlugin) removeImporting(id string) {
	if _, ok := p.importingSet[id]; !ok {
		return
	}
	delete(p.importingSet, id)
	for i, d := range p.importing {
		if d.id() == id {
			p.importing = append(p.importing[:i], p.importing[i+1:]...)
			break
		}
	}
}
