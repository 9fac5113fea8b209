package engine

// registerExtensionPoints inserts every extension point declared by d into
// the context's point map. A conflicting global id aborts the whole insert
// and rolls back any points already inserted for d in this call (§4.5, §9
// Open Question (c): full rollback, not partial).
func (e *Engine) registerExtensionPoints(d *Descriptor) error {
	inserted := make([]string, 0, len(d.ExtensionPoints))
	for _, ep := range d.ExtensionPoints {
		global := GlobalExtensionPointID(d.ID, ep.LocalID)
		if _, exists := e.points[global]; exists {
			for _, g := range inserted {
				delete(e.points, g)
			}
			return errConflict("extension point %q conflicts with an already-registered extension point", global)
		}
		ep.GlobalID = global
		ep.owner = d.ID
		e.points[global] = ep
		inserted = append(inserted, global)
	}
	return nil
}

// validateExtensions checks every extension d contributes against its
// target extension point's schema, when both the point and a validator are
// configured (§3's "Extension point... optional schema path"). A point not
// yet registered (late binding, §4.5) is skipped here; nothing re-checks it
// once the point later appears.
func (e *Engine) validateExtensions(d *Descriptor) error {
	if e.validator == nil {
		return nil
	}
	for _, ext := range d.Extensions {
		point, ok := e.points[ext.Point]
		if !ok || point.Schema == "" {
			continue
		}
		if err := e.validator.Validate(point.Schema, ext.Config); err != nil {
			return errMalformed(d.ID, "extension %q targeting %q fails schema validation: %v", ext.LocalID, ext.Point, err)
		}
	}
	return nil
}

// registerExtensions appends every extension declared by d to the list for
// its target extension point, creating the list if the point is not yet
// registered (late binding is explicitly allowed by §4.5).
func (e *Engine) registerExtensions(d *Descriptor) {
	for _, ext := range d.Extensions {
		if ext.LocalID != "" && ext.GlobalID == "" {
			ext.GlobalID = GlobalExtensionPointID(d.ID, ext.LocalID)
		}
		ext.owner = d.ID
		e.exts[ext.Point] = append(e.exts[ext.Point], ext)
	}
}

// unregisterExtensionPointsAndExtensions removes every extension point still
// owned by d, and every extension d contributed, dropping any list that
// becomes empty (§4.4 uninstall).
func (e *Engine) unregisterExtensionPointsAndExtensions(d *Descriptor) {
	for _, ep := range d.ExtensionPoints {
		global := GlobalExtensionPointID(d.ID, ep.LocalID)
		if cur, ok := e.points[global]; ok && cur.owner == d.ID {
			delete(e.points, global)
		}
	}
	for point, list := range e.exts {
		filtered := list[:0:0]
		for _, ext := range list {
			if ext.owner != d.ID {
				filtered = append(filtered, ext)
			}
		}
		if len(filtered) == 0 {
			delete(e.exts, point)
		} else {
			e.exts[point] = filtered
		}
	}
}
