package layer

// Registry is an ordered list of layers plus the active selection.
// It is not safe for concurrent use; the editor serializes access.
type Registry struct {
	layers   []Layer
	activeID string
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Add(l Layer) {
	r.layers = append(r.layers, l)
}

// Apply folds a surface delta into the registry.
func (r *Registry) Apply(d Delta) {
	switch d.Op {
	case OpAdd:
		r.Add(d.Layer)
		r.activeID = d.Layer.ID
	case OpReplace:
		r.layers = r.layers[:0]
		r.Add(d.Layer)
		r.activeID = d.Layer.ID
	case OpReset:
		r.layers = nil
		r.activeID = ""
	}
}

// Select marks id as active. Unknown ids are ignored.
func (r *Registry) Select(id string) bool {
	if r.index(id) < 0 {
		return false
	}
	r.activeID = id
	return true
}

func (r *Registry) ToggleVisibility(id string) (Layer, bool) {
	i := r.index(id)
	if i < 0 {
		return Layer{}, false
	}
	r.layers[i].Visible = !r.layers[i].Visible
	return r.layers[i], true
}

func (r *Registry) ToggleLock(id string) (Layer, bool) {
	i := r.index(id)
	if i < 0 {
		return Layer{}, false
	}
	r.layers[i].Locked = !r.layers[i].Locked
	return r.layers[i], true
}

// Delete removes the layer. If it was active, the first remaining layer
// becomes active, or none when the registry is now empty.
func (r *Registry) Delete(id string) (Layer, bool) {
	i := r.index(id)
	if i < 0 {
		return Layer{}, false
	}
	removed := r.layers[i]
	r.layers = append(r.layers[:i], r.layers[i+1:]...)

	if r.activeID == id {
		r.activeID = ""
		if len(r.layers) > 0 {
			r.activeID = r.layers[0].ID
		}
	}
	return removed, true
}

// Active returns the active layer id, false when nothing is active.
func (r *Registry) Active() (string, bool) {
	return r.activeID, r.activeID != ""
}

func (r *Registry) Find(id string) (Layer, bool) {
	i := r.index(id)
	if i < 0 {
		return Layer{}, false
	}
	return r.layers[i], true
}

// FindByObject looks a layer up by the surface object it mirrors.
func (r *Registry) FindByObject(objectID string) (Layer, bool) {
	for _, l := range r.layers {
		if l.ObjectID == objectID {
			return l, true
		}
	}
	return Layer{}, false
}

// Layers returns a copy in insertion order.
func (r *Registry) Layers() []Layer {
	out := make([]Layer, len(r.layers))
	copy(out, r.layers)
	return out
}

func (r *Registry) Len() int {
	return len(r.layers)
}

func (r *Registry) index(id string) int {
	for i := range r.layers {
		if r.layers[i].ID == id {
			return i
		}
	}
	return -1
}
