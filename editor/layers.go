package editor

import (
	"fmt"

	"github.com/chaos-io/pixelforge/layer"
)

// SelectLayer makes the layer active and selects its object.
func (e *Editor) SelectLayer(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.layers.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	e.layers.Select(id)
	e.surface.SetActive(l.ObjectID)
	return nil
}

// ToggleLayerVisibility flips the layer's visible flag and shows or hides
// its object accordingly.
func (e *Editor) ToggleLayerVisibility(id string) (layer.Layer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.layers.ToggleVisibility(id)
	if !ok {
		return layer.Layer{}, fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	e.surface.SetVisible(l.ObjectID, l.Visible)
	return l, nil
}

func (e *Editor) ToggleLayerLock(id string) (layer.Layer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.layers.ToggleLock(id)
	if !ok {
		return layer.Layer{}, fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	e.surface.SetLocked(l.ObjectID, l.Locked)
	return l, nil
}

// DeleteLayer removes the layer together with its object. The object of the
// layer that becomes active is selected on the surface.
func (e *Editor) DeleteLayer(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	wasActive, _ := e.layers.Active()
	l, ok := e.layers.Delete(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	e.surface.Remove(l.ObjectID)
	if wasActive != id {
		return nil
	}
	if activeID, ok := e.layers.Active(); ok {
		if active, ok := e.layers.Find(activeID); ok {
			e.surface.SetActive(active.ObjectID)
		}
	}
	return nil
}

func (e *Editor) Layers() []layer.Layer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.layers.Layers()
}

// ActiveLayer returns the active layer id, or "" when none.
func (e *Editor) ActiveLayer() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, _ := e.layers.Active()
	return id
}
