package editor

import (
	"github.com/chaos-io/pixelforge/canvas"
	"github.com/chaos-io/pixelforge/layer"
)

// Snapshot is a serializable view of the editor.
type Snapshot struct {
	Tool          string                `json:"tool"`
	DrawingMode   bool                  `json:"drawingMode"`
	Brush         canvas.Brush          `json:"brush"`
	FreeDrawBrush canvas.FreeDrawBrush  `json:"freeDrawBrush"`
	Filters       canvas.FilterSettings `json:"filters"`
	Width         int                   `json:"width"`
	Height        int                   `json:"height"`
	Background    string                `json:"background"`
	Objects       []canvas.Info         `json:"objects"`
	ActiveObject  string                `json:"activeObject,omitempty"`
	CropActive    bool                  `json:"cropActive"`
	Layers        []layer.Layer         `json:"layers"`
	ActiveLayer   string                `json:"activeLayer,omitempty"`
	Processing    bool                  `json:"processing"`
	Status        string                `json:"status,omitempty"`
	Version       uint64                `json:"version"`
}

func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.surface
	snap := Snapshot{
		Tool:          s.Tool().String(),
		DrawingMode:   s.DrawingMode(),
		Brush:         e.brush,
		FreeDrawBrush: s.FreeDrawBrush(),
		Filters:       e.filters,
		Width:         s.Width(),
		Height:        s.Height(),
		Background:    s.Background(),
		CropActive:    s.CropActive(),
		Layers:        e.layers.Layers(),
		Processing:    e.processing,
		Status:        e.status,
		Version:       s.Version(),
	}
	for _, o := range s.Objects() {
		snap.Objects = append(snap.Objects, canvas.Describe(o))
	}
	if o := s.Active(); o != nil {
		snap.ActiveObject = canvas.BaseOf(o).ID
	}
	snap.ActiveLayer, _ = e.layers.Active()
	return snap
}
