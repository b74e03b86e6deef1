// Package editor is the interaction layer over a canvas.Surface: it owns the
// active tool, the brush, the filter panel state and the layer registry, and
// routes keyboard and pointer input to surface commands.
package editor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/chaos-io/pixelforge/canvas"
	"github.com/chaos-io/pixelforge/layer"
	"github.com/chaos-io/pixelforge/rembg"
)

const (
	MinBrushSize = 1
	MaxBrushSize = 50

	// RotateStep is the angle the rotate command adds.
	RotateStep = 90.0

	ExportFileName = "pixelforge-export.png"
)

var (
	ErrUnknownTool        = errors.New("unknown tool")
	ErrInvalidBrush       = errors.New("invalid brush")
	ErrInvalidFilters     = errors.New("invalid filters")
	ErrNoActiveObject     = errors.New("no active object")
	ErrLayerNotFound      = errors.New("layer not found")
	ErrRemovalUnavailable = errors.New("background removal unavailable")
)

type Options struct {
	Width      int
	Height     int
	Background string
	Brush      canvas.Brush
}

func DefaultOptions() Options {
	return Options{
		Width:      canvas.DefaultWidth,
		Height:     canvas.DefaultHeight,
		Background: canvas.DefaultBackground,
		Brush:      canvas.Brush{Color: "#ffffff", Size: 5},
	}
}

// Editor is safe for concurrent use.
type Editor struct {
	mu sync.Mutex

	surface *canvas.Surface
	layers  *layer.Registry
	brush   canvas.Brush
	filters canvas.FilterSettings

	pipeline   *rembg.Pipeline
	processing bool
	status     string

	dragging     bool
	lastX, lastY float64
}

// New creates an editor with an empty surface. pipeline may be nil, in
// which case RemoveBackground fails with ErrRemovalUnavailable.
func New(opts Options, pipeline *rembg.Pipeline) (*Editor, error) {
	if !validBrush(opts.Brush) {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidBrush, opts.Brush)
	}
	s, err := canvas.New(opts.Width, opts.Height, opts.Background, opts.Brush)
	if err != nil {
		return nil, err
	}

	e := &Editor{
		surface:  s,
		layers:   layer.NewRegistry(),
		brush:    opts.Brush,
		filters:  canvas.DefaultFilters(),
		pipeline: pipeline,
	}
	s.OnSelect = e.syncSelection
	return e, nil
}

// syncSelection keeps the active layer on the object picked by the pointer.
func (e *Editor) syncSelection(o canvas.Object) {
	if l, ok := e.layers.FindByObject(canvas.BaseOf(o).ID); ok {
		e.layers.Select(l.ID)
	}
}

func (e *Editor) apply(d layer.Delta) {
	if d.Op == layer.OpNone {
		return
	}
	e.layers.Apply(d)
	slog.Debug("layer delta applied", "op", d.Op.String(), "layer", d.Layer.ID, "object", d.Layer.ObjectID)
}

func (e *Editor) SetBrushColor(hex string) error {
	if _, err := canvas.ParseHexColor(hex); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBrush, err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.brush.Color = hex
	e.surface.SetBrush(e.brush)
	return nil
}

func (e *Editor) SetBrushSize(size int) error {
	if size < MinBrushSize || size > MaxBrushSize {
		return fmt.Errorf("%w: size %d out of range [%d,%d]", ErrInvalidBrush, size, MinBrushSize, MaxBrushSize)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.brush.Size = size
	e.surface.SetBrush(e.brush)
	return nil
}

func validBrush(b canvas.Brush) bool {
	_, err := canvas.ParseHexColor(b.Color)
	return err == nil && b.Size >= MinBrushSize && b.Size <= MaxBrushSize
}

// SetFilters applies the filter settings to every image on the surface.
func (e *Editor) SetFilters(f canvas.FilterSettings) error {
	if !f.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidFilters, f)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filters = f
	e.surface.ApplyFilters(f)
	return nil
}

func (e *Editor) ResetFilters() {
	_ = e.SetFilters(canvas.DefaultFilters())
}

func (e *Editor) LoadImage(r io.Reader, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.surface.LoadImage(r, name)
	if err != nil {
		return err
	}
	if !e.filters.Neutral() {
		e.surface.ApplyFilters(e.filters)
	}
	e.apply(d)
	return nil
}

func (e *Editor) LoadImageFromBlob(r io.Reader) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadBlob(r)
}

func (e *Editor) loadBlob(r io.Reader) error {
	d, err := e.surface.LoadImageFromBlob(r)
	if err != nil {
		return err
	}
	e.apply(d)
	return nil
}

// ExportImage returns the surface as PNG at twice its size.
func (e *Editor) ExportImage() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surface.ExportImage()
}

func (e *Editor) ExportDataURL() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surface.ExportDataURL()
}

// Preview renders the surface at its logical size.
func (e *Editor) Preview() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surface.EncodePNG(1)
}

func (e *Editor) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.apply(e.surface.Clear())
}

func (e *Editor) Rotate(delta float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.surface.Rotate(delta)
}

func (e *Editor) AddText() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.apply(e.surface.AddText())
}

func (e *Editor) StartCrop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.surface.StartCrop()
}

// ApplyCrop closes the crop session; the crop tool gives way to select.
func (e *Editor) ApplyCrop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.endCrop(true)
}

func (e *Editor) CancelCrop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.endCrop(false)
}

func (e *Editor) endCrop(apply bool) {
	if apply {
		e.surface.ApplyCrop()
	} else {
		e.surface.CancelCrop()
	}
	if e.surface.Tool() == canvas.ToolCrop {
		e.surface.SetTool(canvas.ToolSelect)
	}
}
