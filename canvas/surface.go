// Package canvas owns the editor's single drawing surface: the ordered set of
// objects on it, the commands that mutate them, the free-draw brush, and the
// rasterizer used for previews and export.
//
// All methods are no-ops on a nil *Surface. Commands that need an active
// object do nothing when none is selected. Neither case is an error.
package canvas

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"path/filepath"
	"strings"

	"github.com/segmentio/ksuid"

	"github.com/chaos-io/pixelforge/layer"
	"github.com/chaos-io/pixelforge/util"
)

const (
	DefaultWidth      = 800
	DefaultHeight     = 600
	DefaultBackground = "#1a1a1f"

	maxDimension = 8192
	// fitRatio is the share of the surface a loaded image may occupy.
	fitRatio = 0.9
)

var ErrContextAcquisition = errors.New("cannot acquire drawing context")

type Tool int

const (
	ToolSelect Tool = iota
	ToolDraw
	ToolCrop
	ToolEraser
)

var toolNames = map[Tool]string{
	ToolSelect: "select",
	ToolDraw:   "draw",
	ToolCrop:   "crop",
	ToolEraser: "eraser",
}

func (t Tool) String() string {
	if n, ok := toolNames[t]; ok {
		return n
	}
	return "unknown"
}

func ParseTool(name string) (Tool, bool) {
	for t, n := range toolNames {
		if n == name {
			return t, true
		}
	}
	return ToolSelect, false
}

type Brush struct {
	Color string `json:"color"`
	Size  int    `json:"size"`
}

// FreeDrawBrush is the brush strokes are actually painted with, after the
// eraser override.
type FreeDrawBrush struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

type Surface struct {
	width         int
	height        int
	background    color.NRGBA
	backgroundHex string

	objects []Object
	active  Object
	crop    *CropRect

	tool        Tool
	drawingMode bool
	selection   bool
	brush       Brush
	freeDraw    FreeDrawBrush
	stroke      []Point

	version uint64

	// OnSelect fires when pointer input selects an object.
	OnSelect func(Object)
}

func New(width, height int, background string, brush Brush) (*Surface, error) {
	if width <= 0 || height <= 0 || width > maxDimension || height > maxDimension {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrContextAcquisition, width, height)
	}
	bg, err := ParseHexColor(background)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContextAcquisition, err)
	}

	s := &Surface{
		width:         width,
		height:        height,
		background:    bg,
		backgroundHex: background,
		tool:          ToolSelect,
		selection:     true,
	}
	s.SetBrush(brush)
	return s, nil
}

func (s *Surface) Width() int {
	if s == nil {
		return 0
	}
	return s.width
}

func (s *Surface) Height() int {
	if s == nil {
		return 0
	}
	return s.height
}

func (s *Surface) Background() string {
	if s == nil {
		return ""
	}
	return s.backgroundHex
}

func (s *Surface) Tool() Tool {
	if s == nil {
		return ToolSelect
	}
	return s.tool
}

func (s *Surface) DrawingMode() bool {
	return s != nil && s.drawingMode
}

func (s *Surface) SelectionEnabled() bool {
	return s != nil && s.selection
}

func (s *Surface) FreeDrawBrush() FreeDrawBrush {
	if s == nil {
		return FreeDrawBrush{}
	}
	return s.freeDraw
}

// Version increases with every mutation; callers compare it to decide
// whether a cached render is stale.
func (s *Surface) Version() uint64 {
	if s == nil {
		return 0
	}
	return s.version
}

// Objects returns the objects bottom to top.
func (s *Surface) Objects() []Object {
	if s == nil {
		return nil
	}
	out := make([]Object, len(s.objects))
	copy(out, s.objects)
	return out
}

func (s *Surface) Active() Object {
	if s == nil {
		return nil
	}
	return s.active
}

// CropRect returns the crop rectangle of the open crop session, if any.
func (s *Surface) CropRect() *CropRect {
	if s == nil {
		return nil
	}
	return s.crop
}

func (s *Surface) Find(id string) Object {
	if s == nil {
		return nil
	}
	for _, o := range s.objects {
		if o.base().ID == id {
			return o
		}
	}
	return nil
}

// SetTool switches free-draw mode, makes objects interactive only under the
// select tool and rebinds the brush. An open crop rectangle stays
// interactive under every tool.
func (s *Surface) SetTool(t Tool) {
	if s == nil {
		return
	}
	s.tool = t
	s.drawingMode = t == ToolDraw || t == ToolEraser
	s.selection = t == ToolSelect
	if !s.drawingMode {
		s.stroke = nil
	}
	for _, o := range s.objects {
		s.applyInteractivity(o)
	}
	s.configureBrush()
	s.touch()
}

func (s *Surface) SetBrush(b Brush) {
	if s == nil {
		return
	}
	s.brush = b
	s.configureBrush()
	s.touch()
}

func (s *Surface) configureBrush() {
	if s.tool == ToolEraser {
		s.freeDraw = FreeDrawBrush{Color: s.backgroundHex, Width: float64(s.brush.Size * 2)}
		return
	}
	s.freeDraw = FreeDrawBrush{Color: s.brush.Color, Width: float64(s.brush.Size)}
}

// applyInteractivity sets Selectable and Evented for o under the current
// tool. The live crop rectangle is exempt from the tool rule so it can
// still be dragged after switching away from select.
func (s *Surface) applyInteractivity(o Object) {
	b := o.base()
	interactive := s.tool == ToolSelect && !b.Locked
	if s.crop != nil && o == Object(s.crop) {
		interactive = true
	}
	b.Selectable = interactive
	b.Evented = interactive
}

// LoadImage decodes r and adds it, scaled to fit and centered, on top of
// the existing objects. The image becomes active.
func (s *Surface) LoadImage(r io.Reader, name string) (layer.Delta, error) {
	if s == nil {
		return layer.Delta{}, nil
	}
	img, err := s.decodeImage(r, name)
	if err != nil {
		return layer.Delta{}, err
	}
	s.add(img)
	return layer.Delta{Op: layer.OpAdd, Layer: layer.New(img.ID, img.Name, layer.TypeImage)}, nil
}

// LoadImageFromBlob is LoadImage that first clears the surface.
func (s *Surface) LoadImageFromBlob(r io.Reader) (layer.Delta, error) {
	if s == nil {
		return layer.Delta{}, nil
	}
	img, err := s.decodeImage(r, "Background removed")
	if err != nil {
		return layer.Delta{}, err
	}
	s.reset()
	s.add(img)
	return layer.Delta{Op: layer.OpReplace, Layer: layer.New(img.ID, img.Name, layer.TypeImage)}, nil
}

func (s *Surface) decodeImage(r io.Reader, name string) (*Image, error) {
	src, _, err := util.DecodeImageBounded(r, util.MaxImagePixels)
	if err != nil {
		return nil, err
	}
	nrgba := toNRGBA(src)
	w, h := float64(nrgba.Rect.Dx()), float64(nrgba.Rect.Dy())
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("decode image: empty image")
	}

	scale := min(fitRatio*float64(s.width)/w, fitRatio*float64(s.height)/h)

	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" {
		name = "Image"
	}
	img := &Image{
		Base:    newBase(newID(), (float64(s.width)-w*scale)/2, (float64(s.height)-h*scale)/2, s.tool == ToolSelect),
		Name:    name,
		Src:     nrgba,
		Width:   w,
		Height:  h,
		Filters: DefaultFilters(),
	}
	img.ScaleX, img.ScaleY = scale, scale
	return img, nil
}

// Clear removes every object and restores the background.
func (s *Surface) Clear() layer.Delta {
	if s == nil {
		return layer.Delta{}
	}
	s.reset()
	s.touch()
	return layer.Delta{Op: layer.OpReset}
}

func (s *Surface) reset() {
	s.objects = nil
	s.active = nil
	s.crop = nil
	s.stroke = nil
	s.background, _ = ParseHexColor(s.backgroundHex)
}

// Rotate adds delta degrees to the active object's angle. The angle is not
// normalized.
func (s *Surface) Rotate(delta float64) {
	if s == nil || s.active == nil {
		return
	}
	s.active.base().Angle += delta
	s.touch()
}

// AddText inserts an editable placeholder text and activates it.
func (s *Surface) AddText() layer.Delta {
	if s == nil {
		return layer.Delta{}
	}
	t := &Text{
		Base:       newBase(newID(), float64(s.width)/2-100, float64(s.height)/2, true),
		Content:    "Double-click to edit",
		FontSize:   24,
		Fill:       "#ffffff",
		FontFamily: "Inter, sans-serif",
	}
	s.add(t)
	return layer.Delta{Op: layer.OpAdd, Layer: layer.New(t.ID, "Text", layer.TypeText)}
}

// ApplyFilters sets the display filter of every image. Pixels are only
// adjusted when the surface is rendered.
func (s *Surface) ApplyFilters(f FilterSettings) {
	if s == nil {
		return
	}
	for _, o := range s.objects {
		if img, ok := o.(*Image); ok {
			img.Filters = f
			img.Filter = f.String()
		}
	}
	s.touch()
}

// SetActive activates the object with the given id.
func (s *Surface) SetActive(id string) bool {
	o := s.Find(id)
	if o == nil {
		return false
	}
	s.active = o
	s.touch()
	return true
}

// Remove deletes an object. Removing the active object clears the selection.
func (s *Surface) Remove(id string) bool {
	if s == nil {
		return false
	}
	for i, o := range s.objects {
		if o.base().ID != id {
			continue
		}
		s.objects = append(s.objects[:i], s.objects[i+1:]...)
		if s.active == o {
			s.active = nil
		}
		if s.crop != nil {
			if Object(s.crop) == o {
				s.crop = nil
			} else if s.crop.target == o {
				s.crop.target = nil
			}
		}
		s.touch()
		return true
	}
	return false
}

func (s *Surface) SetVisible(id string, visible bool) bool {
	o := s.Find(id)
	if o == nil {
		return false
	}
	o.base().Visible = visible
	s.touch()
	return true
}

// SetLocked pins an object: locked objects never become interactive.
func (s *Surface) SetLocked(id string, locked bool) bool {
	o := s.Find(id)
	if o == nil {
		return false
	}
	o.base().Locked = locked
	s.applyInteractivity(o)
	s.touch()
	return true
}

func (s *Surface) add(o Object) {
	s.objects = append(s.objects, o)
	s.active = o
	s.touch()
}

func (s *Surface) touch() {
	s.version++
}

func newID() string {
	return ksuid.New().String()
}

func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
