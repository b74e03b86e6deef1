package canvas

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"
)

type Kind int

const (
	KindImage Kind = iota
	KindText
	KindCropRect
	KindPath
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindText:
		return "text"
	case KindCropRect:
		return "crop"
	case KindPath:
		return "path"
	default:
		return "unknown"
	}
}

// Object is one drawable entity on the surface. The set of variants is
// closed: *Image, *Text, *CropRect and *Path.
type Object interface {
	Kind() Kind
	// Size is the unscaled, unrotated width and height.
	Size() (w, h float64)
	base() *Base
}

// Base holds the placement shared by every variant. Left/Top locate the
// unrotated top-left corner; rotation is applied about the object's center.
type Base struct {
	ID         string
	Left       float64
	Top        float64
	ScaleX     float64
	ScaleY     float64
	Angle      float64
	Selectable bool
	Evented    bool
	Visible    bool
	Locked     bool
}

func (b *Base) base() *Base { return b }

func newBase(id string, left, top float64, interactive bool) Base {
	return Base{
		ID:         id,
		Left:       left,
		Top:        top,
		ScaleX:     1,
		ScaleY:     1,
		Selectable: interactive,
		Evented:    interactive,
		Visible:    true,
	}
}

// Image is a raster object. CropX/CropY/Width/Height select the window of
// Src that is displayed, in source pixels.
type Image struct {
	Base
	Name    string
	Src     *image.NRGBA
	CropX   float64
	CropY   float64
	Width   float64
	Height  float64
	Filters FilterSettings
	// Filter is the CSS-style display string derived from Filters.
	Filter string
}

func (*Image) Kind() Kind { return KindImage }

func (o *Image) Size() (float64, float64) { return o.Width, o.Height }

type Text struct {
	Base
	Content    string
	FontSize   float64
	Fill       string
	FontFamily string
}

func (*Text) Kind() Kind { return KindText }

func (o *Text) Size() (float64, float64) { return measureText(o.Content, o.FontSize) }

// CropRect marks the region an ongoing crop will keep.
type CropRect struct {
	Base
	Width       float64
	Height      float64
	Fill        color.NRGBA
	Stroke      color.NRGBA
	StrokeWidth float64
	Dash        float64

	// target was active when the crop started.
	target Object
}

func (*CropRect) Kind() Kind { return KindCropRect }

func (o *CropRect) Size() (float64, float64) { return o.Width, o.Height }

// Path is a finished free-draw stroke. Points are relative to Left/Top.
type Path struct {
	Base
	Points      []Point
	Color       string
	StrokeWidth float64
	width       float64
	height      float64
}

func (*Path) Kind() Kind { return KindPath }

func (o *Path) Size() (float64, float64) { return o.width, o.height }

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Info is a flat, serializable description of an object.
type Info struct {
	ID         string  `json:"id"`
	Kind       string  `json:"kind"`
	Left       float64 `json:"left"`
	Top        float64 `json:"top"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	ScaleX     float64 `json:"scaleX"`
	ScaleY     float64 `json:"scaleY"`
	Angle      float64 `json:"angle"`
	Selectable bool    `json:"selectable"`
	Evented    bool    `json:"evented"`
	Visible    bool    `json:"visible"`
	Filter     string  `json:"filter,omitempty"`
	Text       string  `json:"text,omitempty"`
}

func Describe(o Object) Info {
	b := o.base()
	w, h := o.Size()
	info := Info{
		ID:         b.ID,
		Kind:       o.Kind().String(),
		Left:       b.Left,
		Top:        b.Top,
		Width:      w,
		Height:     h,
		ScaleX:     b.ScaleX,
		ScaleY:     b.ScaleY,
		Angle:      b.Angle,
		Selectable: b.Selectable,
		Evented:    b.Evented,
		Visible:    b.Visible,
	}
	switch v := o.(type) {
	case *Image:
		info.Filter = v.Filter
	case *Text:
		info.Text = v.Content
	}
	return info
}

// BaseOf exposes the shared placement of o.
func BaseOf(o Object) *Base {
	return o.base()
}

// contains reports whether surface point (x, y) falls inside the rotated
// bounds of o.
func contains(o Object, x, y float64) bool {
	b := o.base()
	w, h := o.Size()
	cx := b.Left + b.ScaleX*w/2
	cy := b.Top + b.ScaleY*h/2

	sin, cos := math.Sincos(b.Angle * math.Pi / 180)
	dx, dy := x-cx, y-cy
	lx := cos*dx + sin*dy
	ly := -sin*dx + cos*dy
	return math.Abs(lx) <= math.Abs(b.ScaleX)*w/2 && math.Abs(ly) <= math.Abs(b.ScaleY)*h/2
}

// FilterSettings are percentages in [0,200]; 100 leaves the image unchanged.
type FilterSettings struct {
	Brightness int `json:"brightness"`
	Contrast   int `json:"contrast"`
	Saturation int `json:"saturation"`
}

func DefaultFilters() FilterSettings {
	return FilterSettings{Brightness: 100, Contrast: 100, Saturation: 100}
}

func (f FilterSettings) Valid() bool {
	in := func(v int) bool { return v >= 0 && v <= 200 }
	return in(f.Brightness) && in(f.Contrast) && in(f.Saturation)
}

func (f FilterSettings) Neutral() bool {
	return f == DefaultFilters()
}

func (f FilterSettings) String() string {
	return fmt.Sprintf("brightness(%d%%) contrast(%d%%) saturate(%d%%)", f.Brightness, f.Contrast, f.Saturation)
}

// ParseHexColor accepts #rgb and #rrggbb.
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	var c color.NRGBA
	if len(hex) != 6 {
		return c, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return c, fmt.Errorf("invalid color %q: %w", s, err)
	}
	c.R, c.G, c.B, c.A = uint8(v>>16), uint8(v>>8), uint8(v), 0xff
	return c, nil
}
