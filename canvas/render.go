package canvas

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"
)

// ExportMultiplier is the pixel density of exported images.
const ExportMultiplier = 2

// ExportImage renders the surface at ExportMultiplier and encodes it as PNG.
// It returns nil without a surface.
func (s *Surface) ExportImage() ([]byte, error) {
	return s.EncodePNG(ExportMultiplier)
}

// EncodePNG renders the surface at the given multiplier as PNG.
func (s *Surface) EncodePNG(multiplier float64) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.Render(multiplier)); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportDataURL is ExportImage as a data URL; empty without a surface.
func (s *Surface) ExportDataURL() (string, error) {
	data, err := s.ExportImage()
	if err != nil || data == nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Render rasterizes every visible object over the opaque background.
func (s *Surface) Render(multiplier float64) *image.RGBA {
	if s == nil {
		return nil
	}
	if multiplier <= 0 {
		multiplier = 1
	}
	w := int(math.Round(float64(s.width) * multiplier))
	h := int(math.Round(float64(s.height) * multiplier))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(s.background), image.Point{}, draw.Src)

	for _, o := range s.objects {
		if !o.base().Visible {
			continue
		}
		var err error
		switch v := o.(type) {
		case *Image:
			renderImage(dst, v, multiplier)
		case *Text:
			err = renderText(dst, v, multiplier)
		case *CropRect:
			renderCropRect(dst, v, multiplier)
		case *Path:
			renderPath(dst, v, multiplier)
		}
		if err != nil {
			slog.Warn("render object", "id", o.base().ID, "kind", o.Kind().String(), "err", err)
		}
	}
	return dst
}

// placement maps unscaled local coordinates of an object of size w x h onto
// the destination: scale, rotate about the center, then multiply by m.
func placement(b *Base, w, h, m float64) f64.Aff3 {
	sin, cos := math.Sincos(b.Angle * math.Pi / 180)
	sx, sy := b.ScaleX, b.ScaleY
	cx := b.Left + sx*w/2
	cy := b.Top + sy*h/2
	return f64.Aff3{
		m * cos * sx, -m * sin * sy, m * (cx - cos*sx*w/2 + sin*sy*h/2),
		m * sin * sx, m * cos * sy, m * (cy - sin*sx*w/2 - cos*sy*h/2),
	}
}

// shifted makes a placement accept source coordinates offset by (ox, oy)
// and sampled k times denser than local units.
func shifted(a f64.Aff3, ox, oy, k float64) f64.Aff3 {
	return f64.Aff3{
		a[0] / k, a[1] / k, a[2] + a[0]*ox + a[1]*oy,
		a[3] / k, a[4] / k, a[5] + a[3]*ox + a[4]*oy,
	}
}

func apply(a f64.Aff3, x, y float64) (float64, float64) {
	return a[0]*x + a[1]*y + a[2], a[3]*x + a[4]*y + a[5]
}

func renderImage(dst *image.RGBA, img *Image, m float64) {
	window := image.Rect(
		int(math.Floor(img.CropX)), int(math.Floor(img.CropY)),
		int(math.Ceil(img.CropX+img.Width)), int(math.Ceil(img.CropY+img.Height)),
	).Intersect(img.Src.Bounds())
	if window.Empty() {
		return
	}

	piece := image.Image(img.Src.SubImage(window))
	if !img.Filters.Neutral() {
		piece = applyFilters(piece, img.Filters)
	}
	pb := piece.Bounds()

	a := placement(&img.Base, img.Width, img.Height, m)
	// piece pixel (px, py) sits at local (px - pb.Min.X + window.Min.X - CropX, ...)
	a = shifted(a, float64(window.Min.X-pb.Min.X)-img.CropX, float64(window.Min.Y-pb.Min.Y)-img.CropY, 1)
	draw.BiLinear.Transform(dst, a, piece, pb, draw.Over, nil)
}

// applyFilters bakes the CSS-style percentages into a copy of src.
func applyFilters(src image.Image, f FilterSettings) image.Image {
	out := src
	if f.Brightness != 100 {
		out = adjust.Brightness(out, float64(f.Brightness-100)/100)
	}
	if f.Contrast != 100 {
		out = adjust.Contrast(out, float64(f.Contrast-100)/100)
	}
	if f.Saturation != 100 {
		out = adjust.Saturation(out, float64(f.Saturation-100)/100)
	}
	return out
}

func renderText(dst *image.RGBA, t *Text, m float64) error {
	glyphs, err := rasterizeText(t, m)
	if err != nil {
		return err
	}
	w, h := t.Size()
	a := shifted(placement(&t.Base, w, h, m), 0, 0, m)
	draw.BiLinear.Transform(dst, a, glyphs, glyphs.Bounds(), draw.Over, nil)
	return nil
}

func renderCropRect(dst *image.RGBA, r *CropRect, m float64) {
	pw := int(math.Ceil(r.Width * m))
	ph := int(math.Ceil(r.Height * m))
	if pw <= 0 || ph <= 0 {
		return
	}
	piece := image.NewNRGBA(image.Rect(0, 0, pw, ph))
	draw.Draw(piece, piece.Bounds(), image.NewUniform(r.Fill), image.Point{}, draw.Src)

	stroke := max(1, int(math.Round(r.StrokeWidth*m)))
	dash := max(1, int(math.Round(r.Dash*m)))
	on := func(i int) bool { return (i/dash)%2 == 0 }
	for x := 0; x < pw; x++ {
		if !on(x) {
			continue
		}
		for t := 0; t < stroke && t < ph; t++ {
			piece.SetNRGBA(x, t, r.Stroke)
			piece.SetNRGBA(x, ph-1-t, r.Stroke)
		}
	}
	for y := 0; y < ph; y++ {
		if !on(y) {
			continue
		}
		for t := 0; t < stroke && t < pw; t++ {
			piece.SetNRGBA(t, y, r.Stroke)
			piece.SetNRGBA(pw-1-t, y, r.Stroke)
		}
	}

	a := shifted(placement(&r.Base, r.Width, r.Height, m), 0, 0, m)
	draw.BiLinear.Transform(dst, a, piece, piece.Bounds(), draw.Over, nil)
}

// renderPath strokes the polyline with round joins and caps. Every polygon
// is wound the same way so overlapping pieces add up instead of cancelling.
func renderPath(dst *image.RGBA, p *Path, m float64) {
	col, err := ParseHexColor(p.Color)
	if err != nil {
		col = color.NRGBA{A: 0xff}
	}
	w, h := p.Size()
	a := placement(&p.Base, w, h, m)
	scale := math.Sqrt(math.Abs(a[0]*a[4] - a[1]*a[3]))
	r := math.Max(p.StrokeWidth, 1) * scale / 2

	pts := make([]Point, len(p.Points))
	for i, pt := range p.Points {
		x, y := apply(a, pt.X, pt.Y)
		pts[i] = Point{X: x, Y: y}
	}

	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	for i, pt := range pts {
		addPolygon(z, circle(pt, r))
		if i == 0 {
			continue
		}
		prev := pts[i-1]
		dx, dy := pt.X-prev.X, pt.Y-prev.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*r, dx/l*r
		addPolygon(z, []Point{
			{X: prev.X + nx, Y: prev.Y + ny},
			{X: pt.X + nx, Y: pt.Y + ny},
			{X: pt.X - nx, Y: pt.Y - ny},
			{X: prev.X - nx, Y: prev.Y - ny},
		})
	}
	z.Draw(dst, b, image.NewUniform(col), image.Point{})
}

func circle(c Point, r float64) []Point {
	const n = 16
	pts := make([]Point, n)
	for i := range pts {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / n)
		pts[i] = Point{X: c.X + r*cos, Y: c.Y + r*sin}
	}
	return pts
}

func addPolygon(z *vector.Rasterizer, pts []Point) {
	var area float64
	for i := range pts {
		j := (i + 1) % len(pts)
		area += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	if area < 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, pt := range pts[1:] {
		z.LineTo(float32(pt.X), float32(pt.Y))
	}
	z.ClosePath()
}
