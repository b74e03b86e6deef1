package canvas

import (
	"math"

	"github.com/chaos-io/pixelforge/layer"
)

// SelectAt activates the top-most visible, evented object under (x, y) and
// fires OnSelect. A miss clears the selection.
func (s *Surface) SelectAt(x, y float64) Object {
	if s == nil {
		return nil
	}
	for i := len(s.objects) - 1; i >= 0; i-- {
		o := s.objects[i]
		b := o.base()
		if !b.Visible || !b.Evented {
			continue
		}
		if contains(o, x, y) {
			s.active = o
			s.touch()
			if s.OnSelect != nil {
				s.OnSelect(o)
			}
			return o
		}
	}
	if s.active != nil {
		s.active = nil
		s.touch()
	}
	return nil
}

// MoveActive drags the active object if it is selectable.
func (s *Surface) MoveActive(dx, dy float64) {
	b := s.draggable()
	if b == nil {
		return
	}
	b.Left += dx
	b.Top += dy
	s.touch()
}

// ScaleActive multiplies the active object's scale, keeping its top-left
// corner in place.
func (s *Surface) ScaleActive(sx, sy float64) {
	b := s.draggable()
	if b == nil || sx <= 0 || sy <= 0 {
		return
	}
	b.ScaleX *= sx
	b.ScaleY *= sy
	s.touch()
}

func (s *Surface) draggable() *Base {
	if s == nil || s.active == nil {
		return nil
	}
	b := s.active.base()
	if !b.Selectable || b.Locked {
		return nil
	}
	return b
}

// BeginStroke starts a free-draw stroke; it returns false outside drawing
// mode.
func (s *Surface) BeginStroke(x, y float64) bool {
	if s == nil || !s.drawingMode {
		return false
	}
	s.stroke = []Point{{X: x, Y: y}}
	return true
}

func (s *Surface) ExtendStroke(x, y float64) {
	if s == nil || s.stroke == nil {
		return
	}
	s.stroke = append(s.stroke, Point{X: x, Y: y})
}

// EndStroke turns the recorded points into a Path painted with the current
// free-draw brush.
func (s *Surface) EndStroke() layer.Delta {
	if s == nil || s.stroke == nil {
		return layer.Delta{}
	}
	pts := s.stroke
	s.stroke = nil

	brush := s.freeDraw
	half := math.Max(brush.Width, 1) / 2
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
		maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
	}
	left, top := minX-half, minY-half

	rel := make([]Point, len(pts))
	for i, p := range pts {
		rel[i] = Point{X: p.X - left, Y: p.Y - top}
	}
	path := &Path{
		Base:        newBase(newID(), left, top, s.tool == ToolSelect),
		Points:      rel,
		Color:       brush.Color,
		StrokeWidth: brush.Width,
		width:       maxX - minX + 2*half,
		height:      maxY - minY + 2*half,
	}
	s.objects = append(s.objects, path)
	s.touch()
	return layer.Delta{Op: layer.OpAdd, Layer: layer.New(path.ID, "Drawing", layer.TypeDrawing)}
}
