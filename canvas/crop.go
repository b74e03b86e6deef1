package canvas

import "image/color"

var (
	cropFill   = color.NRGBA{R: 0, G: 200, B: 200, A: 51}
	cropStroke = color.NRGBA{R: 0, G: 0xc8, B: 0xc8, A: 0xff}
)

// StartCrop adds a crop rectangle covering the centered half of the surface
// and activates it. The object active before is remembered as the crop
// target. Does nothing while a crop session is open.
func (s *Surface) StartCrop() {
	if s == nil || s.crop != nil {
		return
	}
	r := &CropRect{
		Base:        newBase(newID(), float64(s.width)/4, float64(s.height)/4, true),
		Width:       float64(s.width) / 2,
		Height:      float64(s.height) / 2,
		Fill:        cropFill,
		Stroke:      cropStroke,
		StrokeWidth: 2,
		Dash:        5,
		target:      s.active,
	}
	s.crop = r
	s.add(r)
}

// ApplyCrop crops the active image to the crop rectangle and ends the
// session. When the rectangle itself or nothing is active, the crop target
// remembered by StartCrop is used, so the usual flow of dragging the
// rectangle and applying crops the image that was active before.
// If that object is not an image, the rectangle is removed and nothing is
// cropped.
func (s *Surface) ApplyCrop() {
	if s == nil || s.crop == nil {
		return
	}
	r := s.crop

	target := s.active
	if target == nil || target == Object(r) {
		target = r.target
	}
	if img, ok := target.(*Image); ok {
		img.CropX = (r.Left - img.Left) / img.ScaleX
		img.CropY = (r.Top - img.Top) / img.ScaleY
		img.Width = r.Width * r.ScaleX / img.ScaleX
		img.Height = r.Height * r.ScaleY / img.ScaleY
	}

	s.Remove(r.ID)
	if _, ok := target.(*Image); ok {
		s.restoreTarget(target)
	}
	s.touch()
}

// CancelCrop ends the crop session without touching any image. The crop
// target becomes active again when nothing else was selected meanwhile.
func (s *Surface) CancelCrop() {
	if s == nil || s.crop == nil {
		return
	}
	r := s.crop
	s.Remove(r.ID)
	s.restoreTarget(r.target)
}

func (s *Surface) restoreTarget(target Object) {
	if target == nil || s.active != nil || s.Find(target.base().ID) == nil {
		return
	}
	s.active = target
	s.touch()
}

// CropActive reports whether a crop session is open.
func (s *Surface) CropActive() bool {
	return s != nil && s.crop != nil
}
