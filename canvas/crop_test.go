package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurface_StartCrop(t *testing.T) {
	s := newSurface(t)
	img := loadImage(t, s, 400, 300)

	s.StartCrop()
	r := s.CropRect()
	require.NotNil(t, r)
	assert.True(t, s.CropActive())
	assert.Equal(t, Object(r), s.Active())
	assert.Equal(t, 200.0, r.Left)
	assert.Equal(t, 150.0, r.Top)
	assert.Equal(t, 400.0, r.Width)
	assert.Equal(t, 300.0, r.Height)
	assert.Equal(t, Object(img), r.target)

	s.StartCrop()
	assert.Len(t, s.Objects(), 2)
	assert.Same(t, r, s.CropRect())
}

func TestSurface_StartCrop_StaysInteractive(t *testing.T) {
	s := newSurface(t)
	s.StartCrop()
	r := s.CropRect()

	s.SetTool(ToolDraw)
	assert.True(t, r.Selectable)
	assert.True(t, r.Evented)
}

func TestSurface_ApplyCrop(t *testing.T) {
	s := newSurface(t)
	img := loadImage(t, s, 400, 300)
	require.InDelta(t, 1.8, img.ScaleX, 1e-9)
	require.InDelta(t, 40, img.Left, 1e-9)
	require.InDelta(t, 30, img.Top, 1e-9)

	s.StartCrop()
	s.ApplyCrop()

	assert.InDelta(t, (200-40)/1.8, img.CropX, 1e-9)
	assert.InDelta(t, (150-30)/1.8, img.CropY, 1e-9)
	assert.InDelta(t, 400/1.8, img.Width, 1e-9)
	assert.InDelta(t, 300/1.8, img.Height, 1e-9)

	assert.False(t, s.CropActive())
	require.Len(t, s.Objects(), 1)
	assert.Equal(t, Object(img), s.Active())
}

func TestSurface_ApplyCrop_ImageActive(t *testing.T) {
	s := newSurface(t)
	img := loadImage(t, s, 400, 300)
	s.StartCrop()
	r := s.CropRect()
	r.Left, r.Top = 40, 30
	r.ScaleX = 0.5

	require.True(t, s.SetActive(img.ID))
	s.ApplyCrop()

	assert.InDelta(t, 0, img.CropX, 1e-9)
	assert.InDelta(t, 0, img.CropY, 1e-9)
	assert.InDelta(t, 200/1.8, img.Width, 1e-9)
	assert.InDelta(t, 300/1.8, img.Height, 1e-9)
}

func TestSurface_ApplyCrop_NoImage(t *testing.T) {
	s := newSurface(t)
	s.AddText()
	txt := s.Active()
	before := len(s.Objects())

	s.StartCrop()
	s.ApplyCrop()

	assert.False(t, s.CropActive())
	assert.Len(t, s.Objects(), before)
	assert.Equal(t, txt, s.Objects()[0])
}

func TestSurface_ApplyCrop_Empty(t *testing.T) {
	s := newSurface(t)
	s.StartCrop()
	s.ApplyCrop()

	assert.Empty(t, s.Objects())
	assert.Nil(t, s.Active())
}

func TestSurface_CancelCrop(t *testing.T) {
	s := newSurface(t)
	img := loadImage(t, s, 400, 300)
	s.StartCrop()
	s.CancelCrop()

	assert.False(t, s.CropActive())
	require.Len(t, s.Objects(), 1)
	assert.Zero(t, img.CropX)
	assert.Equal(t, 400.0, img.Width)
}

func TestSurface_ApplyCrop_NothingActive(t *testing.T) {
	s := newSurface(t)
	img := loadImage(t, s, 400, 300)
	s.StartCrop()
	s.SelectAt(5, 5)
	require.Nil(t, s.Active())

	s.ApplyCrop()
	assert.InDelta(t, 400/1.8, img.Width, 1e-9)
	assert.Equal(t, Object(img), s.Active())
}

func TestSurface_CancelCrop_KeepsTarget(t *testing.T) {
	s := newSurface(t)
	img := loadImage(t, s, 400, 300)

	s.StartCrop()
	s.CancelCrop()
	assert.Equal(t, Object(img), s.Active())

	s.StartCrop()
	assert.Equal(t, Object(img), s.CropRect().target)
	s.ApplyCrop()
	assert.InDelta(t, 400/1.8, img.Width, 1e-9)
	assert.InDelta(t, 300/1.8, img.Height, 1e-9)
}

func TestSurface_CancelCrop_TargetRemoved(t *testing.T) {
	s := newSurface(t)
	img := loadImage(t, s, 400, 300)
	s.StartCrop()
	require.True(t, s.Remove(img.ID))

	s.CancelCrop()
	assert.Nil(t, s.Active())
	assert.Empty(t, s.Objects())
}
