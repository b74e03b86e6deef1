package canvas

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

var red = color.NRGBA{R: 0xff, A: 0xff}

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newSurface(t *testing.T) *Surface {
	t.Helper()
	s, err := New(DefaultWidth, DefaultHeight, DefaultBackground, Brush{Color: "#ffffff", Size: 5})
	require.NoError(t, err)
	return s
}

func loadImage(t *testing.T, s *Surface, w, h int) *Image {
	t.Helper()
	_, err := s.LoadImage(bytes.NewReader(pngBytes(t, w, h, red)), "photo.png")
	require.NoError(t, err)
	img, ok := s.Active().(*Image)
	require.True(t, ok)
	return img
}

// hugePNG is a bare PNG header whose IHDR claims w x h pixels.
func hugePNG(w, h uint32) []byte {
	ihdr := make([]byte, 17)
	copy(ihdr, "IHDR")
	binary.BigEndian.PutUint32(ihdr[4:], w)
	binary.BigEndian.PutUint32(ihdr[8:], h)
	ihdr[12], ihdr[13] = 8, 6

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)-4))
	buf.Write(ihdr)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(ihdr))
	return buf.Bytes()
}
