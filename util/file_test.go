package util

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestOpenImage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ksuid.New().String()+".png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, 12, 7), 0o644))

	img, err := OpenImage(path)
	require.NoError(t, err)
	assert.Equal(t, 12, img.Bounds().Dx())
	assert.Equal(t, 7, img.Bounds().Dy())

	_, err = OpenImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestDownloadImage(t *testing.T) {
	t.Parallel()

	data := encodePNG(t, 4, 3)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer server.Close()

	img, err := LoadImage(context.Background(), server.URL+"/ok.png")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())

	_, err = DownloadImage(context.Background(), server.URL+"/missing.png")
	assert.ErrorContains(t, err, "status code 404")
}

func TestDecodeImage(t *testing.T) {
	t.Parallel()

	_, format, err := DecodeImage(bytes.NewReader(encodePNG(t, 2, 2)))
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	_, _, err = DecodeImage(bytes.NewReader([]byte("not an image")))
	assert.ErrorContains(t, err, "decode image")
}

// pngHeader is a PNG signature plus an IHDR chunk claiming w x h RGBA pixels.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 17)
	copy(ihdr, "IHDR")
	binary.BigEndian.PutUint32(ihdr[4:], w)
	binary.BigEndian.PutUint32(ihdr[8:], h)
	ihdr[12], ihdr[13] = 8, 6

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(13))
	buf.Write(ihdr)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(ihdr))
	return buf.Bytes()
}

func TestDecodeImageBounded(t *testing.T) {
	t.Parallel()

	img, format, err := DecodeImageBounded(bytes.NewReader(encodePNG(t, 4, 3)), 12)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())

	_, _, err = DecodeImageBounded(bytes.NewReader(encodePNG(t, 4, 4)), 12)
	assert.ErrorIs(t, err, ErrImageTooLarge)

	_, _, err = DecodeImageBounded(bytes.NewReader(pngHeader(50000, 50000)), MaxImagePixels)
	assert.ErrorIs(t, err, ErrImageTooLarge)
	assert.ErrorContains(t, err, "50000x50000")

	_, _, err = DecodeImageBounded(bytes.NewReader(encodePNG(t, 4, 4)), 0)
	assert.NoError(t, err)

	_, _, err = DecodeImageBounded(bytes.NewReader([]byte("not an image")), MaxImagePixels)
	assert.ErrorContains(t, err, "decode image")
}

func TestIsImageContent(t *testing.T) {
	t.Parallel()

	assert.True(t, IsImageContent(encodePNG(t, 1, 1)))
	assert.False(t, IsImageContent([]byte("hello world")))
}
