package canvas

import (
	"image"
	"image/color"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// lineHeight matches the spacing browsers use for canvas text objects.
const lineHeight = 1.16

var (
	fontOnce sync.Once
	fontErr  error
	regular  *opentype.Font

	facesMu sync.Mutex
	faces   = map[float64]font.Face{}
)

func loadFont() (*opentype.Font, error) {
	fontOnce.Do(func() {
		regular, fontErr = opentype.Parse(goregular.TTF)
	})
	return regular, fontErr
}

// faceFor returns a cached face at the given pixel size.
func faceFor(size float64) (font.Face, error) {
	size = math.Max(1, math.Round(size*4)/4)

	facesMu.Lock()
	defer facesMu.Unlock()
	if f, ok := faces[size]; ok {
		return f, nil
	}
	ft, err := loadFont()
	if err != nil {
		return nil, err
	}
	f, err := opentype.NewFace(ft, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	faces[size] = f
	return f, nil
}

func measureText(content string, size float64) (float64, float64) {
	lines := strings.Split(content, "\n")
	h := float64(len(lines)) * size * lineHeight
	face, err := faceFor(size)
	if err != nil {
		return 0, h
	}

	facesMu.Lock()
	defer facesMu.Unlock()
	var w float64
	for _, line := range lines {
		w = math.Max(w, float64(font.MeasureString(face, line))/64)
	}
	return w, h
}

// rasterizeText draws the text at size*m pixels onto a transparent image.
func rasterizeText(t *Text, m float64) (*image.NRGBA, error) {
	fill, err := ParseHexColor(t.Fill)
	if err != nil {
		fill = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
	w, h := measureText(t.Content, t.FontSize)
	size := t.FontSize * m
	face, err := faceFor(size)
	if err != nil {
		return nil, err
	}

	dst := image.NewNRGBA(image.Rect(0, 0, int(math.Ceil(w*m))+1, int(math.Ceil(h*m))+1))

	facesMu.Lock()
	defer facesMu.Unlock()
	ascent := face.Metrics().Ascent
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(fill), Face: face}
	for i, line := range strings.Split(t.Content, "\n") {
		top := float64(i) * size * lineHeight
		d.Dot = fixed.Point26_6{X: 0, Y: fixed.Int26_6(top*64) + ascent}
		d.DrawString(line)
	}
	return dst, nil
}
