package rembg

import (
	"fmt"
	"image"
	"math"
)

// CompositeMask copies src and writes alpha = round((1-mask)*255) for every
// pixel. A mask of another size is sampled nearest-neighbour onto src.
func CompositeMask(src *image.NRGBA, mask *Mask) (*image.NRGBA, error) {
	if mask == nil || len(mask.Data) == 0 {
		return nil, fmt.Errorf("%w: empty mask", ErrInvalidSegmentationResult)
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if mask.Width*mask.Height != len(mask.Data) || mask.Width <= 0 {
		return nil, fmt.Errorf("%w: mask %dx%d has %d values", ErrInvalidSegmentationResult,
			mask.Width, mask.Height, len(mask.Data))
	}

	dst := copyNRGBA(src)
	for y := 0; y < h; y++ {
		my := y * mask.Height / h
		row := y * dst.Stride
		for x := 0; x < w; x++ {
			mx := x * mask.Width / w
			v := mask.Data[my*mask.Width+mx]
			dst.Pix[row+x*4+3] = alphaFor(v)
		}
	}
	return dst, nil
}

func alphaFor(v float32) uint8 {
	if math.IsNaN(float64(v)) {
		return 255
	}
	m := math.Min(1, math.Max(0, float64(v)))
	return uint8(math.Round((1 - m) * 255))
}
