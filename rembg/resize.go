package rembg

import (
	"image"
	"image/draw"
	"math"

	"github.com/nfnt/resize"
)

const MaxImageDimension = 1024

// ResizeIfNeeded 缩放（最长边 <= MaxImageDimension），保持宽高比
// 尺寸在范围内的图片只做拷贝，不缩放
func ResizeIfNeeded(img image.Image) *image.NRGBA {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()

	if w <= MaxImageDimension && h <= MaxImageDimension {
		return copyNRGBA(img)
	}

	newW, newH := boundedSize(w, h, MaxImageDimension)
	resized := resize.Resize(uint(newW), uint(newH), img, resize.Lanczos3)
	return toNRGBA(resized)
}

// boundedSize 最长边缩放到 maxSize，另一边四舍五入
func boundedSize(w, h, maxSize int) (int, int) {
	if w > h {
		return maxSize, int(math.Round(float64(h) * float64(maxSize) / float64(w)))
	}
	return int(math.Round(float64(w) * float64(maxSize) / float64(h))), maxSize
}

func toNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Rect.Min == (image.Point{}) {
		return nrgba
	}
	return copyNRGBA(img)
}

// copyNRGBA 拷贝到以 (0,0) 为原点的新 NRGBA
func copyNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
