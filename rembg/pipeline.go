package rembg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"sync/atomic"
	"time"
)

const defaultJPEGQuality = 80

// Pipeline removes backgrounds using a shared Engine. One Pipeline runs a
// single removal at a time; overlapping calls fail with ErrBusy.
type Pipeline struct {
	engine  *Engine
	quality int
	busy    atomic.Bool
}

type Option func(*Pipeline)

// WithJPEGQuality sets the quality of the payload handed to the model.
func WithJPEGQuality(q int) Option {
	return func(p *Pipeline) {
		if q > 0 && q <= 100 {
			p.quality = q
		}
	}
}

func NewPipeline(engine *Engine, opts ...Option) *Pipeline {
	p := &Pipeline{engine: engine, quality: defaultJPEGQuality}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Busy reports whether a removal is in flight.
func (p *Pipeline) Busy() bool {
	return p.busy.Load()
}

// RemoveBackground returns a PNG of img (bounded to MaxImageDimension) whose
// background pixels are transparent. onProgress may be nil.
func (p *Pipeline) RemoveBackground(ctx context.Context, img image.Image, onProgress ProgressFunc) ([]byte, error) {
	if !p.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer p.busy.Store(false)

	report := func(status string) {
		slog.Debug("background removal", "status", status)
		if onProgress != nil {
			onProgress(status)
		}
	}
	start := time.Now()

	report(StatusLoadingModel)
	seg, err := p.engine.Segmenter(ctx)
	if err != nil {
		return nil, fmt.Errorf("load segmenter: %w", err)
	}

	report(StatusProcessing)
	src := ResizeIfNeeded(img)

	var payload bytes.Buffer
	if err := jpeg.Encode(&payload, src, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("%w: jpeg payload: %v", ErrEncoding, err)
	}

	report(StatusRemoving)
	result, err := seg.Segment(ctx, payload.Bytes())
	if err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}
	if len(result) == 0 || result[0].Mask == nil {
		return nil, ErrInvalidSegmentationResult
	}

	out, err := CompositeMask(src, result[0].Mask)
	if err != nil {
		return nil, err
	}

	report(StatusFinalizing)
	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("%w: png: %v", ErrEncoding, err)
	}

	slog.Debug("background removed", "width", out.Rect.Dx(), "height", out.Rect.Dy(),
		"label", result[0].Label, "elapsed", time.Since(start))
	return buf.Bytes(), nil
}
