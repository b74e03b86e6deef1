// Package rembg removes image backgrounds with a segmentation model.
//
// The model sits behind the Segmenter interface. Engine owns its lifecycle and
// Pipeline runs resize, inference and alpha compositing.
package rembg

import (
	"context"
	"errors"
)

var (
	ErrInvalidSegmentationResult = errors.New("invalid segmentation result")
	ErrEncoding                  = errors.New("encode image")
	ErrBusy                      = errors.New("background removal already in progress")
	ErrEngineClosed              = errors.New("segmentation engine closed")
)

// Mask holds per-pixel values in [0,1]. A value near 1 marks background
// (rendered transparent), near 0 foreground (kept opaque).
type Mask struct {
	Width  int
	Height int
	Data   []float32
}

type Segment struct {
	Label string
	Score float64
	Mask  *Mask
}

// Segmenter runs the model on an encoded image payload.
type Segmenter interface {
	Segment(ctx context.Context, payload []byte) ([]Segment, error)
}

// Loader builds a Segmenter. It may be slow (model download, warm-up).
type Loader func(ctx context.Context) (Segmenter, error)

// ProgressFunc receives human-readable status updates.
type ProgressFunc func(status string)

const (
	StatusLoadingModel = "Loading AI model..."
	StatusProcessing   = "Processing image..."
	StatusRemoving     = "Removing background..."
	StatusFinalizing   = "Finalizing..."
)
