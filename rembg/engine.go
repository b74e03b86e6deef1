package rembg

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// Engine lazily loads a Segmenter on first use and shares it afterwards.
// A failed load is not cached; the next call tries again.
type Engine struct {
	load Loader

	mu     sync.Mutex
	seg    Segmenter
	closed bool
}

func NewEngine(load Loader) *Engine {
	return &Engine{load: load}
}

// NewStaticEngine wraps an already constructed Segmenter.
func NewStaticEngine(seg Segmenter) *Engine {
	return &Engine{seg: seg}
}

func (e *Engine) Segmenter(ctx context.Context) (Segmenter, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrEngineClosed
	}
	if e.seg != nil {
		return e.seg, nil
	}

	slog.Debug("loading segmentation model")
	seg, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	e.seg = seg
	return seg, nil
}

// Loaded reports whether a Segmenter is ready without triggering a load.
func (e *Engine) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seg != nil
}

// Close releases the Segmenter if it implements io.Closer. Later calls to
// Segmenter fail with ErrEngineClosed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	seg := e.seg
	e.seg = nil
	if c, ok := seg.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
