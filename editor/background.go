package editor

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chaos-io/pixelforge/rembg"
	"github.com/chaos-io/pixelforge/util"
)

// RemoveBackground exports the surface, runs it through the segmentation
// pipeline and replaces the surface with the result. The editor stays
// usable while inference runs; a second call meanwhile fails with
// rembg.ErrBusy.
func (e *Editor) RemoveBackground(ctx context.Context, onProgress rembg.ProgressFunc) error {
	if e.pipeline == nil {
		return ErrRemovalUnavailable
	}

	e.mu.Lock()
	if e.surface.Active() == nil {
		e.mu.Unlock()
		return ErrNoActiveObject
	}
	if e.processing {
		e.mu.Unlock()
		return rembg.ErrBusy
	}
	data, err := e.surface.ExportImage()
	if err != nil {
		e.mu.Unlock()
		return fmt.Errorf("%w: %v", rembg.ErrEncoding, err)
	}
	e.processing = true
	e.status = ""
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.processing = false
		e.mu.Unlock()
	}()

	img, _, err := util.DecodeImage(bytes.NewReader(data))
	if err != nil {
		return err
	}

	start := time.Now()
	out, err := e.pipeline.RemoveBackground(ctx, img, func(status string) {
		e.mu.Lock()
		e.status = status
		e.mu.Unlock()
		if onProgress != nil {
			onProgress(status)
		}
	})
	if err != nil {
		slog.Warn("remove background failed", "err", err)
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.loadBlob(bytes.NewReader(out)); err != nil {
		return err
	}
	slog.Info("background removed", "bytes", len(out), "elapsed", time.Since(start).String())
	return nil
}

// Processing reports whether background removal is in flight.
func (e *Editor) Processing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.processing
}

// Status is the last progress message of background removal.
func (e *Editor) Status() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}
