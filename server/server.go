// Package server exposes editor sessions over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chaos-io/pixelforge/canvas"
	"github.com/chaos-io/pixelforge/config"
	"github.com/chaos-io/pixelforge/editor"
	"github.com/chaos-io/pixelforge/rembg"
	nhttp "github.com/chaos-io/pixelforge/util/http"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg    *config.Config
	engine *rembg.Engine
	store  *Store
	reaper *Reaper
	router *gin.Engine
}

type Option func(*Server)

// WithEngine replaces the segmentation engine built from the config.
func WithEngine(engine *rembg.Engine) Option {
	return func(s *Server) {
		s.engine = engine
	}
}

func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = NewEngine(cfg.Segmentation)
	}
	s.store = NewStore(s.newEditor)

	reaper, err := NewReaper(s.store, cfg.Sessions.ReapSchedule, cfg.Sessions.IdleTTL)
	if err != nil {
		return nil, err
	}
	s.reaper = reaper
	s.router = s.routes()
	return s, nil
}

// NewEngine wires the remote segmentation endpoint into a lazily loaded
// engine.
func NewEngine(cfg config.SegmentationConfig) *rembg.Engine {
	rc := rembg.RemoteConfig{
		Endpoint:   cfg.Endpoint,
		Model:      cfg.Model,
		Token:      cfg.Token,
		Timeout:    cfg.Timeout,
		InvertMask: cfg.InvertMask,
	}
	return rembg.NewEngine(rembg.RemoteLoader(rc, nhttp.NewHTTPClientWithTimeout(cfg.Timeout)))
}

// newEditor gives every session its own pipeline over the shared engine.
func (s *Server) newEditor() (*editor.Editor, error) {
	pipeline := rembg.NewPipeline(s.engine, rembg.WithJPEGQuality(s.cfg.Segmentation.JPEGQuality))
	return editor.New(editor.Options{
		Width:      s.cfg.Canvas.Width,
		Height:     s.cfg.Canvas.Height,
		Background: s.cfg.Canvas.Background,
		Brush:      canvas.Brush{Color: s.cfg.Brush.Color, Size: s.cfg.Brush.Size},
	}, pipeline)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Store() *Store {
	return s.store
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.reaper.Start()
	defer s.reaper.Stop()
	defer func() {
		if err := s.engine.Close(); err != nil {
			slog.Warn("close segmentation engine", "err", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("pixelforge listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	slog.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
