package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/chaos-io/pixelforge/config"
	"github.com/chaos-io/pixelforge/rembg"
	"github.com/chaos-io/pixelforge/server"
	"github.com/chaos-io/pixelforge/util"
)

const usage = `usage:
  pixelforge serve [-config path]
  pixelforge rembg [-config path] -in <path|url> -out <png>`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "serve":
		err = serve(ctx, os.Args[2:])
	case "rembg":
		err = removeBackground(ctx, os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		slog.Error("pixelforge failed", "err", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(cfg.Log.NewLogger())
	return cfg, nil
}

func serve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML config file")
	_ = fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	srv, err := server.New(cfg)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func removeBackground(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rembg", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML config file")
	in := fs.String("in", "", "input image path or URL")
	out := fs.String("out", "", "output PNG path")
	_ = fs.Parse(args)
	if *in == "" || *out == "" {
		fs.Usage()
		return fmt.Errorf("-in and -out are required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	img, err := util.LoadImage(ctx, *in)
	if err != nil {
		return fmt.Errorf("load image: %w", err)
	}

	engine := server.NewEngine(cfg.Segmentation)
	defer func() {
		_ = engine.Close()
	}()
	pipeline := rembg.NewPipeline(engine, rembg.WithJPEGQuality(cfg.Segmentation.JPEGQuality))

	data, err := pipeline.RemoveBackground(ctx, img, func(status string) {
		slog.Info(status)
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(*out), os.ModePerm); err != nil {
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return err
	}
	slog.Info("done", "output", *out, "bytes", len(data))
	return nil
}
