// Package config loads pixelforge settings. Sources are applied in order:
// built-in defaults, a YAML file, a .env file, then PIXELFORGE_* variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "PIXELFORGE_"

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Canvas       CanvasConfig       `yaml:"canvas"`
	Brush        BrushConfig        `yaml:"brush"`
	Segmentation SegmentationConfig `yaml:"segmentation"`
	Sessions     SessionsConfig     `yaml:"sessions"`
	Log          LogConfig          `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// MaxUploadBytes bounds the whole body of an image upload request.
	MaxUploadBytes int64 `yaml:"maxUploadBytes"`
}

type CanvasConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Background string `yaml:"background"`
}

type BrushConfig struct {
	Color string `yaml:"color"`
	Size  int    `yaml:"size"`
}

type SegmentationConfig struct {
	// Endpoint may contain a {model} placeholder.
	Endpoint    string        `yaml:"endpoint"`
	Token       string        `yaml:"token"`
	Model       string        `yaml:"model"`
	Timeout     time.Duration `yaml:"timeout"`
	InvertMask  bool          `yaml:"invertMask"`
	JPEGQuality int           `yaml:"jpegQuality"`
}

type SessionsConfig struct {
	IdleTTL      time.Duration `yaml:"idleTTL"`
	ReapSchedule string        `yaml:"reapSchedule"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080", MaxUploadBytes: 32 << 20},
		Canvas: CanvasConfig{Width: 800, Height: 600, Background: "#1a1a1f"},
		Brush:  BrushConfig{Color: "#ffffff", Size: 5},
		Segmentation: SegmentationConfig{
			Endpoint:    "https://api-inference.huggingface.co/models/{model}",
			Model:       "Xenova/segformer-b0-finetuned-ade-512-512",
			Timeout:     2 * time.Minute,
			JPEGQuality: 80,
		},
		Sessions: SessionsConfig{IdleTTL: 30 * time.Minute, ReapSchedule: "@every 1m"},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the YAML file at path (skipped when empty), then .env from the
// working directory if it exists, then the environment.
func Load(path string) (*Config, error) {
	return load(path, ".env")
}

func load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := os.LookupEnv(envPrefix + name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = n
		return nil
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := os.LookupEnv(envPrefix + name)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = d
		return nil
	}

	str("ADDR", &c.Server.Addr)
	str("CANVAS_BACKGROUND", &c.Canvas.Background)
	str("BRUSH_COLOR", &c.Brush.Color)
	str("SEGMENTATION_ENDPOINT", &c.Segmentation.Endpoint)
	str("SEGMENTATION_TOKEN", &c.Segmentation.Token)
	str("SEGMENTATION_MODEL", &c.Segmentation.Model)
	str("SESSION_REAP_SCHEDULE", &c.Sessions.ReapSchedule)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	if v, ok := os.LookupEnv(envPrefix + "SEGMENTATION_INVERT_MASK"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sSEGMENTATION_INVERT_MASK: %w", envPrefix, err)
		}
		c.Segmentation.InvertMask = b
	}

	return errors.Join(
		num("CANVAS_WIDTH", &c.Canvas.Width),
		num("CANVAS_HEIGHT", &c.Canvas.Height),
		num("BRUSH_SIZE", &c.Brush.Size),
		num("SEGMENTATION_JPEG_QUALITY", &c.Segmentation.JPEGQuality),
		dur("SEGMENTATION_TIMEOUT", &c.Segmentation.Timeout),
		dur("SESSION_IDLE_TTL", &c.Sessions.IdleTTL),
	)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("max upload bytes %d must be positive", c.Server.MaxUploadBytes))
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		errs = append(errs, fmt.Errorf("canvas size %dx%d must be positive", c.Canvas.Width, c.Canvas.Height))
	}
	if c.Brush.Size < 1 || c.Brush.Size > 50 {
		errs = append(errs, fmt.Errorf("brush size %d out of range [1,50]", c.Brush.Size))
	}
	if c.Segmentation.JPEGQuality < 1 || c.Segmentation.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("jpeg quality %d out of range [1,100]", c.Segmentation.JPEGQuality))
	}
	if c.Sessions.IdleTTL <= 0 {
		errs = append(errs, fmt.Errorf("session idle ttl %s must be positive", c.Sessions.IdleTTL))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", l.Level, err)
	}
	return level, nil
}

// NewLogger builds a slog logger writing to stderr in the configured format.
func (l LogConfig) NewLogger() *slog.Logger {
	level, _ := l.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
