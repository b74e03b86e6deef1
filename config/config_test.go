package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("", "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 800, cfg.Canvas.Width)
	assert.Equal(t, 80, cfg.Segmentation.JPEGQuality)
	assert.Equal(t, "@every 1m", cfg.Sessions.ReapSchedule)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "pixelforge.yaml", `
server:
  addr: ":9090"
canvas:
  width: 1024
  height: 768
segmentation:
  endpoint: http://localhost:8000/segment
  timeout: 45s
  invertMask: true
sessions:
  idleTTL: 10m
log:
  level: debug
`)
	cfg, err := load(path, "")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 1024, cfg.Canvas.Width)
	assert.Equal(t, 768, cfg.Canvas.Height)
	assert.Equal(t, "#1a1a1f", cfg.Canvas.Background)
	assert.Equal(t, "http://localhost:8000/segment", cfg.Segmentation.Endpoint)
	assert.Equal(t, 45*time.Second, cfg.Segmentation.Timeout)
	assert.True(t, cfg.Segmentation.InvertMask)
	assert.Equal(t, 10*time.Minute, cfg.Sessions.IdleTTL)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PIXELFORGE_ADDR", ":7070")
	t.Setenv("PIXELFORGE_BRUSH_SIZE", "12")
	t.Setenv("PIXELFORGE_SEGMENTATION_TIMEOUT", "5s")
	t.Setenv("PIXELFORGE_SEGMENTATION_INVERT_MASK", "true")

	path := writeFile(t, "pixelforge.yaml", "server:\n  addr: \":9090\"\n")
	cfg, err := load(path, "")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 12, cfg.Brush.Size)
	assert.Equal(t, 5*time.Second, cfg.Segmentation.Timeout)
	assert.True(t, cfg.Segmentation.InvertMask)
}

func TestLoad_DotEnv(t *testing.T) {
	// unset afterwards: godotenv writes straight into the process environment
	t.Setenv("PIXELFORGE_SEGMENTATION_TOKEN", "")
	require.NoError(t, os.Unsetenv("PIXELFORGE_SEGMENTATION_TOKEN"))

	env := writeFile(t, ".env", "PIXELFORGE_SEGMENTATION_TOKEN=hf_secret\n")
	cfg, err := load("", env)
	require.NoError(t, err)
	assert.Equal(t, "hf_secret", cfg.Segmentation.Token)

	_, err = load("", filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "bad yaml", yaml: "canvas: [1, 2"},
		{name: "bad upload limit", yaml: "server:\n  maxUploadBytes: 0\n"},
		{name: "bad canvas", yaml: "canvas:\n  width: 0\n"},
		{name: "bad brush", yaml: "brush:\n  size: 99\n"},
		{name: "bad quality", yaml: "segmentation:\n  jpegQuality: 0\n"},
		{name: "bad level", yaml: "log:\n  level: loud\n"},
		{name: "bad env number", env: map[string]string{"PIXELFORGE_CANVAS_WIDTH": "wide"}},
		{name: "bad env duration", env: map[string]string{"PIXELFORGE_SESSION_IDLE_TTL": "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeFile(t, "pixelforge.yaml", tt.yaml)
			_, err := load(path, "")
			assert.Error(t, err)
		})
	}

	_, err := load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.Error(t, err)
}
