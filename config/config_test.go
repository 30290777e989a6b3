package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-facetrack/detect"
	"github.com/swdee/go-facetrack/tracker"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {

	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 2, cfg.SampleStride)
	assert.Equal(t, 0, cfg.DebugMaxFrames)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, tracker.DefaultParams(), cfg.TrackerParams())
	assert.Equal(t, 0.18, cfg.BBoxExpandMargin)
	assert.Equal(t, float32(0.30), cfg.Detector.ScoreThreshold)
	assert.Equal(t, float32(0.3), cfg.Detector.NMSThreshold)
	assert.Equal(t, 5000, cfg.Detector.TopK)
	assert.Equal(t, detect.FaceMeshMouth(), cfg.AdapterOptions().Mouth)
	assert.Equal(t, detect.DefaultLandmarkParams(), cfg.LandmarkParams())
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoadYAML(t *testing.T) {

	path := writeFile(t, "facetrack.yaml", `
sample_stride: 3
max_missed_seconds: 1.5
debug_out: /tmp/debug.mp4
workers: 4
detector:
  model: /models/yunet.onnx
  score_threshold: 0.6
landmarks:
  model: /models/mesh.onnx
  point_dims: 2
  upper: 62
  lower: 66
  left: 48
  right: 54
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.SampleStride)
	assert.Equal(t, 1.5, cfg.TrackerParams().MaxMissedSeconds)
	assert.Equal(t, 0.28, cfg.TrackerParams().MaxAssignDistance)
	assert.Equal(t, "/tmp/debug.mp4", cfg.DebugOut)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "/models/yunet.onnx", cfg.YuNetParams().Model)
	assert.Equal(t, float32(0.6), cfg.YuNetParams().ScoreThreshold)
	assert.Equal(t, 5000, cfg.YuNetParams().TopK)
	assert.Equal(t, "/models/mesh.onnx", cfg.LandmarkParams().Model)
	assert.Equal(t, 2, cfg.LandmarkParams().PointDims)
	assert.Equal(t, 192, cfg.LandmarkParams().InputSize)
	assert.Equal(t, detect.IBUG68Mouth(), cfg.AdapterOptions().Mouth)
	assert.Equal(t, "debug", cfg.LoggerOptions().Level)
	assert.Equal(t, "json", cfg.LoggerOptions().Format)
}

func TestLoadTOML(t *testing.T) {

	path := writeFile(t, "facetrack.toml", `
sample_stride = 1
min_track_points = 8
ema_alpha = 0.5
bbox_expand_margin = 0.25

[detector]
model = "/models/yunet.onnx"
top_k = 100
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.SampleStride)
	assert.Equal(t, 8, cfg.TrackerParams().MinTrackPoints)
	assert.Equal(t, 0.5, cfg.TrackerParams().EMAAlpha)
	assert.Equal(t, 0.25, cfg.AdapterOptions().Margin)
	assert.Equal(t, 100, cfg.YuNetParams().TopK)
	assert.Equal(t, float32(0.30), cfg.YuNetParams().ScoreThreshold)
}

func TestLoadEmptyYAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoadErrors(t *testing.T) {

	tests := []struct {
		name string
		file string
		body string
	}{
		{"unknown yaml key", "c.yaml", "sample_strid: 2\n"},
		{"unknown toml key", "c.toml", "workerz = 2\n"},
		{"bad yaml", "c.yaml", "sample_stride: [\n"},
		{"invalid value", "c.yaml", "ema_alpha: 1.0\n"},
		{"no workers", "c.toml", "workers = 0\n"},
		{"bad format", "c.yaml", "logging:\n  format: xml\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.file, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load(writeFile(t, "config.json", "{}"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestValidate(t *testing.T) {

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"no detector model", func(c *Config) { c.Detector.Model = " " }},
		{"score threshold", func(c *Config) { c.Detector.ScoreThreshold = 1.5 }},
		{"top k", func(c *Config) { c.Detector.TopK = 0 }},
		{"min track points", func(c *Config) { c.MinTrackPoints = 0 }},
		{"distance", func(c *Config) { c.MaxAssignDistance = 0 }},
		{"iou gate", func(c *Config) { c.MinIoUGate = -0.1 }},
		{"negative missed", func(c *Config) { c.MaxMissedSeconds = -1 }},
		{"negative margin", func(c *Config) { c.BBoxExpandMargin = -0.1 }},
		{"negative iou weight", func(c *Config) { c.IoUWeight = -1 }},
		{"debug frames", func(c *Config) { c.DebugMaxFrames = -1 }},
		{"landmark dims", func(c *Config) {
			c.Landmarks.Model = "mesh.onnx"
			c.Landmarks.PointDims = 1
		}},
		{"landmark index", func(c *Config) {
			c.Landmarks.Model = "mesh.onnx"
			c.Landmarks.Left = -1
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	// landmark settings are ignored without a model
	cfg := Default()
	cfg.Landmarks.PointDims = 0
	assert.NoError(t, cfg.Validate())
}
