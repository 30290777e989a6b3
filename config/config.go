// Package config loads the analyzer settings from YAML or TOML files.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/swdee/go-facetrack/detect"
	"github.com/swdee/go-facetrack/logger"
	"github.com/swdee/go-facetrack/tracker"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for config files that are neither YAML
// nor TOML
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Detector contains the face detector settings.
type Detector struct {
	Model          string  `yaml:"model" toml:"model"`
	ScoreThreshold float32 `yaml:"score_threshold" toml:"score_threshold"`
	NMSThreshold   float32 `yaml:"nms_threshold" toml:"nms_threshold"`
	TopK           int     `yaml:"top_k" toml:"top_k"`
}

// Landmarks contains the landmark network settings.  An empty model
// disables mouth openness.
type Landmarks struct {
	Model     string  `yaml:"model" toml:"model"`
	InputSize int     `yaml:"input_size" toml:"input_size"`
	PointDims int     `yaml:"point_dims" toml:"point_dims"`
	Scale     float64 `yaml:"scale" toml:"scale"`
	// Landmark indices of the four mouth points
	Upper int `yaml:"upper" toml:"upper"`
	Lower int `yaml:"lower" toml:"lower"`
	Left  int `yaml:"left" toml:"left"`
	Right int `yaml:"right" toml:"right"`
}

// Logging contains the logger settings.
type Logging struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Config is the full analyzer configuration.
type Config struct {
	SampleStride      int     `yaml:"sample_stride" toml:"sample_stride"`
	MinTrackPoints    int     `yaml:"min_track_points" toml:"min_track_points"`
	MaxAssignDistance float64 `yaml:"max_assign_distance" toml:"max_assign_distance"`
	MinIoUGate        float64 `yaml:"min_iou_gate" toml:"min_iou_gate"`
	MaxMissedSeconds  float64 `yaml:"max_missed_seconds" toml:"max_missed_seconds"`
	BBoxExpandMargin  float64 `yaml:"bbox_expand_margin" toml:"bbox_expand_margin"`
	EMAAlpha          float64 `yaml:"ema_alpha" toml:"ema_alpha"`
	IoUWeight         float64 `yaml:"iou_weight" toml:"iou_weight"`
	DebugOut          string  `yaml:"debug_out" toml:"debug_out"`
	DebugMaxFrames    int     `yaml:"debug_max_frames" toml:"debug_max_frames"`
	Workers           int     `yaml:"workers" toml:"workers"`

	Detector  Detector  `yaml:"detector" toml:"detector"`
	Landmarks Landmarks `yaml:"landmarks" toml:"landmarks"`
	Logging   Logging   `yaml:"logging" toml:"logging"`
}

// Default returns a Config populated with the built in defaults.
func Default() Config {

	tp := tracker.DefaultParams()
	yp := detect.DefaultYuNetParams()
	lp := detect.DefaultLandmarkParams()
	mouth := detect.FaceMeshMouth()

	return Config{
		SampleStride:      2,
		MinTrackPoints:    tp.MinTrackPoints,
		MaxAssignDistance: tp.MaxAssignDistance,
		MinIoUGate:        tp.MinIoUGate,
		MaxMissedSeconds:  tp.MaxMissedSeconds,
		BBoxExpandMargin:  detect.DefaultAdapterOptions().Margin,
		EMAAlpha:          tp.EMAAlpha,
		IoUWeight:         tp.IoUWeight,
		Workers:           1,
		Detector: Detector{
			Model:          "models/face_detection_yunet_2023mar.onnx",
			ScoreThreshold: yp.ScoreThreshold,
			NMSThreshold:   yp.NMSThreshold,
			TopK:           yp.TopK,
		},
		Landmarks: Landmarks{
			InputSize: lp.InputSize,
			PointDims: lp.PointDims,
			Scale:     lp.Scale,
			Upper:     mouth.Upper,
			Lower:     mouth.Lower,
			Left:      mouth.Left,
			Right:     mouth.Right,
		},
		Logging: Logging{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load reads the configuration at path over the defaults and validates it.
// An empty path returns the defaults.  The format is chosen by the file
// extension.
func Load(path string) (*Config, error) {

	cfg := Default()

	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// decodeFile decodes a YAML or TOML file into cfg, rejecting unknown keys
func decodeFile(path string, cfg *Config) error {

	file, err := os.Open(path)

	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(file)
		dec.KnownFields(true)

		// an empty file leaves the defaults in place
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("parse config: %w", err)
		}

	case ".toml":
		dec := toml.NewDecoder(file)
		dec.DisallowUnknownFields()

		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}

	default:
		return fmt.Errorf("%w %q", ErrUnsupportedFormat, ext)
	}

	return nil
}

// TrackerParams returns the tracker parameters.
func (c *Config) TrackerParams() tracker.Params {
	return tracker.Params{
		MaxAssignDistance: c.MaxAssignDistance,
		MinIoUGate:        c.MinIoUGate,
		MaxMissedSeconds:  c.MaxMissedSeconds,
		EMAAlpha:          c.EMAAlpha,
		IoUWeight:         c.IoUWeight,
		MinTrackPoints:    c.MinTrackPoints,
	}
}

// YuNetParams returns the face detector parameters.
func (c *Config) YuNetParams() detect.YuNetParams {
	return detect.YuNetParams{
		Model:          c.Detector.Model,
		ScoreThreshold: c.Detector.ScoreThreshold,
		NMSThreshold:   c.Detector.NMSThreshold,
		TopK:           c.Detector.TopK,
	}
}

// LandmarkParams returns the landmark network parameters.
func (c *Config) LandmarkParams() detect.LandmarkParams {
	return detect.LandmarkParams{
		Model:     c.Landmarks.Model,
		InputSize: c.Landmarks.InputSize,
		PointDims: c.Landmarks.PointDims,
		Scale:     c.Landmarks.Scale,
	}
}

// AdapterOptions returns the detection adapter options.
func (c *Config) AdapterOptions() detect.AdapterOptions {
	return detect.AdapterOptions{
		Margin: c.BBoxExpandMargin,
		Mouth: detect.MouthIndices{
			Upper: c.Landmarks.Upper,
			Lower: c.Landmarks.Lower,
			Left:  c.Landmarks.Left,
			Right: c.Landmarks.Right,
		},
	}
}

// LoggerOptions returns the logger options.
func (c *Config) LoggerOptions() logger.Options {
	return logger.Options{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
	}
}
