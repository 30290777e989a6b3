package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTracker(); err != nil {
		return err
	}
	if err := c.validateDetector(); err != nil {
		return err
	}
	if err := c.validateLandmarks(); err != nil {
		return err
	}
	if err := c.validateRun(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTracker() error {
	if c.MinTrackPoints < 1 {
		return errors.New("min_track_points must be at least 1")
	}
	if c.MaxAssignDistance <= 0 {
		return errors.New("max_assign_distance must be positive")
	}
	if c.MinIoUGate < 0 || c.MinIoUGate > 1 {
		return errors.New("min_iou_gate must be between 0 and 1")
	}
	if c.MaxMissedSeconds < 0 {
		return errors.New("max_missed_seconds must not be negative")
	}
	if c.EMAAlpha < 0 || c.EMAAlpha >= 1 {
		return errors.New("ema_alpha must be in [0, 1)")
	}
	if c.IoUWeight < 0 {
		return errors.New("iou_weight must not be negative")
	}
	if c.BBoxExpandMargin < 0 {
		return errors.New("bbox_expand_margin must not be negative")
	}
	return nil
}

func (c *Config) validateDetector() error {
	if strings.TrimSpace(c.Detector.Model) == "" {
		return errors.New("detector.model must be set")
	}
	if c.Detector.ScoreThreshold < 0 || c.Detector.ScoreThreshold > 1 {
		return errors.New("detector.score_threshold must be between 0 and 1")
	}
	if c.Detector.NMSThreshold < 0 || c.Detector.NMSThreshold > 1 {
		return errors.New("detector.nms_threshold must be between 0 and 1")
	}
	if c.Detector.TopK < 1 {
		return errors.New("detector.top_k must be at least 1")
	}
	return nil
}

func (c *Config) validateLandmarks() error {
	lm := c.Landmarks
	if lm.Model == "" {
		return nil
	}
	if lm.InputSize < 1 {
		return errors.New("landmarks.input_size must be at least 1")
	}
	if lm.PointDims < 2 {
		return errors.New("landmarks.point_dims must be at least 2")
	}
	if lm.Scale <= 0 {
		return errors.New("landmarks.scale must be positive")
	}
	for name, idx := range map[string]int{"upper": lm.Upper, "lower": lm.Lower,
		"left": lm.Left, "right": lm.Right} {
		if idx < 0 {
			return fmt.Errorf("landmarks.%s must not be negative", name)
		}
	}
	return nil
}

func (c *Config) validateRun() error {
	if c.DebugMaxFrames < 0 {
		return errors.New("debug_max_frames must not be negative")
	}
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Format) {
	case "", "auto", "json", "console":
	default:
		return fmt.Errorf("logging.format %q must be auto, json or console", c.Logging.Format)
	}
	return nil
}
