package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/swdee/go-facetrack/logger"
	"github.com/swdee/go-facetrack/smartcrop"
	"go.uber.org/zap"
)

// cropBox is the crop plan of a single clip
type cropBox struct {
	ClipPath string              `json:"clipPath"`
	Segments []smartcrop.Segment `json:"segments"`
}

func newCropCommand(ctx *commandContext) *cobra.Command {
	var analysisPath string
	var energyPath string

	cmd := &cobra.Command{
		Use:   "crop",
		Short: "Plan horizontal crop segments from analyze output",
		Long: "Read the JSON written by analyze and print one crop plan per clip. " +
			"Clips that failed or have no faces are printed as null. The optional energy " +
			"file holds one array of {tStart, tEnd, energy} frames per clip, in the same order.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureConfig(); err != nil {
				return err
			}

			var analyses []smartcrop.Analysis
			if err := readJSON(analysisPath, &analyses); err != nil {
				return err
			}

			var energy [][]smartcrop.EnergyFrame
			if energyPath != "" {
				if err := readJSON(energyPath, &energy); err != nil {
					return err
				}
			}

			return writeJSON(cmd, planCrops(analyses, energy))
		},
	}

	cmd.Flags().StringVar(&analysisPath, "analysis", "", "Path to analyze JSON output")
	cmd.Flags().StringVar(&energyPath, "energy", "", "Path to per clip audio energy frames")
	_ = cmd.MarkFlagRequired("analysis")

	return cmd
}

// planCrops plans every clip, energy may be shorter than analyses
func planCrops(analyses []smartcrop.Analysis, energy [][]smartcrop.EnergyFrame) []*cropBox {

	planner := smartcrop.NewPlanner(smartcrop.DefaultParams())
	boxes := make([]*cropBox, len(analyses))

	for i, a := range analyses {
		var frames []smartcrop.EnergyFrame
		if i < len(energy) {
			frames = energy[i]
		}

		segments := planner.Plan(a, frames)
		if segments == nil {
			logger.Log().Warn("no crop plan for clip", zap.String("clip", a.ClipPath),
				zap.String("error", a.Error))
			continue
		}

		boxes[i] = &cropBox{ClipPath: a.ClipPath, Segments: segments}
	}

	return boxes
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
