package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/swdee/go-facetrack/analysis"
	"github.com/swdee/go-facetrack/config"
	"github.com/swdee/go-facetrack/detect"
	"github.com/swdee/go-facetrack/logger"
	"go.uber.org/zap"
)

type analyzeFlags struct {
	clips          []string
	sampleStride   int
	debugOut       string
	debugMaxFrames int
	workers        int
	metricsFile    string
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var flags analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze [clip...]",
		Short: "Track faces in clips and print the results as JSON",
		Long: "Track faces in each clip and print a JSON array with one record per clip, " +
			"in the order given. Clips that cannot be opened produce a record with an error.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			applyAnalyzeFlags(cmd, cfg, &flags)

			if err := cfg.Validate(); err != nil {
				return err
			}

			clips := append(append([]string{}, flags.clips...), args...)
			return runAnalyze(cmd, cfg, clips, flags.metricsFile)
		},
	}

	cmd.Flags().StringSliceVar(&flags.clips, "clips", nil, "Clips to analyze")
	cmd.Flags().IntVar(&flags.sampleStride, "sample-stride", 0, "Analyze every Nth frame")
	cmd.Flags().StringVar(&flags.debugOut, "debug-out", "", "Write an annotated debug video to this path")
	cmd.Flags().IntVar(&flags.debugMaxFrames, "debug-max-frames", 0, "Stop after writing this many debug frames (0 = no limit)")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Number of clips analyzed in parallel")
	cmd.Flags().StringVar(&flags.metricsFile, "metrics-file", "", "Write prometheus counters to this textfile")

	return cmd
}

// applyAnalyzeFlags overrides config values with the flags that were set
func applyAnalyzeFlags(cmd *cobra.Command, cfg *config.Config, flags *analyzeFlags) {
	if cmd.Flags().Changed("sample-stride") {
		cfg.SampleStride = flags.sampleStride
	}
	if cmd.Flags().Changed("debug-out") {
		cfg.DebugOut = flags.debugOut
	}
	if cmd.Flags().Changed("debug-max-frames") {
		cfg.DebugMaxFrames = flags.debugMaxFrames
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = flags.workers
	}
}

func runAnalyze(cmd *cobra.Command, cfg *config.Config, clips []string, metricsFile string) error {

	ctx := cmd.Context()

	if err := ctx.Err(); err != nil {
		return err
	}

	if len(clips) == 0 {
		return writeJSON(cmd, []analysis.ClipResult{})
	}

	// never open more detectors than there are clips
	workers := min(cfg.Workers, len(clips))

	pool, err := detect.NewPool(workers, func() (*detect.Adapter, error) {
		return detect.Open(cfg.YuNetParams(), cfg.LandmarkParams(), cfg.AdapterOptions())
	})
	if err != nil {
		return fmt.Errorf("load detector: %w", err)
	}
	defer pool.Close()

	opts := analysis.Options{
		SampleStride:   cfg.SampleStride,
		Params:         cfg.TrackerParams(),
		DebugOut:       cfg.DebugOut,
		DebugMaxFrames: cfg.DebugMaxFrames,
	}

	metrics := analysis.NewMetrics()
	results := analysis.RunBatch(ctx, clips, pool, opts, metrics)

	// an interrupted batch has no complete result to print
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := writeJSON(cmd, results); err != nil {
		return err
	}

	if metricsFile != "" {
		if err := metrics.WriteTextfile(metricsFile); err != nil {
			logger.Log().Warn("could not write metrics", zap.String("path", metricsFile), zap.Error(err))
		}
	}

	return nil
}
