package analysis

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/swdee/go-facetrack/detect"
	"github.com/swdee/go-facetrack/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// clipFunc analyzes the clip at position i of a batch
type clipFunc func(ctx context.Context, i int, path string) ClipResult

// RunBatch analyzes every clip with its own tracker, running up to
// pool.Size() clips at once with a detector borrowed from the pool.  Results
// are returned in the order of paths and a failing clip never stops the
// others
func RunBatch(ctx context.Context, paths []string, pool *detect.Pool,
	opts Options, metrics *Metrics) []ClipResult {

	runID := uuid.NewString()
	log := logger.Log().With(zap.String("run", runID))

	log.Info("batch started", zap.Int("clips", len(paths)),
		zap.Int("workers", pool.Size()))

	results := runOrdered(ctx, paths, pool.Size(), func(ctx context.Context,
		i int, path string) ClipResult {

		adapter := pool.Get()
		defer pool.Return(adapter)

		clipOpts := opts
		clipOpts.DebugOut = DebugPath(opts.DebugOut, i, len(paths))

		return NewAnalyzer(adapter, clipOpts, metrics).AnalyzeClip(ctx, path)
	})

	failed := 0

	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}

	log.Info("batch finished", zap.Int("clips", len(results)), zap.Int("failed", failed))

	return results
}

// runOrdered calls fn for every path with at most workers calls in flight and
// stores each result at its input position.  A panic while analyzing a clip
// is turned into a failed result for that clip
func runOrdered(ctx context.Context, paths []string, workers int, fn clipFunc) []ClipResult {

	results := make([]ClipResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, workers))

	for i, path := range paths {
		g.Go(func() error {
			results[i] = safeAnalyze(gctx, i, path, fn)
			return nil
		})
	}

	// workers never return an error
	_ = g.Wait()

	return results
}

// safeAnalyze runs fn and recovers from a panic
func safeAnalyze(ctx context.Context, i int, path string, fn clipFunc) (res ClipResult) {

	defer func() {
		if r := recover(); r != nil {
			absPath, err := filepath.Abs(path)

			if err != nil {
				absPath = path
			}

			logger.Log().Error("clip analysis panicked", zap.String("clip", absPath),
				zap.Any("panic", r))

			res = ClipResult{
				ClipPath: absPath,
				Error:    fmt.Sprintf("analysis failed: %v", r),
				Faces:    []FaceResult{},
			}
		}
	}()

	return fn(ctx, i, path)
}

// DebugPath returns the debug video path for clip i of n.  With more than one
// clip the index is added before the extension so clips do not overwrite each
// other
func DebugPath(debugOut string, i, n int) string {

	if debugOut == "" || n <= 1 {
		return debugOut
	}

	ext := filepath.Ext(debugOut)
	base := strings.TrimSuffix(debugOut, ext)

	return fmt.Sprintf("%s-%d%s", base, i, ext)
}
