/*
Package analysis runs the face tracker over video clips.

Each clip is read frame by frame, every SampleStride'th frame is passed to
the detector and the detections are fed to a fresh FaceTracker.  The tracks
that survive the minimum length filter make up the clip's result.
*/
package analysis

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/swdee/go-facetrack/logger"
	"github.com/swdee/go-facetrack/render"
	"github.com/swdee/go-facetrack/tracker"
	"github.com/swdee/go-facetrack/video"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// Detector returns the detections of a single frame
type Detector interface {
	Detect(frame gocv.Mat) ([]tracker.Detection, error)
}

// FrameSource is a sequential reader of clip frames
type FrameSource interface {
	FPS() float64
	Duration() float64
	Width() int
	Height() int
	Next(mat *gocv.Mat) bool
	Close() error
}

// Options control how a clip is analyzed
type Options struct {
	// SampleStride analyzes every Nth frame, 1 or less analyzes all frames
	SampleStride int
	// Params are the tracker parameters
	Params tracker.Params
	// DebugOut is the path of an annotated debug video, empty to disable
	DebugOut string
	// DebugMaxFrames stops the analysis after this many debug frames have
	// been written, 0 for no limit
	DebugMaxFrames int
}

// Analyzer analyzes clips with a single detector.  It is not safe for
// concurrent use
type Analyzer struct {
	det     Detector
	opts    Options
	metrics *Metrics
	open    func(path string) (FrameSource, error)
}

// NewAnalyzer returns an Analyzer.  Metrics may be nil
func NewAnalyzer(det Detector, opts Options, metrics *Metrics) *Analyzer {
	return &Analyzer{
		det:     det,
		opts:    opts,
		metrics: metrics,
		open:    openVideo,
	}
}

// openVideo opens a clip with the video package
func openVideo(path string) (FrameSource, error) {
	return video.Open(path)
}

// AnalyzeClip tracks the faces in the clip at path.  A clip that cannot be
// opened, is cancelled through ctx, or has a frame rejected by the tracker
// gives a result with Error set and no faces
func (a *Analyzer) AnalyzeClip(ctx context.Context, path string) ClipResult {

	absPath, err := filepath.Abs(path)

	if err != nil {
		absPath = path
	}

	log := logger.Log().With(zap.String("clip", absPath))

	src, err := a.open(path)

	if err != nil {
		log.Warn("could not open clip", zap.Error(err))
		return a.failedResult(absPath, err)
	}
	defer src.Close()

	sink := a.openSink(src, log)

	if sink != nil {
		defer func() {
			if err := sink.Close(); err != nil {
				log.Warn("error closing debug video", zap.Error(err))
			}
		}()
	}

	ft := tracker.NewFaceTracker(a.opts.Params)

	frame := gocv.NewMat()
	defer frame.Close()

	fps := src.FPS()
	stride := max(1, a.opts.SampleStride)
	sampled := 0

	for idx := 0; ; idx++ {

		if err := ctx.Err(); err != nil {
			log.Warn("analysis cancelled", zap.Int("frame", idx), zap.Error(err))
			return a.failedResult(absPath, err)
		}

		if !src.Next(&frame) {
			break
		}

		if idx%stride != 0 {
			continue
		}

		t := float64(idx) / fps

		dets, err := a.det.Detect(frame)

		if err != nil {
			log.Warn("detection failed, frame treated as empty",
				zap.Int("frame", idx), zap.Error(err))
			dets = nil
		}

		tracks, err := ft.Update(t, dets)

		if err != nil {
			log.Error("tracker rejected frame", zap.Int("frame", idx), zap.Error(err))
			return a.failedResult(absPath, err)
		}

		sampled++
		a.metrics.frame(len(dets), spawnedAt(tracks, t))

		if sink != nil {
			more, err := sink.Write(frame, t, dets, tracks)

			if err != nil && !errors.Is(err, render.ErrSinkFull) {
				log.Warn("error writing debug frame", zap.Error(err))
			}

			if !more {
				log.Info("debug frame limit reached", zap.Int("frames", sink.Written()))
				break
			}
		}
	}

	faces := facesFromTracks(ft.Finish())
	a.metrics.emitted(len(faces))

	log.Info("clip analyzed", zap.Int("sampled", sampled), zap.Int("faces", len(faces)))

	return ClipResult{
		ClipPath: absPath,
		FPS:      fps,
		Duration: src.Duration(),
		Faces:    faces,
	}
}

// failedResult records a failed clip and returns its result
func (a *Analyzer) failedResult(absPath string, err error) ClipResult {
	a.metrics.failed()

	return ClipResult{
		ClipPath: absPath,
		Error:    err.Error(),
		Faces:    []FaceResult{},
	}
}

// openSink opens the debug video writer when one is configured.  Failing to
// open it only disables debug output
func (a *Analyzer) openSink(src FrameSource, log *zap.Logger) *render.Sink {

	if a.opts.DebugOut == "" || src.Width() <= 0 || src.Height() <= 0 {
		return nil
	}

	sink, err := render.NewSink(a.opts.DebugOut, src.FPS(), src.Width(),
		src.Height(), a.opts.DebugMaxFrames)

	if err != nil {
		log.Warn("debug video disabled", zap.Error(err))
		return nil
	}

	return sink
}

// spawnedAt counts the tracks created on the frame at time t
func spawnedAt(tracks []*tracker.Track, t float64) int {
	n := 0
	for _, tr := range tracks {
		if tr.Len() == 1 && tr.LastSeen() == t {
			n++
		}
	}
	return n
}
