package render

import (
	"errors"
	"fmt"

	"github.com/swdee/go-facetrack/tracker"
	"gocv.io/x/gocv"
)

// ErrSinkFull is returned when a frame is written after the frame limit has
// been reached
var ErrSinkFull = errors.New("debug video frame limit reached")

// Sink writes annotated debug frames to an mp4 file
type Sink struct {
	writer    *gocv.VideoWriter
	maxFrames int
	written   int
	trail     *tracker.Trail
	canvas    gocv.Mat
	detFont   Font
	trackFont Font
	style     TrailStyle
}

// NewSink opens path for writing at the given frame rate and size.  A
// maxFrames of 0 means no limit
func NewSink(path string, fps float64, width, height, maxFrames int) (*Sink, error) {

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid debug video size %dx%d", width, height)
	}

	writer, err := gocv.VideoWriterFile(path, "mp4v", fps, width, height, true)

	if err != nil {
		return nil, fmt.Errorf("error opening debug video %s: %w", path, err)
	}

	return &Sink{
		writer:    writer,
		maxFrames: maxFrames,
		trail:     tracker.NewTrail(30),
		canvas:    gocv.NewMat(),
		detFont:   DefaultFont(),
		trackFont: TrackFont(),
		style:     DefaultTrailStyle(),
	}, nil
}

// Write draws the detections and active tracks of the frame at time t onto
// a copy of frame and appends it to the video.  It returns false once the
// frame limit has been reached and no more frames should be written
func (s *Sink) Write(frame gocv.Mat, t float64, dets []tracker.Detection,
	tracks []*tracker.Track) (bool, error) {

	if s.Full() {
		return false, ErrSinkFull
	}

	frame.CopyTo(&s.canvas)

	s.trail.Add(t, tracks)

	Trail(&s.canvas, tracks, s.trail, s.style)
	DetectionBoxes(&s.canvas, dets, s.detFont, 2)
	TrackerBoxes(&s.canvas, tracks, s.trackFont)

	if err := s.writer.Write(s.canvas); err != nil {
		return false, fmt.Errorf("error writing debug frame: %w", err)
	}

	s.written++

	return !s.Full(), nil
}

// Full reports whether the frame limit has been reached
func (s *Sink) Full() bool {
	return s.maxFrames > 0 && s.written >= s.maxFrames
}

// Written returns the number of frames written
func (s *Sink) Written() int {
	return s.written
}

// Close finalizes the video file
func (s *Sink) Close() error {
	return errors.Join(s.writer.Close(), s.canvas.Close())
}
