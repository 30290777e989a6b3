// Package video reads frames from a clip on disk
package video

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// DefaultFPS is used when the container does not report a frame rate
const DefaultFPS = 25.0

// ErrOpen is returned when a clip cannot be opened for reading
var ErrOpen = errors.New("could not open clip")

// Source is a sequential frame reader over a video file
type Source struct {
	path       string
	capture    *gocv.VideoCapture
	fps        float64
	frameCount int
	width      int
	height     int
}

// Open a video file for reading
func Open(path string) (*Source, error) {

	capture, err := gocv.VideoCaptureFile(path)

	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOpen, path, err)
	}

	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w %s", ErrOpen, path)
	}

	s := &Source{
		path:       path,
		capture:    capture,
		fps:        capture.Get(gocv.VideoCaptureFPS),
		frameCount: int(capture.Get(gocv.VideoCaptureFrameCount)),
		width:      int(capture.Get(gocv.VideoCaptureFrameWidth)),
		height:     int(capture.Get(gocv.VideoCaptureFrameHeight)),
	}

	if s.fps <= 0 {
		s.fps = DefaultFPS
	}

	if s.frameCount < 0 {
		s.frameCount = 0
	}

	return s, nil
}

// Path returns the path the clip was opened from
func (s *Source) Path() string {
	return s.path
}

// FPS returns the clip frame rate, DefaultFPS if the container reports none
func (s *Source) FPS() float64 {
	return s.fps
}

// FrameCount returns the number of frames reported by the container
func (s *Source) FrameCount() int {
	return s.frameCount
}

// Width returns the frame width in pixels
func (s *Source) Width() int {
	return s.width
}

// Height returns the frame height in pixels
func (s *Source) Height() int {
	return s.height
}

// Duration returns the clip length in seconds
func (s *Source) Duration() float64 {
	return Duration(s.frameCount, s.fps)
}

// Next reads the next frame into mat.  It returns false at the end of the
// clip or when a frame cannot be decoded
func (s *Source) Next(mat *gocv.Mat) bool {
	if ok := s.capture.Read(mat); !ok {
		return false
	}
	return !mat.Empty()
}

// Close releases the capture
func (s *Source) Close() error {
	return s.capture.Close()
}

// Duration returns the length in seconds of frameCount frames at fps.  A
// non positive fps is replaced with DefaultFPS
func Duration(frameCount int, fps float64) float64 {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return float64(frameCount) / fps
}
