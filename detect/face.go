package detect

import (
	"github.com/swdee/go-facetrack/tracker"
	"gocv.io/x/gocv"
)

// Face is a single face returned by a FaceDetector in normalized frame
// coordinates
type Face struct {
	// X and Y are the top left corner of the raw detector box
	X, Y float64
	// W and H are the raw detector box width and height
	W, H float64
	// Score is the detector confidence
	Score float64
	// Landmarks are the five YuNet key points, right eye, left eye, nose tip,
	// right mouth corner and left mouth corner
	Landmarks [5]tracker.Point
}

// Center returns the center of the face box clamped to [0,1]
func (f Face) Center() tracker.Point {
	return tracker.Point{
		X: tracker.Clamp01(f.X + f.W/2),
		Y: tracker.Clamp01(f.Y + f.H/2),
	}
}

// FaceDetector finds faces in a BGR frame
type FaceDetector interface {
	DetectFaces(img gocv.Mat) ([]Face, error)
	Close() error
}

// LandmarkEstimator returns facial landmarks for a cropped face region.  The
// points are normalized to the region, not the full frame
type LandmarkEstimator interface {
	Landmarks(roi gocv.Mat) ([]tracker.Point, error)
	Close() error
}
