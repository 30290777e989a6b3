package detect

import (
	"errors"
	"fmt"

	"github.com/swdee/go-facetrack/logger"
	"github.com/swdee/go-facetrack/tracker"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// AdapterOptions defines how faces are turned into tracker detections
type AdapterOptions struct {
	// Margin is the fraction of the face size added on each side of the
	// detection box
	Margin float64
	// Mouth selects the landmarks used to measure mouth openness
	Mouth MouthIndices
}

// DefaultAdapterOptions returns the default options, an 18% box margin and
// face mesh mouth indices
func DefaultAdapterOptions() AdapterOptions {
	return AdapterOptions{
		Margin: 0.18,
		Mouth:  FaceMeshMouth(),
	}
}

// Adapter converts a video frame into the detections consumed by the
// tracker.  It owns its detector and landmark model and must not be shared
// between goroutines, use a Pool for concurrent clips
type Adapter struct {
	faces     FaceDetector
	landmarks LandmarkEstimator
	opts      AdapterOptions
}

// NewAdapter returns an Adapter using the given face detector and optional
// landmark estimator.  With no landmark estimator every detection has a
// mouth openness of 0
func NewAdapter(faces FaceDetector, landmarks LandmarkEstimator, opts AdapterOptions) *Adapter {
	return &Adapter{
		faces:     faces,
		landmarks: landmarks,
		opts:      opts,
	}
}

// Open loads the YuNet detector and, when a landmark model is configured,
// the landmark network.  A landmark model that fails to load is logged and
// skipped, a detector that fails to load is an error
func Open(det YuNetParams, lm LandmarkParams, opts AdapterOptions) (*Adapter, error) {

	faces, err := NewYuNet(det)

	if err != nil {
		return nil, fmt.Errorf("error loading face detector: %w", err)
	}

	var landmarks LandmarkEstimator

	if lm.Model != "" {
		net, err := NewLandmarkNet(lm)

		if err != nil {
			logger.Log().Warn("landmark model unavailable, mouth openness disabled",
				zap.String("model", lm.Model), zap.Error(err))
		} else {
			landmarks = net
		}
	}

	return NewAdapter(faces, landmarks, opts), nil
}

// Detect finds the faces in a frame and returns them as tracker detections
// in detector order
func (a *Adapter) Detect(frame gocv.Mat) ([]tracker.Detection, error) {

	faces, err := a.faces.DetectFaces(frame)

	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}

	dets := make([]tracker.Detection, 0, len(faces))

	for _, f := range faces {
		c := f.Center()
		det := tracker.NewDetection(c.X, c.Y, f.W, f.H, a.opts.Margin, 0)
		det.Mouth = a.mouth(frame, det.Box)
		dets = append(dets, det)
	}

	return dets, nil
}

// mouth returns the mouth openness of the face inside box, or 0 when it
// cannot be measured
func (a *Adapter) mouth(frame gocv.Mat, box tracker.Box) float64 {

	if a.landmarks == nil {
		return 0
	}

	rect := box.ToPixels(frame.Cols(), frame.Rows())

	if rect.Empty() {
		return 0
	}

	roi := frame.Region(rect)
	defer roi.Close()

	if roi.Empty() {
		return 0
	}

	points, err := a.landmarks.Landmarks(roi)

	if err != nil {
		logger.Log().Debug("landmark estimation failed", zap.Error(err))
		return 0
	}

	return MouthOpenness(points, a.opts.Mouth)
}

// Close releases the detector and landmark models
func (a *Adapter) Close() error {

	var errs []error

	if a.faces != nil {
		errs = append(errs, a.faces.Close())
	}

	if a.landmarks != nil {
		errs = append(errs, a.landmarks.Close())
	}

	return errors.Join(errs...)
}
