package tracker

// Params holds the tunable thresholds of the FaceTracker
type Params struct {
	// MaxAssignDistance is the largest center distance, in normalized frame
	// units, at which a detection may be matched to a track
	MaxAssignDistance float64
	// MinIoUGate is the minimum overlap between a detection box and the
	// smoothed track box for a match to be considered
	MinIoUGate float64
	// MaxMissedSeconds is how long a track may go unmatched before it is
	// finished
	MaxMissedSeconds float64
	// EMAAlpha is the weight kept from the previous track box when smoothing,
	// higher is smoother
	EMAAlpha float64
	// IoUWeight scales the overlap bonus subtracted from the center distance
	// when scoring candidate detections
	IoUWeight float64
	// MinTrackPoints is the minimum timeline length of an emitted track
	MinTrackPoints int
}

// DefaultParams returns the default tracker parameters:
// - MaxAssignDistance: 0.28
// - MinIoUGate: 0.01
// - MaxMissedSeconds: 2.5
// - EMAAlpha: 0.7
// - IoUWeight: 0.15
// - MinTrackPoints: 5
func DefaultParams() Params {
	return Params{
		MaxAssignDistance: 0.28,
		MinIoUGate:        0.01,
		MaxMissedSeconds:  2.5,
		EMAAlpha:          0.7,
		IoUWeight:         0.15,
		MinTrackPoints:    5,
	}
}
