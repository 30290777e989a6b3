package smartcrop

import "github.com/swdee/go-facetrack/tracker"

// Face is a single track as found in an analysis result
type Face struct {
	ID       int                  `json:"id"`
	Timeline []tracker.TrackPoint `json:"timeline"`
}

// Segment is a span of the clip cropped around a single horizontal center
type Segment struct {
	TStart float64 `json:"tStart"`
	TEnd   float64 `json:"tEnd"`
	// CenterX is the normalized horizontal crop center
	CenterX float64 `json:"centerXNorm"`
	// HasFace is false for spans where no face was followed
	HasFace bool `json:"hasFace"`
}

// EnergyFrame is the audio energy of the span [TStart, TEnd)
type EnergyFrame struct {
	TStart float64 `json:"tStart"`
	TEnd   float64 `json:"tEnd"`
	Energy float64 `json:"energy"`
}

// Sample is the face chosen at time T.  Track is the index into the face
// list or -1 when no face is followed
type Sample struct {
	T     float64
	Track int
	X     float64
}

// noTrack marks a sample without a followed face
const noTrack = -1

// energyAt returns the energy of the frame containing t.  Times past the
// last frame use the last frame's energy
func energyAt(frames []EnergyFrame, t float64) float64 {

	if len(frames) == 0 {
		return 0
	}

	for _, f := range frames {
		if t >= f.TStart && t < f.TEnd {
			return f.Energy
		}
	}

	return frames[len(frames)-1].Energy
}
