package analysis

import (
	"encoding/json"

	"github.com/swdee/go-facetrack/tracker"
)

// FaceResult is one emitted track
type FaceResult struct {
	ID       int                  `json:"id"`
	Timeline []tracker.TrackPoint `json:"timeline"`
}

// ClipResult is the analysis record of a single clip.  A clip that could not
// be read has Error set and no faces
type ClipResult struct {
	// ClipPath is the absolute path of the clip
	ClipPath string
	FPS      float64
	Duration float64
	Faces    []FaceResult
	Error    string
}

// successJSON and failureJSON are the two record shapes written for a clip
type successJSON struct {
	ClipPath string       `json:"clipPath"`
	FPS      float64      `json:"fps"`
	Duration float64      `json:"duration"`
	Faces    []FaceResult `json:"faces"`
}

type failureJSON struct {
	ClipPath string       `json:"clipPath"`
	Error    string       `json:"error"`
	Faces    []FaceResult `json:"faces"`
}

// Failed reports whether the clip could not be analyzed
func (r ClipResult) Failed() bool {
	return r.Error != ""
}

// MarshalJSON writes {clipPath, fps, duration, faces} for analyzed clips and
// {clipPath, error, faces} for failed ones.  Faces is always an array
func (r ClipResult) MarshalJSON() ([]byte, error) {

	faces := r.Faces

	if faces == nil {
		faces = []FaceResult{}
	}

	if r.Failed() {
		return json.Marshal(failureJSON{
			ClipPath: r.ClipPath,
			Error:    r.Error,
			Faces:    []FaceResult{},
		})
	}

	return json.Marshal(successJSON{
		ClipPath: r.ClipPath,
		FPS:      r.FPS,
		Duration: r.Duration,
		Faces:    faces,
	})
}

// facesFromTracks converts the tracks returned by FaceTracker.Finish
func facesFromTracks(tracks []*tracker.Track) []FaceResult {

	faces := make([]FaceResult, 0, len(tracks))

	for _, tr := range tracks {
		faces = append(faces, FaceResult{
			ID:       tr.ID(),
			Timeline: tr.Timeline(),
		})
	}

	return faces
}
