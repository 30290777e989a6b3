package tracker

// TrackState represents the lifecycle state of a face track
type TrackState int

const (
	// Active tracks take part in assignment
	Active TrackState = 0
	// Finished tracks have timed out or the stream has ended, they never
	// accept another match
	Finished TrackState = 1
)

// TrackPoint is a single timeline entry of a track, recorded from the raw
// detection that was matched at time T
type TrackPoint struct {
	// T is the frame timestamp in seconds
	T float64 `json:"t"`
	// X and Y are the normalized face center
	X float64 `json:"x"`
	Y float64 `json:"y"`
	// W and H are the normalized raw face size
	W float64 `json:"w"`
	H float64 `json:"h"`
	// Mouth is the mouth openness ratio
	Mouth float64 `json:"mouth"`
}

// Track represents a single face identity followed across frames
type Track struct {
	// Unique ID for the track
	id int
	// Raw center of the last matched detection
	lastCenter Point
	// EMA smoothed box used for gating
	lastBox Box
	// Time in seconds the track was last matched
	lastSeen float64
	// Current lifecycle state
	state TrackState
	// timeline is the append only match history
	timeline []TrackPoint
}

// newTrack spawns a track from an unmatched detection.  The first box is
// taken directly from the detection without smoothing
func newTrack(id int, det Detection, t float64) *Track {
	return &Track{
		id:         id,
		lastCenter: det.Center,
		lastBox:    det.Box,
		lastSeen:   t,
		state:      Active,
		timeline:   []TrackPoint{det.point(t)},
	}
}

// ID returns the unique ID of the track
func (tr *Track) ID() int {
	return tr.id
}

// LastCenter returns the raw center of the last matched detection
func (tr *Track) LastCenter() Point {
	return tr.lastCenter
}

// LastBox returns the smoothed bounding box of the track
func (tr *Track) LastBox() Box {
	return tr.lastBox
}

// LastSeen returns the time in seconds of the last match
func (tr *Track) LastSeen() float64 {
	return tr.lastSeen
}

// State returns the lifecycle state of the track
func (tr *Track) State() TrackState {
	return tr.state
}

// Len returns the number of timeline points
func (tr *Track) Len() int {
	return len(tr.timeline)
}

// Timeline returns a copy of the track's timeline
func (tr *Track) Timeline() []TrackPoint {
	out := make([]TrackPoint, len(tr.timeline))
	copy(out, tr.timeline)
	return out
}

// update records a matched detection at time t.  The timeline and center use
// the raw detection while the box is blended with an EMA weighted by alpha
func (tr *Track) update(det Detection, t float64, alpha float64) {
	tr.timeline = append(tr.timeline, det.point(t))
	tr.lastCenter = det.Center
	tr.lastBox = tr.lastBox.Lerp(det.Box, alpha)
	tr.lastSeen = t
}

// finish marks the track as finished
func (tr *Track) finish() {
	tr.state = Finished
}

// idle returns how long the track has gone unmatched at time t
func (tr *Track) idle(t float64) float64 {
	return t - tr.lastSeen
}
