package tracker

// Trail keeps a bounded history of track centers used for drawing the path
// a face has taken in debug output
type Trail struct {
	// size is the maximum number of most recent points to keep per track
	size int
	// history of centers keyed by track id
	history map[int][]Point
}

// NewTrail returns a new trail history.  Size is the maximum length of the
// trail kept for each track
func NewTrail(size int) *Trail {
	return &Trail{
		size:    size,
		history: make(map[int][]Point),
	}
}

// Reset clears all history
func (tr *Trail) Reset() {
	tr.history = make(map[int][]Point)
}

// Add records the center of each track matched at time t, dropping the
// oldest point once the history exceeds the trail size
func (tr *Trail) Add(t float64, tracks []*Track) {

	for _, track := range tracks {

		if track.LastSeen() != t {
			continue
		}

		points := append(tr.history[track.ID()], track.LastCenter())

		if len(points) > tr.size {
			points = points[len(points)-tr.size:]
		}

		tr.history[track.ID()] = points
	}
}

// Points gets the center history for a specific track id
func (tr *Trail) Points(id int) []Point {
	return tr.history[id]
}
