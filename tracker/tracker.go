package tracker

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrTimeNotIncreasing is returned when Update is called with a timestamp
	// that is not later than the previous frame
	ErrTimeNotIncreasing = errors.New("frame time must be strictly increasing")
	// ErrFinished is returned when Update is called after Finish
	ErrFinished = errors.New("tracker already finished")
)

// FaceTracker is an online greedy multi face tracker.  Each call to Update
// matches one frame of detections against the tracks as they stood after the
// previous frame, there is no look ahead and past assignments are never
// revised.  A FaceTracker is not safe for concurrent use, create one per clip
type FaceTracker struct {
	params Params
	// List of tracks taking part in assignment
	active []*Track
	// List of tracks that have timed out, in eviction order
	finished []*Track
	// Counter for assigning unique track IDs
	nextID int
	// Time of the last processed frame
	lastTime float64
	// started is set once the first frame has been processed
	started bool
	// done is set once Finish has been called
	done bool
}

// NewFaceTracker initializes and returns a new FaceTracker
func NewFaceTracker(p Params) *FaceTracker {
	return &FaceTracker{
		params: p,
	}
}

// Params returns the parameters the tracker was created with
func (ft *FaceTracker) Params() Params {
	return ft.params
}

// Reset clears all tracks and restarts track IDs from zero
func (ft *FaceTracker) Reset() {
	ft.active = nil
	ft.finished = nil
	ft.nextID = 0
	ft.lastTime = 0
	ft.started = false
	ft.done = false
}

// Update processes the detections of the frame at time t and returns the
// active tracks after assignment
func (ft *FaceTracker) Update(t float64, dets []Detection) ([]*Track, error) {

	if ft.done {
		return nil, ErrFinished
	}

	if ft.started && t <= ft.lastTime {
		return nil, fmt.Errorf("update at %.4fs after %.4fs: %w", t, ft.lastTime,
			ErrTimeNotIncreasing)
	}

	ft.started = true
	ft.lastTime = t

	// Step 1: evict tracks that have been idle for too long
	ft.prune(t)

	// Step 2: most recently matched tracks pick first
	sort.SliceStable(ft.active, func(i, j int) bool {
		return ft.active[i].lastSeen > ft.active[j].lastSeen
	})

	// Step 3: greedy gated assignment
	used := make([]bool, len(dets))

	for _, track := range ft.active {

		best := ft.bestMatch(track, dets, used)

		if best < 0 {
			// unmatched, the track keeps its last seen time and ages
			// towards eviction
			continue
		}

		used[best] = true
		track.update(dets[best], t, ft.params.EMAAlpha)
	}

	// Step 4: spawn new tracks for detections nobody claimed
	for i, det := range dets {
		if used[i] {
			continue
		}

		ft.active = append(ft.active, newTrack(ft.nextID, det, t))
		ft.nextID++
	}

	return ft.Active(), nil
}

// prune moves tracks idle for longer than MaxMissedSeconds to the finished
// list, preserving their relative order
func (ft *FaceTracker) prune(t float64) {

	kept := ft.active[:0]

	for _, track := range ft.active {
		if track.idle(t) <= ft.params.MaxMissedSeconds {
			kept = append(kept, track)
			continue
		}

		track.finish()
		ft.finished = append(ft.finished, track)
	}

	// clear the tail so evicted tracks are not referenced twice
	for i := len(kept); i < len(ft.active); i++ {
		ft.active[i] = nil
	}

	ft.active = kept
}

// bestMatch returns the index of the unused detection with the lowest score
// that passes both the distance and overlap gates, or -1 if none qualifies
func (ft *FaceTracker) bestMatch(track *Track, dets []Detection, used []bool) int {

	bestIdx := -1
	bestScore := math.Inf(1)

	for i, det := range dets {

		if used[i] {
			continue
		}

		dist := Distance(det.Center, track.lastCenter)

		if dist > ft.params.MaxAssignDistance {
			continue
		}

		overlap := IoU(det.Box, track.lastBox)

		if overlap < ft.params.MinIoUGate {
			continue
		}

		score := dist - ft.params.IoUWeight*overlap

		if score < bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	return bestIdx
}

// Active returns the tracks currently taking part in assignment, in priority
// order followed by the tracks spawned on the last frame
func (ft *FaceTracker) Active() []*Track {
	out := make([]*Track, len(ft.active))
	copy(out, ft.active)
	return out
}

// Finish ends the stream.  All active tracks are finished and the tracks
// with at least MinTrackPoints timeline points are returned, evicted tracks
// first in eviction order then the remaining active tracks.  Calling Finish
// again returns the same result
func (ft *FaceTracker) Finish() []*Track {

	if !ft.done {
		for _, track := range ft.active {
			track.finish()
			ft.finished = append(ft.finished, track)
		}

		ft.active = nil
		ft.done = true
	}

	out := make([]*Track, 0, len(ft.finished))

	for _, track := range ft.finished {
		if track.Len() >= ft.params.MinTrackPoints {
			out = append(out, track)
		}
	}

	return out
}
