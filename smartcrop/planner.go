package smartcrop

import (
	"math"
	"sort"

	"github.com/swdee/go-facetrack/logger"
	"github.com/swdee/go-facetrack/tracker"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// Analysis is the per clip output of the face analyzer as read back from
// JSON
type Analysis struct {
	ClipPath string  `json:"clipPath"`
	FPS      float64 `json:"fps,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	Faces    []Face  `json:"faces"`
	Error    string  `json:"error,omitempty"`
}

// Planner turns face tracks into crop segments
type Planner struct {
	params Params
}

// NewPlanner returns a Planner using the given parameters
func NewPlanner(p Params) *Planner {
	return &Planner{params: p}
}

// Plan returns the crop segments for a clip, or nil when the analysis
// failed or found no faces
func (pl *Planner) Plan(a Analysis, energy []EnergyFrame) []Segment {

	if a.Error != "" || len(a.Faces) == 0 {
		return nil
	}

	duration := a.Duration

	if duration <= 0 {
		duration = lastPointTime(a.Faces)
	}

	if duration <= 0 {
		return nil
	}

	samples := pl.Samples(a.Faces, duration, energy)
	segments := pl.Segments(samples, duration)
	segments = pl.FillGaps(segments, duration)
	segments = SmoothBySpeed(segments, pl.params.MaxSpeed)

	if len(segments) == 0 {
		return nil
	}

	return segments
}

// candidate is a face visible at a sample time
type candidate struct {
	idx   int
	score float64
	x     float64
}

// Samples picks the face to follow at every sample interval from 0 to
// duration.  The current face keeps the crop until a challenger clearly beats
// it for several samples in a row, and no switch happens sooner than MinHold
// after the last one
func (pl *Planner) Samples(faces []Face, duration float64, energy []EnergyFrame) []Sample {

	p := pl.params

	if len(faces) == 0 || duration <= 0 || p.SampleInterval <= 0 {
		return nil
	}

	samples := make([]Sample, 0, int(duration/p.SampleInterval)+1)

	current := noTrack
	currentX := 0.5
	lastSwitch := math.Inf(-1)
	lastSeen := -1.0
	challenger := noTrack
	wins := 0

	hold := func(t float64) {
		samples = append(samples, Sample{T: t, Track: current, X: currentX})
	}

	for i := 0; ; i++ {
		t := float64(i) * p.SampleInterval

		if t > duration+1e-3 {
			break
		}

		speech := energyAt(energy, t) >= p.SpeechThreshold
		candidates := make([]candidate, 0, len(faces))

		for idx, face := range faces {
			pt, ok := PointNear(face, t, p.MaxGap)

			if !ok {
				continue
			}

			score := pt.W * pt.H

			if speech {
				score += pt.Mouth * p.MouthWeight
			}

			if idx == current {
				score += p.StickyBonus
			}

			candidates = append(candidates, candidate{idx: idx, score: score,
				x: tracker.Clamp01(pt.X)})
		}

		sort.SliceStable(candidates, func(a, b int) bool {
			return candidates[a].score > candidates[b].score
		})

		if len(candidates) == 0 {
			if current != noTrack && t-lastSeen <= p.LostGrace {
				hold(t)
			} else {
				samples = append(samples, Sample{T: t, Track: noTrack, X: currentX})
			}
			continue
		}

		best := candidates[0]

		// first lock
		if current == noTrack {
			current, currentX, lastSeen = best.idx, best.x, t
			hold(t)
			continue
		}

		curr, visible := findCandidate(candidates, current)

		// current face is gone, jump straight to the best one
		if !visible {
			current, currentX, lastSeen = best.idx, best.x, t
			challenger, wins = noTrack, 0
			hold(t)
			continue
		}

		if t-lastSwitch < p.MinHold {
			currentX, lastSeen = curr.x, t
			hold(t)
			continue
		}

		if best.idx == current || best.score < curr.score*p.SwitchBoost {
			challenger, wins = noTrack, 0
			currentX, lastSeen = curr.x, t
			hold(t)
			continue
		}

		if challenger != best.idx {
			challenger, wins = best.idx, 1
		} else {
			wins++
		}

		if wins >= p.RequiredWins {
			logger.Log().Debug("crop switched face",
				zap.Float64("t", t), zap.Int("id", faces[best.idx].ID))

			current, currentX, lastSwitch, lastSeen = best.idx, best.x, t, t
			challenger, wins = noTrack, 0
			hold(t)
			continue
		}

		currentX, lastSeen = curr.x, t
		hold(t)
	}

	return samples
}

// findCandidate returns the candidate for face idx if it is visible
func findCandidate(candidates []candidate, idx int) (candidate, bool) {
	for _, c := range candidates {
		if c.idx == idx {
			return c, true
		}
	}
	return candidate{}, false
}

// Segments merges consecutive samples following the same face into
// segments, starting a new one when the face changes or the center jumps by
// more than MaxXShift.  Each sample covers the time up to the next sample and
// the last covers up to duration
func (pl *Planner) Segments(samples []Sample, duration float64) []Segment {

	if len(samples) == 0 || duration <= 0 {
		return nil
	}

	var (
		segs  []Segment
		xs    []float64
		track int
		lastX float64
	)

	flush := func() {
		segs[len(segs)-1].CenterX = tracker.Clamp01(stat.Mean(xs, nil))
	}

	for i, s := range samples {
		end := duration

		if i < len(samples)-1 {
			end = samples[i+1].T
		}

		if len(segs) > 0 && s.Track == track && math.Abs(s.X-lastX) <= pl.params.MaxXShift {
			segs[len(segs)-1].TEnd = end
			xs = append(xs, s.X)
			lastX = s.X
			continue
		}

		if len(segs) > 0 {
			flush()
		}

		segs = append(segs, Segment{TStart: s.T, TEnd: end, HasFace: s.Track != noTrack})
		xs = []float64{s.X}
		track = s.Track
		lastX = s.X
	}

	flush()

	return segs
}

// FillGaps returns the segments sorted by start time with faceless segments
// inserted over uncovered spans longer than GapTolerance.  Inserted segments
// hold the center of the segment before them
func (pl *Planner) FillGaps(segments []Segment, duration float64) []Segment {

	sorted := make([]Segment, len(segments))
	copy(sorted, segments)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TStart < sorted[j].TStart
	})

	out := make([]Segment, 0, len(sorted)+1)
	cursor := 0.0
	lastX := 0.5

	if len(sorted) > 0 {
		lastX = sorted[0].CenterX
	}

	tol := pl.params.GapTolerance

	for _, seg := range sorted {
		if seg.TStart > cursor+tol {
			out = append(out, Segment{TStart: cursor, TEnd: seg.TStart, CenterX: lastX})
		}

		out = append(out, seg)
		cursor = seg.TEnd
		lastX = seg.CenterX
	}

	if cursor < duration-tol {
		out = append(out, Segment{TStart: cursor, TEnd: duration, CenterX: lastX})
	}

	return out
}

// SmoothBySpeed limits the change in center between consecutive segments to
// maxDeltaPerSec times the length of the later segment
func SmoothBySpeed(segments []Segment, maxDeltaPerSec float64) []Segment {

	if len(segments) == 0 {
		return segments
	}

	out := make([]Segment, len(segments))
	prevX := segments[0].CenterX

	for i, s := range segments {
		dt := math.Max(1e-6, s.TEnd-s.TStart)
		maxDelta := maxDeltaPerSec * dt

		x := s.CenterX
		delta := x - prevX

		if math.Abs(delta) > maxDelta {
			x = prevX + math.Copysign(maxDelta, delta)
		}

		s.CenterX = tracker.Clamp01(x)
		out[i] = s
		prevX = x
	}

	return out
}

// PointNear returns the timeline point of face closest to t, provided it is
// no more than maxGap seconds away.  Ties go to the earlier point
func PointNear(face Face, t, maxGap float64) (tracker.TrackPoint, bool) {

	best := -1
	bestDist := math.Inf(1)

	for i, p := range face.Timeline {
		if d := math.Abs(p.T - t); d < bestDist {
			bestDist = d
			best = i
		}
	}

	if best < 0 || bestDist > maxGap {
		return tracker.TrackPoint{}, false
	}

	return face.Timeline[best], true
}

// lastPointTime returns the latest timeline time across all faces, or 0
func lastPointTime(faces []Face) float64 {

	last := 0.0

	for _, f := range faces {
		for _, p := range f.Timeline {
			last = math.Max(last, p.T)
		}
	}

	return last
}
