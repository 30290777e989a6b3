package smartcrop

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-facetrack/tracker"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

// steadyFace returns a face seen every 0.25s from start to end inclusive at a
// fixed position and size
func steadyFace(id int, start, end, x, w, h, mouth float64) Face {

	f := Face{ID: id}

	for k := 0; ; k++ {
		t := start + float64(k)*0.25
		if t > end {
			break
		}
		f.Timeline = append(f.Timeline, tracker.TrackPoint{T: t, X: x, Y: 0.4, W: w, H: h, Mouth: mouth})
	}

	return f
}

// tracks returns the followed track index of each sample
func tracks(samples []Sample) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		out[i] = s.Track
	}
	return out
}

func repeat(v, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestPointNear(t *testing.T) {

	face := Face{Timeline: []tracker.TrackPoint{{T: 0}, {T: 0.5}, {T: 1.0}}}

	pt, ok := PointNear(face, 0.7, 0.6)
	require.True(t, ok)
	assert.Equal(t, 0.5, pt.T)

	_, ok = PointNear(face, 2.0, 0.6)
	assert.False(t, ok)

	// equal distance keeps the earlier point
	pt, ok = PointNear(face, 0.25, 0.6)
	require.True(t, ok)
	assert.Equal(t, 0.0, pt.T)

	_, ok = PointNear(Face{}, 0, 0.6)
	assert.False(t, ok)
}

func TestEnergyAt(t *testing.T) {

	frames := []EnergyFrame{{0, 1, 0.1}, {1, 2, 0.4}}

	assert.Equal(t, 0.1, energyAt(frames, 0.5))
	assert.Equal(t, 0.4, energyAt(frames, 1))
	assert.Equal(t, 0.4, energyAt(frames, 7))
	assert.Equal(t, 0.0, energyAt(nil, 1))
}

func TestSamplesSingleFace(t *testing.T) {

	pl := NewPlanner(DefaultParams())
	faces := []Face{steadyFace(4, 0, 2, 0.3, 0.2, 0.2, 0)}

	samples := pl.Samples(faces, 2, nil)
	require.Len(t, samples, 9)

	for i, s := range samples {
		assert.Equal(t, float64(i)*0.25, s.T)
		assert.Equal(t, 0, s.Track)
		assert.Equal(t, 0.3, s.X)
	}
}

func TestSamplesSwitchNeedsConsecutiveWins(t *testing.T) {

	pl := NewPlanner(DefaultParams())

	faces := []Face{
		steadyFace(0, 0, 5, 0.3, 0.2, 0.2, 0),
		// larger face arriving later, visible from 2.5s through the gap
		// tolerance
		steadyFace(1, 3, 5, 0.7, 0.5, 0.5, 0),
	}

	samples := pl.Samples(faces, 5, nil)
	require.Len(t, samples, 21)

	// the challenger wins at 2.5, 2.75 and 3.0 and takes over on the third
	expect := append(repeat(0, 12), repeat(1, 9)...)
	assert.Equal(t, expect, tracks(samples))
	assert.Equal(t, 0.3, samples[11].X)
	assert.Equal(t, 0.7, samples[12].X)
}

func TestSamplesChallengerBelowBoost(t *testing.T) {

	pl := NewPlanner(DefaultParams())

	faces := []Face{
		steadyFace(0, 0, 5, 0.3, 0.2, 0.2, 0),
		// bigger but not by enough to overcome the sticky bonus and boost
		steadyFace(1, 3, 5, 0.7, 0.4, 0.5, 0),
	}

	samples := pl.Samples(faces, 5, nil)
	assert.Equal(t, repeat(0, 21), tracks(samples))
}

func TestSamplesLostGrace(t *testing.T) {

	pl := NewPlanner(DefaultParams())
	faces := []Face{steadyFace(0, 0, 1, 0.3, 0.2, 0.2, 0)}

	samples := pl.Samples(faces, 3, nil)
	require.Len(t, samples, 13)

	// visible up to 1.5s through the gap tolerance, then held for the grace
	// period before being dropped
	expect := append(repeat(0, 11), noTrack, noTrack)
	assert.Equal(t, expect, tracks(samples))

	for _, s := range samples {
		assert.Equal(t, 0.3, s.X)
	}
}

func TestSamplesSpeechFavoursOpenMouth(t *testing.T) {

	pl := NewPlanner(DefaultParams())

	faces := []Face{
		steadyFace(0, 0, 2, 0.3, 0.2, 0.2, 0),
		steadyFace(1, 0, 2, 0.7, 0.2, 0.2, 0.3),
	}

	// with no audio the faces tie and the first one is followed
	samples := pl.Samples(faces, 2, nil)
	assert.Equal(t, repeat(0, 9), tracks(samples))

	loud := []EnergyFrame{{TStart: 0, TEnd: 10, Energy: 0.5}}
	samples = pl.Samples(faces, 2, loud)
	assert.Equal(t, repeat(1, 9), tracks(samples))
}

func TestSamplesEmpty(t *testing.T) {
	pl := NewPlanner(DefaultParams())
	assert.Empty(t, pl.Samples(nil, 5, nil))
	assert.Empty(t, pl.Samples([]Face{steadyFace(0, 0, 1, 0.5, 0.2, 0.2, 0)}, 0, nil))
}

func TestSegments(t *testing.T) {

	pl := NewPlanner(DefaultParams())

	samples := []Sample{
		{T: 0, Track: 0, X: 0.30},
		{T: 0.25, Track: 0, X: 0.32},
		{T: 0.5, Track: 0, X: 0.50},
		{T: 0.75, Track: 1, X: 0.50},
		{T: 1.0, Track: noTrack, X: 0.50},
	}

	got := pl.Segments(samples, 1.2)

	expect := []Segment{
		{TStart: 0, TEnd: 0.5, CenterX: 0.31, HasFace: true},
		{TStart: 0.5, TEnd: 0.75, CenterX: 0.5, HasFace: true},
		{TStart: 0.75, TEnd: 1.0, CenterX: 0.5, HasFace: true},
		{TStart: 1.0, TEnd: 1.2, CenterX: 0.5, HasFace: false},
	}

	if diff := cmp.Diff(expect, got, approx); diff != "" {
		t.Errorf("Segments mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, pl.Segments(nil, 1))
}

func TestFillGaps(t *testing.T) {

	pl := NewPlanner(DefaultParams())

	segments := []Segment{
		{TStart: 1.02, TEnd: 2.0, CenterX: 0.6, HasFace: true},
		{TStart: 0.5, TEnd: 1.0, CenterX: 0.4, HasFace: true},
	}

	got := pl.FillGaps(segments, 3)

	expect := []Segment{
		{TStart: 0, TEnd: 0.5, CenterX: 0.4},
		{TStart: 0.5, TEnd: 1.0, CenterX: 0.4, HasFace: true},
		{TStart: 1.02, TEnd: 2.0, CenterX: 0.6, HasFace: true},
		{TStart: 2.0, TEnd: 3, CenterX: 0.6},
	}

	if diff := cmp.Diff(expect, got, approx); diff != "" {
		t.Errorf("FillGaps mismatch (-want +got):\n%s", diff)
	}

	// input is left untouched
	assert.Equal(t, 1.02, segments[0].TStart)

	// with nothing to fill the whole clip is held at the center
	if diff := cmp.Diff([]Segment{{TStart: 0, TEnd: 3, CenterX: 0.5}}, pl.FillGaps(nil, 3)); diff != "" {
		t.Errorf("FillGaps mismatch (-want +got):\n%s", diff)
	}
}

func TestSmoothBySpeed(t *testing.T) {

	segments := []Segment{
		{TStart: 0, TEnd: 1, CenterX: 0.2, HasFace: true},
		{TStart: 1, TEnd: 2, CenterX: 0.8, HasFace: true},
		{TStart: 2, TEnd: 2.5, CenterX: 0.8, HasFace: true},
		{TStart: 2.5, TEnd: 4.5, CenterX: 0.6, HasFace: true},
	}

	got := SmoothBySpeed(segments, 0.22)

	expect := []Segment{
		{TStart: 0, TEnd: 1, CenterX: 0.2, HasFace: true},
		{TStart: 1, TEnd: 2, CenterX: 0.42, HasFace: true},
		{TStart: 2, TEnd: 2.5, CenterX: 0.53, HasFace: true},
		{TStart: 2.5, TEnd: 4.5, CenterX: 0.6, HasFace: true},
	}

	if diff := cmp.Diff(expect, got, approx); diff != "" {
		t.Errorf("SmoothBySpeed mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, SmoothBySpeed(nil, 0.22))
}

func TestPlan(t *testing.T) {

	pl := NewPlanner(DefaultParams())

	t.Run("failed analysis", func(t *testing.T) {
		assert.Nil(t, pl.Plan(Analysis{ClipPath: "a.mp4", Error: "could not open clip"}, nil))
	})

	t.Run("no faces", func(t *testing.T) {
		assert.Nil(t, pl.Plan(Analysis{ClipPath: "a.mp4", Duration: 4, Faces: []Face{}}, nil))
	})

	t.Run("duration from timeline", func(t *testing.T) {
		a := Analysis{
			ClipPath: "a.mp4",
			Faces:    []Face{steadyFace(3, 0, 2, 0.3, 0.2, 0.2, 0)},
		}

		expect := []Segment{{TStart: 0, TEnd: 2, CenterX: 0.3, HasFace: true}}

		if diff := cmp.Diff(expect, pl.Plan(a, nil), approx); diff != "" {
			t.Errorf("Plan mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("trailing span without faces", func(t *testing.T) {
		a := Analysis{
			ClipPath: "a.mp4",
			Duration: 4,
			Faces:    []Face{steadyFace(0, 0, 1, 0.3, 0.2, 0.2, 0)},
		}

		got := pl.Plan(a, nil)
		require.NotEmpty(t, got)

		assert.Equal(t, 0.0, got[0].TStart)
		assert.True(t, got[0].HasFace)
		assert.InDelta(t, 4.0, got[len(got)-1].TEnd, 1e-9)
		assert.False(t, got[len(got)-1].HasFace)

		for _, s := range got {
			assert.InDelta(t, 0.3, s.CenterX, 1e-9)
		}
	})
}
