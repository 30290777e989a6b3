package detect

import (
	"math"

	"github.com/swdee/go-facetrack/tracker"
)

// mouthEpsilon floors the mouth width so a collapsed mouth never divides by
// zero
const mouthEpsilon = 1e-6

// MouthIndices are the landmark indices of the four mouth points used to
// measure openness
type MouthIndices struct {
	// Upper is the center of the upper inner lip
	Upper int
	// Lower is the center of the lower inner lip
	Lower int
	// Left is the left mouth corner
	Left int
	// Right is the right mouth corner
	Right int
}

// FaceMeshMouth returns the mouth indices of the 468 point face mesh
// topology
func FaceMeshMouth() MouthIndices {
	return MouthIndices{Upper: 13, Lower: 14, Left: 61, Right: 291}
}

// IBUG68Mouth returns the mouth indices of the 68 point iBUG topology
func IBUG68Mouth() MouthIndices {
	return MouthIndices{Upper: 62, Lower: 66, Left: 48, Right: 54}
}

// MouthOpenness returns the inner lip gap divided by the mouth width.  It
// returns 0 when any of the required landmarks is missing
func MouthOpenness(points []tracker.Point, idx MouthIndices) float64 {

	for _, i := range []int{idx.Upper, idx.Lower, idx.Left, idx.Right} {
		if i < 0 || i >= len(points) {
			return 0
		}
	}

	gap := tracker.Distance(points[idx.Upper], points[idx.Lower])
	width := math.Max(mouthEpsilon, tracker.Distance(points[idx.Left], points[idx.Right]))

	return gap / width
}
