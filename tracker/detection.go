package tracker

// Detection represents a single face found in one frame before any identity
// has been assigned to it
type Detection struct {
	// Center of the raw detector box
	Center Point
	// W and H are the raw detector box width and height
	W, H float64
	// Box is the margin expanded bounding box used for gating and smoothing
	Box Box
	// Mouth is the mouth openness ratio, 0 when landmarks were unavailable
	Mouth float64
}

// NewDetection builds a Detection from a raw normalized center and size,
// expanding its box by the given margin
func NewDetection(cx, cy, w, h, margin, mouth float64) Detection {
	return Detection{
		Center: Point{X: cx, Y: cy},
		W:      w,
		H:      h,
		Box:    ExpandBox(BoxFromCenterSize(cx, cy, w, h), margin),
		Mouth:  mouth,
	}
}

// point converts the detection into a timeline entry at time t using the
// raw, unsmoothed values
func (d Detection) point(t float64) TrackPoint {
	return TrackPoint{
		T:     t,
		X:     d.Center.X,
		Y:     d.Center.Y,
		W:     d.W,
		H:     d.H,
		Mouth: d.Mouth,
	}
}
