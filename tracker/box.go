package tracker

import (
	"image"
	"math"
)

// minUnion is the floor applied to the IoU denominator so two degenerate
// boxes never divide by zero
const minUnion = 1e-9

// Box is a bounding box in edge form with normalized [0,1] coordinates
type Box struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Clamp01 restricts v to the range [0,1]
func Clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// BoxFromCenterSize converts a center and size to an edge form Box.  Each
// edge is clamped independently, so a center near the frame border produces
// a smaller box rather than an invalid one
func BoxFromCenterSize(cx, cy, w, h float64) Box {
	return Box{
		X0: Clamp01(cx - w/2),
		Y0: Clamp01(cy - h/2),
		X1: Clamp01(cx + w/2),
		Y1: Clamp01(cy + h/2),
	}
}

// Width of the box
func (b Box) Width() float64 {
	return b.X1 - b.X0
}

// Height of the box
func (b Box) Height() float64 {
	return b.Y1 - b.Y0
}

// Area of the box, zero for inverted boxes
func (b Box) Area() float64 {
	return math.Max(0, b.Width()) * math.Max(0, b.Height())
}

// Center returns the midpoint of the box
func (b Box) Center() Point {
	return Point{X: (b.X0 + b.X1) / 2, Y: (b.Y0 + b.Y1) / 2}
}

// IoU calculates the Intersection over Union between two boxes
func IoU(a, b Box) float64 {

	iw := math.Max(0, math.Min(a.X1, b.X1)-math.Max(a.X0, b.X0))
	ih := math.Max(0, math.Min(a.Y1, b.Y1)-math.Max(a.Y0, b.Y0))
	inter := iw * ih

	union := math.Max(minUnion, a.Area()+b.Area()-inter)

	return inter / union
}

// ExpandBox grows the box symmetrically by margin times its own width and
// height, then clamps the result to [0,1]
func ExpandBox(b Box, margin float64) Box {

	w := b.Width()
	h := b.Height()

	return Box{
		X0: Clamp01(b.X0 - w*margin),
		Y0: Clamp01(b.Y0 - h*margin),
		X1: Clamp01(b.X1 + w*margin),
		Y1: Clamp01(b.Y1 + h*margin),
	}
}

// Lerp blends two boxes edge by edge as alpha*b + (1-alpha)*other.  Used for
// the exponential moving average of a track box
func (b Box) Lerp(other Box, alpha float64) Box {
	return Box{
		X0: alpha*b.X0 + (1-alpha)*other.X0,
		Y0: alpha*b.Y0 + (1-alpha)*other.Y0,
		X1: alpha*b.X1 + (1-alpha)*other.X1,
		Y1: alpha*b.Y1 + (1-alpha)*other.Y1,
	}
}

// ToPixels maps the normalized box onto a width x height pixel grid.  Edges
// are clamped to [0,width-1] and [0,height-1] and a collapsed box is nudged
// open by one pixel so the resulting region is not empty.  A box pinned to
// the last pixel column or row stays collapsed as there is nowhere to grow
func (b Box) ToPixels(width, height int) image.Rectangle {

	x0 := clampInt(roundInt(b.X0*float64(width)), 0, width-1)
	y0 := clampInt(roundInt(b.Y0*float64(height)), 0, height-1)
	x1 := clampInt(roundInt(b.X1*float64(width)), 0, width-1)
	y1 := clampInt(roundInt(b.Y1*float64(height)), 0, height-1)

	if x1 <= x0 {
		x1 = min(width-1, x0+1)
	}

	if y1 <= y0 {
		y1 = min(height-1, y0+1)
	}

	return image.Rect(x0, y0, x1, y1)
}

// roundInt rounds half to even
func roundInt(v float64) int {
	return int(math.RoundToEven(v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
