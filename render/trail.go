package render

import (
	"image"
	"image/color"

	"github.com/swdee/go-facetrack/tracker"
	"gocv.io/x/gocv"
)

// TrailStyle defines the parameters used for rendering the trail style
type TrailStyle struct {
	// LineSame defines if the color of the trail line should be the
	// same color as that of the track.  If set to false then use
	// the color specified at LineColor
	LineSame      bool
	LineColor     color.RGBA
	LineThickness int
}

// DefaultTrailStyle returns default trail style settings
func DefaultTrailStyle() TrailStyle {
	return TrailStyle{
		LineSame:      true,
		LineColor:     Yellow,
		LineThickness: 2,
	}
}

// Trail draws the center history of each track
func Trail(img *gocv.Mat, tracks []*tracker.Track, trail *tracker.Trail,
	style TrailStyle) {

	w, h := img.Cols(), img.Rows()

	for _, tr := range tracks {

		lineClr := style.LineColor

		if style.LineSame {
			lineClr = TrackColor(tr.ID())
		}

		points := trail.Points(tr.ID())

		var prev image.Point

		for i, p := range points {
			next := toPixel(p, w, h)

			if i > 0 {
				gocv.Line(img, prev, next, lineClr, style.LineThickness)
			}

			prev = next
		}
	}
}
