package render

import (
	"fmt"
	"image"
	"math"

	"github.com/swdee/go-facetrack/tracker"
	"gocv.io/x/gocv"
)

// DetectionBoxes draws the expanded box and center of every detection in
// green with its mouth openness above the box
func DetectionBoxes(img *gocv.Mat, dets []tracker.Detection, font Font,
	lineThickness int) {

	w, h := img.Cols(), img.Rows()
	labels := make([]boxLabel, 0, len(dets))

	for _, det := range dets {

		rect := det.Box.ToPixels(w, h)
		gocv.Rectangle(img, rect, Green, lineThickness)
		gocv.Circle(img, toPixel(det.Center, w, h), 4, Green, -1)

		text := fmt.Sprintf("mouth=%.3f", det.Mouth)
		pos := image.Pt(rect.Min.X, max(0, rect.Min.Y-8))

		labels = append(labels, newLabel(text, pos, Green, font))
	}

	drawLabels(img, labels, font)
}

// TrackerBoxes draws a dot at the last center of each track with its ID,
// colored per track
func TrackerBoxes(img *gocv.Mat, tracks []*tracker.Track, font Font) {

	w, h := img.Cols(), img.Rows()
	labels := make([]boxLabel, 0, len(tracks))

	for _, tr := range tracks {

		clr := TrackColor(tr.ID())
		c := toPixel(tr.LastCenter(), w, h)

		gocv.Circle(img, c, 6, clr, -1)

		text := fmt.Sprintf("id=%d", tr.ID())
		labels = append(labels, newLabel(text, image.Pt(c.X+8, c.Y-8), clr, font))
	}

	drawLabels(img, labels, font)
}

// toPixel converts a normalized point into pixel coordinates
func toPixel(p tracker.Point, width, height int) image.Point {
	return image.Pt(
		int(math.Round(p.X*float64(width))),
		int(math.Round(p.Y*float64(height))),
	)
}
