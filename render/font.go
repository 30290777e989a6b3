package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Font defines the parameters for rendering text on an image using GoCV
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	// Padding to place around text
	LeftPad   int
	RightPad  int
	TopPad    int
	BottomPad int
}

// DefaultFont returns the font used for detection labels
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.5,
		Color:     Black,
		Thickness: 1,
		LineType:  gocv.LineAA,
		LeftPad:   4,
		RightPad:  4,
		TopPad:    4,
		BottomPad: 6,
	}
}

// TrackFont returns the larger font used for track ID labels
func TrackFont() Font {
	f := DefaultFont()
	f.Scale = 0.7
	f.Thickness = 2
	f.Color = White
	return f
}

// boxLabel defines where a label should be rendered on the source image
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// newLabel places text so its bottom left corner sits at pos, with a filled
// background box of the given color
func newLabel(text string, pos image.Point, clr color.RGBA, font Font) boxLabel {

	textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

	// keep the label inside the top of the frame
	if pos.Y-textSize.Y-font.TopPad < 0 {
		pos.Y = textSize.Y + font.TopPad
	}

	return boxLabel{
		rect: image.Rect(pos.X-font.LeftPad, pos.Y-textSize.Y-font.TopPad,
			pos.X+textSize.X+font.RightPad, pos.Y+font.BottomPad/2),
		clr:     clr,
		text:    text,
		textPos: pos,
	}
}

// drawLabels renders the labels, after all boxes so they are the top most
// layer on the image
func drawLabels(img *gocv.Mat, labels []boxLabel, font Font) {
	for _, l := range labels {
		// draw box text gets written on
		gocv.Rectangle(img, l.rect, l.clr, -1)

		gocv.PutTextWithParams(img, l.text, l.textPos,
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)
	}
}
