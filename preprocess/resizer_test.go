package preprocess

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"gocv.io/x/gocv"
)

var (
	black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

func TestLetterBoxResize(t *testing.T) {

	tests := []struct {
		srcWidth      int
		srcHeight     int
		resizeWidth   int
		resizeHeight  int
		expectedXPad  int
		expectedYPad  int
		expectedScale float64
	}{
		{384, 216, 192, 192, 0, 42, 0.50},
		{150, 300, 192, 192, 48, 0, 0.64},
		{96, 96, 192, 192, 0, 0, 2},
	}

	for _, tc := range tests {
		img := gocv.NewMatWithSize(tc.srcHeight, tc.srcWidth, gocv.MatTypeCV8UC3)
		resizedImg := gocv.NewMat()

		resizer := NewResizer(tc.srcWidth, tc.srcHeight, tc.resizeWidth, tc.resizeHeight)
		resizer.LetterBoxResize(img, &resizedImg, black)

		assert.Equal(t, tc.expectedXPad, resizer.XPad(), "x pad for %dx%d", tc.srcWidth, tc.srcHeight)
		assert.Equal(t, tc.expectedYPad, resizer.YPad(), "y pad for %dx%d", tc.srcWidth, tc.srcHeight)
		assert.InDelta(t, tc.expectedScale, resizer.ScaleFactor(), 1e-9)
		assert.Equal(t, tc.resizeWidth, resizedImg.Cols())
		assert.Equal(t, tc.resizeHeight, resizedImg.Rows())

		img.Close()
		resizedImg.Close()
		resizer.Close()
	}
}

func TestToSource(t *testing.T) {

	resizer := NewResizer(384, 216, 192, 192)
	defer resizer.Close()

	// the letterbox has a 42 pixel band top and bottom at half scale
	x, y := resizer.ToSource(96, 42)
	assert.InDelta(t, 0.5, x, 1e-9)
	assert.InDelta(t, 0.0, y, 1e-9)

	x, y = resizer.ToSource(192, 150)
	assert.InDelta(t, 1.0, x, 1e-9)
	assert.InDelta(t, 1.0, y, 1e-9)
}
