package detect

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/swdee/go-facetrack/preprocess"
	"github.com/swdee/go-facetrack/tracker"
	"gocv.io/x/gocv"
)

// LandmarkParams defines the face landmark network settings
type LandmarkParams struct {
	// Model is the path to the landmark ONNX model
	Model string
	// InputSize is the width and height of the square network input
	InputSize int
	// PointDims is the number of values per landmark in the output, 2 for
	// x,y or 3 for x,y,z
	PointDims int
	// Scale is the output coordinate range that corresponds to the full
	// network input
	Scale float64
}

// DefaultLandmarkParams returns settings for a 192x192 face mesh model
func DefaultLandmarkParams() LandmarkParams {
	return LandmarkParams{
		InputSize: 192,
		PointDims: 3,
		Scale:     192,
	}
}

// LandmarkNet estimates face landmarks with an ONNX model run through the
// OpenCV DNN module
type LandmarkNet struct {
	net    gocv.Net
	params LandmarkParams
	input  gocv.Mat
}

// NewLandmarkNet loads the landmark model
func NewLandmarkNet(p LandmarkParams) (*LandmarkNet, error) {

	if p.InputSize <= 0 || p.PointDims < 2 || p.Scale <= 0 {
		return nil, fmt.Errorf("invalid landmark params %+v", p)
	}

	if _, err := os.Stat(p.Model); err != nil {
		return nil, fmt.Errorf("landmark model %s: %w", p.Model, err)
	}

	net := gocv.ReadNetFromONNX(p.Model)

	if net.Empty() {
		return nil, fmt.Errorf("failed to load landmark model %s", p.Model)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &LandmarkNet{
		net:    net,
		params: p,
		input:  gocv.NewMat(),
	}, nil
}

// Landmarks runs the network on a face region and returns the landmarks
// normalized to the region
func (l *LandmarkNet) Landmarks(roi gocv.Mat) ([]tracker.Point, error) {

	if roi.Empty() {
		return nil, ErrEmptyFrame
	}

	size := l.params.InputSize

	resizer := preprocess.NewResizer(roi.Cols(), roi.Rows(), size, size)
	defer resizer.Close()

	resizer.LetterBoxResize(roi, &l.input, color.RGBA{A: 255})

	blob := gocv.BlobFromImage(l.input, 1.0/255.0, image.Pt(size, size),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	l.net.SetInput(blob, "")

	out := l.net.Forward("")
	defer out.Close()

	if out.Empty() {
		return nil, fmt.Errorf("landmark model returned no output")
	}

	data, err := out.DataPtrFloat32()

	if err != nil {
		return nil, fmt.Errorf("error reading landmark output: %w", err)
	}

	return decodeLandmarks(data, l.params, resizer.ToSource), nil
}

// Close releases the network
func (l *LandmarkNet) Close() error {
	if err := l.net.Close(); err != nil {
		return err
	}
	return l.input.Close()
}

// decodeLandmarks converts the flat network output into points.  Output
// values are first scaled into input pixels then mapped back to the region
// with toSource
func decodeLandmarks(data []float32, p LandmarkParams,
	toSource func(x, y float64) (float64, float64)) []tracker.Point {

	count := len(data) / p.PointDims
	pixels := float64(p.InputSize) / p.Scale

	points := make([]tracker.Point, count)

	for i := 0; i < count; i++ {
		x := float64(data[i*p.PointDims]) * pixels
		y := float64(data[i*p.PointDims+1]) * pixels

		points[i].X, points[i].Y = toSource(x, y)
	}

	return points
}
