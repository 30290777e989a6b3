package detect

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/swdee/go-facetrack/tracker"
	"gocv.io/x/gocv"
)

// yunetCols is the number of values YuNet emits per face, box (4), five
// landmark pairs (10) and score (1)
const yunetCols = 15

// ErrEmptyFrame is returned when a detector is given a frame with no pixels
var ErrEmptyFrame = errors.New("empty frame")

// YuNetParams defines the YuNet face detector settings
type YuNetParams struct {
	// Model is the path to the YuNet ONNX model
	Model string
	// ScoreThreshold discards faces below this confidence
	ScoreThreshold float32
	// NMSThreshold is the overlap threshold for non maximum suppression
	NMSThreshold float32
	// TopK limits the number of candidates kept before NMS
	TopK int
}

// DefaultYuNetParams returns the default detector settings, the model path
// must still be provided
func DefaultYuNetParams() YuNetParams {
	return YuNetParams{
		ScoreThreshold: 0.30,
		NMSThreshold:   0.3,
		TopK:           5000,
	}
}

// YuNet detects faces using OpenCV's FaceDetectorYN
type YuNet struct {
	detector gocv.FaceDetectorYN
	params   YuNetParams
	faces    gocv.Mat
}

// NewYuNet loads the YuNet model
func NewYuNet(p YuNetParams) (*YuNet, error) {

	if _, err := os.Stat(p.Model); err != nil {
		return nil, fmt.Errorf("yunet model %s: %w", p.Model, err)
	}

	// the input size is replaced with the frame size on every call
	detector := gocv.NewFaceDetectorYNWithParams(
		p.Model,
		"",
		image.Pt(320, 320),
		p.ScoreThreshold,
		p.NMSThreshold,
		p.TopK,
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &YuNet{
		detector: detector,
		params:   p,
		faces:    gocv.NewMat(),
	}, nil
}

// DetectFaces runs the detector on a BGR frame and returns the faces in
// normalized frame coordinates
func (y *YuNet) DetectFaces(img gocv.Mat) ([]Face, error) {

	if img.Empty() {
		return nil, ErrEmptyFrame
	}

	w, h := img.Cols(), img.Rows()

	y.detector.SetInputSize(image.Pt(w, h))
	y.detector.Detect(img, &y.faces)

	if y.faces.Empty() {
		return nil, nil
	}

	if y.faces.Cols() < yunetCols {
		return nil, fmt.Errorf("yunet output has %d columns, expected %d",
			y.faces.Cols(), yunetCols)
	}

	faces := make([]Face, 0, y.faces.Rows())
	row := make([]float32, yunetCols)

	for r := 0; r < y.faces.Rows(); r++ {
		for c := 0; c < yunetCols; c++ {
			row[c] = y.faces.GetFloatAt(r, c)
		}

		faces = append(faces, faceFromRow(row, float64(w), float64(h)))
	}

	return faces, nil
}

// Close releases the detector
func (y *YuNet) Close() error {
	y.detector.Close()
	return y.faces.Close()
}

// faceFromRow converts one YuNet output row in pixels into a Face normalized
// by the frame width and height, with every coordinate clamped to [0,1]
func faceFromRow(row []float32, width, height float64) Face {

	x0 := tracker.Clamp01(float64(row[0]) / width)
	y0 := tracker.Clamp01(float64(row[1]) / height)
	x1 := tracker.Clamp01(float64(row[0]+row[2]) / width)
	y1 := tracker.Clamp01(float64(row[1]+row[3]) / height)

	f := Face{
		X:     x0,
		Y:     y0,
		W:     x1 - x0,
		H:     y1 - y0,
		Score: float64(row[14]),
	}

	for i := range f.Landmarks {
		f.Landmarks[i] = tracker.Point{
			X: tracker.Clamp01(float64(row[4+i*2]) / width),
			Y: tracker.Clamp01(float64(row[5+i*2]) / height),
		}
	}

	return f
}
