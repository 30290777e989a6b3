package analysis

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-facetrack/detect"
	"gocv.io/x/gocv"
)

func TestRunOrderedKeepsInputOrder(t *testing.T) {

	paths := []string{"/a.mp4", "/b.mp4", "/c.mp4", "/d.mp4", "/e.mp4"}

	var inFlight, peak atomic.Int32

	fn := func(ctx context.Context, i int, path string) ClipResult {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)

		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}

		// earlier clips take longer so they finish last
		time.Sleep(time.Duration(len(paths)-i) * 5 * time.Millisecond)

		return ClipResult{ClipPath: path, FPS: float64(i)}
	}

	results := runOrdered(context.Background(), paths, 2, fn)

	require.Len(t, results, len(paths))

	for i, r := range results {
		assert.Equal(t, paths[i], r.ClipPath)
		assert.Equal(t, float64(i), r.FPS)
	}

	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunOrderedIsolatesPanics(t *testing.T) {

	paths := []string{"/a.mp4", "/bad.mp4", "/c.mp4"}

	fn := func(ctx context.Context, i int, path string) ClipResult {
		if path == "/bad.mp4" {
			panic("corrupt stream")
		}
		return ClipResult{ClipPath: path, FPS: 25, Faces: []FaceResult{}}
	}

	results := runOrdered(context.Background(), paths, 3, fn)
	require.Len(t, results, 3)

	assert.False(t, results[0].Failed())
	assert.True(t, results[1].Failed())
	assert.Equal(t, "/bad.mp4", results[1].ClipPath)
	assert.Contains(t, results[1].Error, "corrupt stream")
	assert.NotNil(t, results[1].Faces)
	assert.False(t, results[2].Failed())
}

func TestRunOrderedEmpty(t *testing.T) {
	results := runOrdered(context.Background(), nil, 4, nil)
	assert.Empty(t, results)
}

func TestDebugPath(t *testing.T) {
	assert.Equal(t, "", DebugPath("", 2, 5))
	assert.Equal(t, "/tmp/debug.mp4", DebugPath("/tmp/debug.mp4", 0, 1))
	assert.Equal(t, "/tmp/debug-0.mp4", DebugPath("/tmp/debug.mp4", 0, 3))
	assert.Equal(t, "/tmp/debug-2.mp4", DebugPath("/tmp/debug.mp4", 2, 3))
	assert.Equal(t, "out-1", DebugPath("out", 1, 2))
}

// noFaces is a face detector that never finds anything
type noFaces struct{}

func (noFaces) DetectFaces(img gocv.Mat) ([]detect.Face, error) { return nil, nil }
func (noFaces) Close() error                                    { return nil }

func TestRunBatchMissingClips(t *testing.T) {

	pool, err := detect.NewPool(2, func() (*detect.Adapter, error) {
		return detect.NewAdapter(noFaces{}, nil, detect.DefaultAdapterOptions()), nil
	})
	require.NoError(t, err)
	defer pool.Close()

	dir := t.TempDir()
	paths := []string{
		filepath.Join(dir, "one.mp4"),
		filepath.Join(dir, "two.mp4"),
		filepath.Join(dir, "three.mp4"),
	}

	m := NewMetrics()
	results := RunBatch(context.Background(), paths, pool, defaultOptions(), m)

	require.Len(t, results, 3)

	for i, r := range results {
		assert.Equal(t, paths[i], r.ClipPath)
		assert.True(t, r.Failed())
		assert.Empty(t, r.Faces)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.clipsFailed))
}
