package analysis

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts analysis work in a private registry
type Metrics struct {
	registry      *prometheus.Registry
	framesSampled prometheus.Counter
	detections    prometheus.Counter
	tracksSpawned prometheus.Counter
	tracksEmitted prometheus.Counter
	clipsFailed   prometheus.Counter
}

// NewMetrics creates and registers the analysis counters
func NewMetrics() *Metrics {

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		framesSampled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "facetrack_frames_sampled_total",
			Help: "Frames passed to the face detector",
		}),
		detections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "facetrack_detections_total",
			Help: "Faces detected across all sampled frames",
		}),
		tracksSpawned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "facetrack_tracks_spawned_total",
			Help: "Tracks started from unmatched detections",
		}),
		tracksEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "facetrack_tracks_emitted_total",
			Help: "Tracks long enough to be written to the results",
		}),
		clipsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "facetrack_clips_failed_total",
			Help: "Clips that could not be opened",
		}),
	}

	m.registry.MustRegister(m.framesSampled, m.detections, m.tracksSpawned,
		m.tracksEmitted, m.clipsFailed)

	return m
}

// Registry returns the registry holding the counters
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the counters in the node exporter textfile format
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// frame records a sampled frame.  All recorders accept a nil Metrics
func (m *Metrics) frame(detections, spawned int) {
	if m == nil {
		return
	}
	m.framesSampled.Inc()
	m.detections.Add(float64(detections))
	m.tracksSpawned.Add(float64(spawned))
}

func (m *Metrics) emitted(n int) {
	if m == nil {
		return
	}
	m.tracksEmitted.Add(float64(n))
}

func (m *Metrics) failed() {
	if m == nil {
		return
	}
	m.clipsFailed.Inc()
}
