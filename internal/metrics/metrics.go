// Package metrics exposes Prometheus counters for the frame loop.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ayusman/mirrorpaint/internal/canvas"
	"github.com/ayusman/mirrorpaint/internal/session"
)

// Metrics groups every collector the application records.
type Metrics struct {
	Frames         prometheus.Counter
	Strokes        *prometheus.CounterVec
	ShapeToggles   prometheus.Counter
	Exports        *prometheus.CounterVec
	DetectorErrors prometheus.Counter
	BrushSize      prometheus.Gauge
	Hands          prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg.
// Passing a fresh *prometheus.Registry keeps tests isolated.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mirrorpaint_frames_total",
			Help: "Total number of frames stepped",
		}),
		Strokes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mirrorpaint_stroke_events_total",
				Help: "Paint events applied to the surface",
			},
			[]string{"event"},
		),
		ShapeToggles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mirrorpaint_shape_toggles_total",
			Help: "Number of brush shape switches",
		}),
		Exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mirrorpaint_exports_total",
				Help: "Snapshots written, by trigger",
			},
			[]string{"source"},
		),
		DetectorErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mirrorpaint_detector_errors_total",
			Help: "Failed camera reads and detector calls",
		}),
		BrushSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mirrorpaint_brush_size",
			Help: "Current brush size in pixels",
		}),
		Hands: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mirrorpaint_hands",
			Help: "Hands seen in the last frame",
		}),
		gatherer: reg,
	}

	reg.MustRegister(m.Frames, m.Strokes, m.ShapeToggles, m.Exports, m.DetectorErrors, m.BrushSize, m.Hands)
	return m
}

// Observe records one stepped frame.
func (m *Metrics) Observe(f session.Frame) {
	m.Frames.Inc()
	m.Hands.Set(float64(len(f.Hands)))
	m.BrushSize.Set(f.Brush.Size)

	if f.Event != canvas.EventNone {
		m.Strokes.WithLabelValues(f.Event.String()).Inc()
	}
	if f.Control != nil && f.Control.Toggled {
		m.ShapeToggles.Inc()
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
