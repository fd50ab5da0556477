// Package metrics exposes the classification counters to Prometheus.
package metrics

import (
	"net/http"

	gesture "github.com/esimov/gesture/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gesture"

// Metrics holds the collectors of a classification process.
type Metrics struct {
	FramesReceived   prometheus.Counter
	FramesClassified prometheus.Counter
	FramesDropped    prometheus.Counter
	FramesSkipped    prometheus.Counter
	DecodeErrors     prometheus.Counter
	Gestures         *prometheus.CounterVec
	ActiveSessions   prometheus.Gauge
	TotalSessions    prometheus.Counter

	registry *prometheus.Registry
}

// New creates the collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		FramesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_received_total",
			Help:      "Total frames received from face detectors",
		}),
		FramesClassified: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_classified_total",
			Help:      "Total frames passed to the classifier",
		}),
		FramesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_dropped_total",
			Help:      "Total late frames discarded by the frame rate limit",
		}),
		FramesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_skipped_total",
			Help:      "Total frames without faces or with a detector error",
		}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Total malformed frames",
		}),
		Gestures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gestures_total",
			Help:      "Total emitted gestures by kind",
		}, []string{"kind"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of connected classification sessions",
		}),
		TotalSessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total classification sessions opened",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.FramesReceived,
		m.FramesClassified,
		m.FramesDropped,
		m.FramesSkipped,
		m.DecodeErrors,
		m.Gestures,
		m.ActiveSessions,
		m.TotalSessions,
	)

	// Expose every kind from the start, even before it fired.
	for _, k := range gesture.Kinds() {
		m.Gestures.WithLabelValues(k.String())
	}
	return m
}

// HandleGesture counts the gesture. It implements gesture.Handler.
func (m *Metrics) HandleGesture(ev gesture.Event) {
	m.Gestures.WithLabelValues(ev.Kind.String()).Inc()
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler serving the metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
