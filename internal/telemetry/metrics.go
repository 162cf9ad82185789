// Package telemetry exposes live session activity as Prometheus metrics.
// Metrics live on a dedicated registry so the process never publishes the
// default Go runtime collectors unless asked to.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "expertfinder"

// Metrics records session events. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	focusChanges   *prometheus.CounterVec
	oracleRequests prometheus.Counter
	oracleFailures *prometheus.CounterVec
	staleDiscarded prometheus.Counter
	publishes      prometheus.Counter
	hides          prometheus.Counter
	oracleLatency  prometheus.Histogram
}

// NewMetrics creates the metric set on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	auto := promauto.With(reg)

	return &Metrics{
		registry: reg,
		focusChanges: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "focus_changes_total",
			Help:      "Focus changes received, by whether a document was active",
		}, []string{"target"}),
		oracleRequests: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "requests_total",
			Help:      "Scoring requests started",
		}),
		oracleFailures: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "failures_total",
			Help:      "Scoring requests that failed, by error code",
		}, []string{"code"}),
		staleDiscarded: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "stale_results_discarded_total",
			Help:      "Scoring results dropped because focus had moved on",
		}),
		publishes: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "publishes_total",
			Help:      "Rankings shown on the display",
		}),
		hides: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "hides_total",
			Help:      "Times the display was hidden",
		}),
		oracleLatency: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "latency_seconds",
			Help:      "Scoring request latency",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
	}
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// FocusChanged counts a focus change; active is false for "no document".
func (m *Metrics) FocusChanged(active bool) {
	if m == nil {
		return
	}
	label := "none"
	if active {
		label = "file"
	}
	m.focusChanges.WithLabelValues(label).Inc()
}

func (m *Metrics) OracleRequested() {
	if m == nil {
		return
	}
	m.oracleRequests.Inc()
}

// OracleCompleted records the latency of a finished request and, when code
// is non-empty, a failure.
func (m *Metrics) OracleCompleted(d time.Duration, code string) {
	if m == nil {
		return
	}
	m.oracleLatency.Observe(d.Seconds())
	if code != "" {
		m.oracleFailures.WithLabelValues(code).Inc()
	}
}

func (m *Metrics) StaleDiscarded() {
	if m == nil {
		return
	}
	m.staleDiscarded.Inc()
}

func (m *Metrics) Published() {
	if m == nil {
		return
	}
	m.publishes.Inc()
}

func (m *Metrics) Hidden() {
	if m == nil {
		return
	}
	m.hides.Inc()
}
