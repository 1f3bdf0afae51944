// Package metrics exposes Prometheus instrumentation for the facet
// ingestion path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the metrics set.
type Config struct {
	// Namespace is the metrics namespace (default: "oreui").
	Namespace string

	// Subsystem is the metrics subsystem (default: "facet").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for write-apply duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// Option configures the metrics set.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the write-apply duration histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "oreui",
		Subsystem: "facet",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the collectors for the ingestion path.
//
// Collected:
//   - oreui_facet_frames_total: frames received by type
//   - oreui_facet_frame_errors_total: frames rejected at decode
//   - oreui_facet_writes_total: facet writes by outcome (applied/unknown)
//   - oreui_facet_write_duration_seconds: write-apply duration, including
//     the synchronous notification cascade
//   - oreui_facet_connected_backends: currently connected backend channels
type Metrics struct {
	FramesTotal       *prometheus.CounterVec
	FrameErrors       prometheus.Counter
	WritesTotal       *prometheus.CounterVec
	WriteDuration     prometheus.Histogram
	ConnectedBackends prometheus.Gauge
}

// New registers and returns the metrics set.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		FramesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frames_total",
			Help:        "Total frames received from backends by frame type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		FrameErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frame_errors_total",
			Help:        "Total frames rejected during decode",
			ConstLabels: config.ConstLabels,
		}),

		WritesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "writes_total",
			Help:        "Total facet writes by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		WriteDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "write_duration_seconds",
			Help:        "Facet write-apply duration including synchronous notification",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		ConnectedBackends: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "connected_backends",
			Help:        "Number of currently connected backend channels",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Write outcome label values.
const (
	OutcomeApplied = "applied"
	OutcomeUnknown = "unknown"
)

// RecordWrite records one facet write outcome.
func (m *Metrics) RecordWrite(applied bool) {
	if m == nil {
		return
	}
	if applied {
		m.WritesTotal.WithLabelValues(OutcomeApplied).Inc()
	} else {
		m.WritesTotal.WithLabelValues(OutcomeUnknown).Inc()
	}
}

// RecordFrame records one received frame by type.
func (m *Metrics) RecordFrame(frameType string) {
	if m == nil {
		return
	}
	m.FramesTotal.WithLabelValues(frameType).Inc()
}

// RecordFrameError records one rejected frame.
func (m *Metrics) RecordFrameError() {
	if m == nil {
		return
	}
	m.FrameErrors.Inc()
}

// RecordWriteDuration records one write-apply duration in seconds.
func (m *Metrics) RecordWriteDuration(seconds float64) {
	if m == nil {
		return
	}
	m.WriteDuration.Observe(seconds)
}

// BackendConnected adjusts the connected-backend gauge.
func (m *Metrics) BackendConnected(delta int) {
	if m == nil {
		return
	}
	m.ConnectedBackends.Add(float64(delta))
}
