// Package metrics provides Prometheus-based metrics collection for nmapconv.
// Conversions are one-shot processes, so the registry is exported through the
// node_exporter textfile collector format rather than an HTTP endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all nmapconv metrics
	namespace = "nmapconv"

	// Subsystems
	subsystemConvert = "convert"
)

// Conversion status label values.
const (
	StatusSuccess    = "success"
	StatusNotFound   = "not_found"
	StatusParseError = "parse_error"
	StatusWriteError = "write_error"
)

// Recorder is what the converter reports to. It allows the converter to be
// tested against a mock.
//
//go:generate mockgen -destination=mocks/mock_recorder.go -package=mocks . Recorder
type Recorder interface {
	// ObserveConversion records the outcome and duration of one conversion.
	ObserveConversion(status string, duration time.Duration)

	// AddReport records the size of a converted report.
	AddReport(hosts, ports, scripts int)
}

// Ensure that PrometheusMetrics implements Recorder interface.
var _ Recorder = (*PrometheusMetrics)(nil)

// PrometheusMetrics holds all Prometheus metric collectors
type PrometheusMetrics struct {
	conversions        *prometheus.CounterVec
	conversionDuration prometheus.Histogram
	hosts              prometheus.Counter
	ports              prometheus.Counter
	scripts            prometheus.Counter

	registry *prometheus.Registry
}

// NewPrometheusMetrics creates a new Prometheus metrics instance with all collectors
// registered on a private registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	pm := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
	}

	pm.conversions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemConvert,
			Name:      "total",
			Help:      "Total number of report conversions by status",
		},
		[]string{"status"},
	)

	pm.conversionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemConvert,
			Name:      "duration_seconds",
			Help:      "Duration of report conversions in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	pm.hosts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystemConvert,
		Name:      "hosts_total",
		Help:      "Total number of hosts written to JSON reports",
	})

	pm.ports = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystemConvert,
		Name:      "ports_total",
		Help:      "Total number of ports written to JSON reports",
	})

	pm.scripts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystemConvert,
		Name:      "scripts_total",
		Help:      "Total number of host and port script results written to JSON reports",
	})

	pm.registry.MustRegister(
		pm.conversions,
		pm.conversionDuration,
		pm.hosts,
		pm.ports,
		pm.scripts,
	)

	return pm
}

// ObserveConversion records the outcome and duration of one conversion.
func (pm *PrometheusMetrics) ObserveConversion(status string, duration time.Duration) {
	pm.conversions.WithLabelValues(status).Inc()
	pm.conversionDuration.Observe(duration.Seconds())
}

// AddReport records the size of a converted report.
func (pm *PrometheusMetrics) AddReport(hosts, ports, scripts int) {
	pm.hosts.Add(float64(hosts))
	pm.ports.Add(float64(ports))
	pm.scripts.Add(float64(scripts))
}

// Registry returns the underlying Prometheus registry.
func (pm *PrometheusMetrics) Registry() *prometheus.Registry {
	return pm.registry
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is written atomically so a collector never reads a partial dump.
func (pm *PrometheusMetrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, pm.registry)
}
