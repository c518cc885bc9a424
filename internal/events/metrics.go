package events

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/ALT-F4-LLC/ferry/internal/export"
)

const (
	statusSuccess = "success"
	statusFailed  = "failed"
)

// Metrics records export counts and durations in its own registry and can
// push them to a Prometheus Pushgateway.
type Metrics struct {
	gatewayURL string
	jobName    string
	reg        *prometheus.Registry

	exports    *prometheus.CounterVec   // ferry_exports_total
	records    *prometheus.CounterVec   // ferry_records_exported_total
	duration   *prometheus.HistogramVec // ferry_export_duration_seconds
	inProgress prometheus.Gauge         // ferry_exports_in_progress
}

// NewMetrics returns a metrics listener. gatewayURL may be empty, in which
// case Push does nothing.
func NewMetrics(jobName, gatewayURL string) (*Metrics, error) {
	if jobName == "" {
		jobName = "ferry"
	}

	m := &Metrics{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        prometheus.NewRegistry(),
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ferry",
				Name:      "exports_total",
				Help:      "Total number of exports, partitioned by entity, format and status.",
			},
			[]string{"entity", "format", "status"},
		),
		records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ferry",
				Name:      "records_exported_total",
				Help:      "Total number of records written by completed exports.",
			},
			[]string{"entity", "format"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ferry",
				Name:      "export_duration_seconds",
				Help:      "Duration of completed exports.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"entity", "format"},
		),
		inProgress: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "ferry",
				Name:      "exports_in_progress",
				Help:      "Number of exports that have started and not yet finished.",
			},
		),
	}

	for _, c := range []prometheus.Collector{m.exports, m.records, m.duration, m.inProgress} {
		if err := m.reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering export metrics: %w", err)
		}
	}
	return m, nil
}

// Registry returns the registry holding the export metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// PreExport implements export.Listener.
func (m *Metrics) PreExport(context.Context, export.Event) {
	m.inProgress.Inc()
}

// PostExport implements export.Listener.
func (m *Metrics) PostExport(_ context.Context, ev export.Event, sum export.Summary) {
	m.inProgress.Dec()
	f := string(ev.Format)
	m.exports.WithLabelValues(ev.Entity, f, statusSuccess).Inc()
	m.records.WithLabelValues(ev.Entity, f).Add(float64(sum.Count))
	m.duration.WithLabelValues(ev.Entity, f).Observe(sum.Seconds())
}

// ExportFailed implements export.FailureListener.
func (m *Metrics) ExportFailed(_ context.Context, ev export.Event, _ error) {
	m.inProgress.Dec()
	m.exports.WithLabelValues(ev.Entity, string(ev.Format), statusFailed).Inc()
}

// Push sends the current registry to the Pushgateway.
func (m *Metrics) Push() error {
	if m.gatewayURL == "" {
		return nil
	}
	if err := push.New(m.gatewayURL, m.jobName).Gatherer(m.reg).Push(); err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", m.gatewayURL, err)
	}
	return nil
}
