package sheetstore

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the server's Prometheus collectors, registered on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	appended  prometheus.Counter
	duplicate prometheus.Counter
	specRows  prometheus.Gauge
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qcform_sheet_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qcform_sheet_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"route"}),
		appended: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qcform_sheet_records_appended_total",
			Help: "Records appended to the sheet.",
		}),
		duplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qcform_sheet_records_duplicate_total",
			Help: "Records ignored because their ID was already stored.",
		}),
		specRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "qcform_sheet_spec_rows",
			Help: "Specification rows currently stored.",
		}),
	}
	m.registry.MustRegister(m.requests, m.latency, m.appended, m.duplicate, m.specRows)
	return m
}

// Registry is the gatherer behind /metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
