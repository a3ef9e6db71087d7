package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector provides application metrics collection.
type Collector struct {
	registry *prometheus.Registry

	// Upstream fetch metrics
	FetchTotal          *prometheus.CounterVec
	FetchDuration       *prometheus.HistogramVec
	ObservationsDropped *prometheus.CounterVec
	ObservationsKept    *prometheus.CounterVec

	// API metrics
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec

	// Report metrics
	ReportsSent *prometheus.CounterVec
}

// NewCollector creates a collector on its own registry so that several can coexist in tests.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		FetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_total",
				Help:      "Upstream series fetches by series and outcome",
			},
			[]string{"series", "outcome"},
		),

		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Upstream series fetch duration in seconds",
				Buckets:   []float64{0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
			[]string{"series"},
		),

		ObservationsDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "observations_dropped_total",
				Help:      "Raw observations dropped during normalization by reason",
			},
			[]string{"series", "reason"}, // "missing_value", "duplicate_date"
		),

		ObservationsKept: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "observations_kept_total",
				Help:      "Observations retained after normalization",
			},
			[]string{"series"},
		),

		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by route and status",
			},
			[]string{"route", "status"},
		),

		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0, 10.0},
			},
			[]string{"route"},
		),

		ReportsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reports_sent_total",
				Help:      "Scheduled and on-demand reports by delivery outcome",
			},
			[]string{"outcome"},
		),
	}
}

// RecordFetch records one upstream fetch.
func (c *Collector) RecordFetch(series, outcome string, d time.Duration) {
	c.FetchTotal.WithLabelValues(series, outcome).Inc()
	c.FetchDuration.WithLabelValues(series).Observe(d.Seconds())
}

// RecordNormalize records how many observations were kept and dropped.
func (c *Collector) RecordNormalize(series string, kept, missing, duplicate int) {
	c.ObservationsKept.WithLabelValues(series).Add(float64(kept))
	if missing > 0 {
		c.ObservationsDropped.WithLabelValues(series, "missing_value").Add(float64(missing))
	}
	if duplicate > 0 {
		c.ObservationsDropped.WithLabelValues(series, "duplicate_date").Add(float64(duplicate))
	}
}

// RecordAPIRequest records one API request.
func (c *Collector) RecordAPIRequest(route string, status int, d time.Duration) {
	c.APIRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	c.APIRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
