// Package metrics holds the Prometheus registry of the catalog service.
//
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

type Metrics struct {
	Registry *prometheus.Registry

	IndexQueries      *prometheus.CounterVec
	HydrationBatches  *prometheus.CounterVec
	FilterDuration    *prometheus.HistogramVec
	HTTPRequests      *prometheus.CounterVec
	HTTPRequestLength *prometheus.HistogramVec
}

// New creates a custom registry with the catalog meters plus the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	indexQueries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_index_queries_total",
		Help: "Secondary index queries issued by the filter engine.",
	}, []string{"index", "status"})

	hydrationBatches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_hydration_batches_total",
		Help: "Batch reads issued to hydrate search results.",
	}, []string{"status"})

	filterDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_filter_duration_seconds",
		Help:    "Duration of product searches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "route", "status"})

	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	reg.MustRegister(
		indexQueries, hydrationBatches, filterDuration, httpRequests, httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		Registry:          reg,
		IndexQueries:      indexQueries,
		HydrationBatches:  hydrationBatches,
		FilterDuration:    filterDuration,
		HTTPRequests:      httpRequests,
		HTTPRequestLength: httpDuration,
	}
}

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}

func (m *Metrics) IndexQuery(index string, err error) {
	if m == nil {
		return
	}
	m.IndexQueries.WithLabelValues(index, status(err)).Inc()
}

func (m *Metrics) HydrationBatch(err error) {
	if m == nil {
		return
	}
	m.HydrationBatches.WithLabelValues(status(err)).Inc()
}

func (m *Metrics) Filter(elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.FilterDuration.WithLabelValues(status(err)).Observe(elapsed.Seconds())
}

func (m *Metrics) HTTPRequest(method, route, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, code).Inc()
	m.HTTPRequestLength.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
