// Package metrics exposes Prometheus collectors for the catalog service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "loftloot"

// Metrics holds every collector on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	ReloadsTotal     *prometheus.CounterVec
	ReloadDuration   prometheus.Histogram
	CatalogProducts  prometheus.Gauge
	RejectedRecords  prometheus.Gauge
	QueriesTotal     *prometheus.CounterVec
	SuggestCacheHits *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
}

// New registers the collectors, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ReloadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_reloads_total",
			Help:      "Catalog reload attempts by result.",
		}, []string{"result"}),
		ReloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_reload_duration_seconds",
			Help:      "Time to fetch and build a catalog.",
			Buckets:   prometheus.DefBuckets,
		}),
		CatalogProducts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_products",
			Help:      "Products in the published catalog.",
		}),
		RejectedRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_rejected_records",
			Help:      "Feed records rejected by the last successful build.",
		}),
		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_queries_total",
			Help:      "Catalog read operations by kind.",
		}, []string{"op"}),
		SuggestCacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggest_cache_lookups_total",
			Help:      "Suggestion memo lookups by outcome.",
		}, []string{"outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ReloadsTotal,
		m.ReloadDuration,
		m.CatalogProducts,
		m.RejectedRecords,
		m.QueriesTotal,
		m.SuggestCacheHits,
		m.HTTPRequests,
	)
	return m
}

// Registry returns the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveReload records one reload attempt.
func (m *Metrics) ObserveReload(start time.Time, products, rejected int, err error) {
	if m == nil {
		return
	}
	m.ReloadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.ReloadsTotal.WithLabelValues("error").Inc()
		return
	}
	m.ReloadsTotal.WithLabelValues("ok").Inc()
	m.CatalogProducts.Set(float64(products))
	m.RejectedRecords.Set(float64(rejected))
}

// Query counts one read operation.
func (m *Metrics) Query(op string) {
	if m == nil {
		return
	}
	m.QueriesTotal.WithLabelValues(op).Inc()
}

// SuggestCache counts one memo lookup.
func (m *Metrics) SuggestCache(hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.SuggestCacheHits.WithLabelValues(outcome).Inc()
}

// InstrumentHandler counts requests passing through next.
func (m *Metrics) InstrumentHandler(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return promhttp.InstrumentHandlerCounter(m.HTTPRequests, next)
}
