package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors exposed on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	DashboardCacheHits prometheus.Counter
	DashboardCacheMiss prometheus.Counter
	DonationsRecorded  prometheus.Counter
	IntentionsRecorded prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "parish_http_requests_total",
			Help: "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "parish_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		DashboardCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "parish_dashboard_cache_hits_total",
			Help: "Dashboard requests served from the cache.",
		}),
		DashboardCacheMiss: factory.NewCounter(prometheus.CounterOpts{
			Name: "parish_dashboard_cache_misses_total",
			Help: "Dashboard requests computed from the database.",
		}),
		DonationsRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "parish_donations_recorded_total",
			Help: "Donations created through the API.",
		}),
		IntentionsRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "parish_intentions_recorded_total",
			Help: "Mass intentions created through the API.",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
