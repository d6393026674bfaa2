package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var latencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Metrics holds the Prometheus collectors of the dashboard service.
type Metrics struct {
	registry *prometheus.Registry

	RPCRequests     *prometheus.CounterVec
	RPCDuration     *prometheus.HistogramVec
	Reloads         *prometheus.CounterVec
	ReloadDuration  prometheus.Histogram
	ChartsRendered  *prometheus.CounterVec
	RegionsImported prometheus.Gauge
}

// New registers every collector on a fresh registry, together with the
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RPCRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "triagedash_grpc_requests_total",
			Help: "Total number of gRPC requests by method and status code",
		}, []string{"method", "code"}),
		RPCDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "triagedash_grpc_request_duration_seconds",
			Help:    "Duration of gRPC requests by method",
			Buckets: latencyBuckets,
		}, []string{"method"}),
		Reloads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "triagedash_dashboard_reloads_total",
			Help: "Dashboard record reloads by outcome (ok, error, stale)",
		}, []string{"outcome"}),
		ReloadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "triagedash_dashboard_reload_duration_seconds",
			Help:    "Duration of dashboard record reloads",
			Buckets: latencyBuckets,
		}),
		ChartsRendered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "triagedash_charts_rendered_total",
			Help: "SVG charts rendered by chart name",
		}, []string{"chart"}),
		RegionsImported: f.NewGauge(prometheus.GaugeOpts{
			Name: "triagedash_region_stats_rows",
			Help: "Rows stored by the last region statistics import",
		}),
	}
}

// ObserveRPC records one finished gRPC call.
func (m *Metrics) ObserveRPC(method, code string, d time.Duration) {
	m.RPCRequests.WithLabelValues(method, code).Inc()
	m.RPCDuration.WithLabelValues(method).Observe(d.Seconds())
}

// ObserveReload records one finished dashboard reload.
func (m *Metrics) ObserveReload(outcome string, d time.Duration) {
	m.Reloads.WithLabelValues(outcome).Inc()
	m.ReloadDuration.Observe(d.Seconds())
}

func (m *Metrics) ChartRendered(chart string) {
	m.ChartsRendered.WithLabelValues(chart).Inc()
}

func (m *Metrics) SetRegionRows(n int) {
	m.RegionsImported.Set(float64(n))
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
