package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "phenodash"

// Metrics holds the Prometheus collectors of the service
type Metrics struct {
	registry       *prometheus.Registry
	datasetLoads   *prometheus.CounterVec
	datasetRows    prometheus.Gauge
	renders        *prometheus.CounterVec
	renderDuration prometheus.Histogram
	wsClients      prometheus.Gauge
}

// New creates collectors registered on a dedicated registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		datasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Dataset loads by result",
		}, []string{"result"}),
		datasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Rows in the current dataset snapshot",
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Dashboard renders by result",
		}, []string{"result"}),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent rendering a dashboard view",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Connected live reload clients",
		}),
	}

	m.registry.MustRegister(
		m.datasetLoads,
		m.datasetRows,
		m.renders,
		m.renderDuration,
		m.wsClients,
	)
	return m
}

// ObserveLoad records the outcome of a dataset load.
// All methods accept a nil receiver so metrics stay optional.
func (m *Metrics) ObserveLoad(rows int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.datasetLoads.WithLabelValues("error").Inc()
		m.datasetRows.Set(0)
		return
	}
	m.datasetLoads.WithLabelValues("ok").Inc()
	m.datasetRows.Set(float64(rows))
}

// ObserveRender records the outcome and duration of a render
func (m *Metrics) ObserveRender(seconds float64, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.renders.WithLabelValues(result).Inc()
	m.renderDuration.Observe(seconds)
}

// SetClients records the number of websocket clients
func (m *Metrics) SetClients(n int) {
	if m == nil {
		return
	}
	m.wsClients.Set(float64(n))
}

// Handler returns the HTTP handler exposing the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
