package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the Prometheus instruments for evaluation and runs.
type Registry struct {
	// Evaluation Metrics
	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram

	// Run Metrics
	StepsTotal  prometheus.Counter
	StepSize    prometheus.Histogram
	RunsTotal   *prometheus.CounterVec
	RunDuration prometheus.Histogram

	// Network Metrics
	NetworkVertices prometheus.Gauge
	NetworkEdges    prometheus.Gauge
	NetworkStateDim prometheus.Gauge

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initEvaluationMetrics()
	r.initRunMetrics()
	r.initNetworkMetrics()
	return r
}

func (r *Registry) initEvaluationMetrics() {
	r.EvaluationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netdyn_evaluations_total",
			Help: "Total number of right-hand side evaluations",
		},
		[]string{"status"},
	)

	r.EvaluationDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netdyn_evaluation_duration_seconds",
			Help:    "Right-hand side evaluation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		},
	)
}

func (r *Registry) initRunMetrics() {
	r.StepsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "netdyn_steps_total",
			Help: "Total number of integrator steps taken",
		},
	)

	r.StepSize = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netdyn_step_size",
			Help:    "Integrator step size in model time units",
			Buckets: prometheus.ExponentialBuckets(1e-6, 10, 8),
		},
	)

	r.RunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netdyn_runs_total",
			Help: "Total number of simulation runs by outcome",
		},
		[]string{"status"},
	)

	r.RunDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netdyn_run_duration_seconds",
			Help:    "Wall-clock run duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0, 60.0},
		},
	)
}

func (r *Registry) initNetworkMetrics() {
	r.NetworkVertices = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netdyn_network_vertices",
			Help: "Vertices in the assembled network",
		},
	)
	r.NetworkEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netdyn_network_edges",
			Help: "Edges in the assembled network",
		},
	)
	r.NetworkStateDim = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netdyn_network_state_dim",
			Help: "Length of the integrated state vector",
		},
	)
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
