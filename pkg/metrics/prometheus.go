package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the global metrics container.
type Metrics struct {
	// Run submission metrics (Run Coordinator)
	RunsSubmittedTotal *prometheus.CounterVec
	RunsCompletedTotal *prometheus.CounterVec
	ActiveRuns         prometheus.Gauge
	QueueWaitDuration   *prometheus.HistogramVec

	// Solver metrics
	SolveDuration        *prometheus.HistogramVec
	ObjectiveValue       *prometheus.GaugeVec
	ModelVariablesTotal  *prometheus.HistogramVec
	ModelConstraintsTotal *prometheus.HistogramVec

	// System metrics
	MemoryUsage *prometheus.GaugeVec
	Goroutines  prometheus.Gauge

	// Service info
	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics initializes metrics.
func InitMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		RunsSubmittedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "runs_submitted_total",
				Help:      "Total number of solve runs submitted, by planner",
			},
			[]string{"planner"},
		),

		RunsCompletedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "runs_completed_total",
				Help:      "Total number of solve runs that reached a terminal status",
			},
			[]string{"planner", "status"},
		),

		ActiveRuns: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "active_runs",
				Help:      "Current number of runs being processed by the worker pool",
			},
		),

		QueueWaitDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "queue_wait_duration_seconds",
				Help:      "Time a run spent queued before a worker picked it up",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"planner"},
		),

		SolveDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_duration_seconds",
				Help:      "Duration of solve operations",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"planner"},
		),

		ObjectiveValue: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "objective_value",
				Help:      "Last reported objective value per planner",
			},
			[]string{"planner"},
		),

		ModelVariablesTotal: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "model_variables_total",
				Help:      "Number of decision variables in the built Model IR",
				Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000},
			},
			[]string{"planner", "kind"},
		),

		ModelConstraintsTotal: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "model_constraints_total",
				Help:      "Number of linear constraints in the built Model IR",
				Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000},
			},
			[]string{"planner"},
		),

		MemoryUsage: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "memory_usage_bytes",
				Help:      "Current memory usage",
			},
			[]string{"type"},
		),

		Goroutines: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "goroutines",
				Help:      "Current number of goroutines",
			},
		),

		ServiceInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),
	}

	defaultMetrics = m
	return m
}

// Get returns the global metrics.
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("mfsol", "")
	}
	return defaultMetrics
}

// RecordRunSubmitted records a submitted run.
func (m *Metrics) RecordRunSubmitted(planner string) {
	m.RunsSubmittedTotal.WithLabelValues(planner).Inc()
}

// RecordRunCompleted records a run's completion with its final status.
func (m *Metrics) RecordRunCompleted(planner, status string, duration time.Duration, objective float64) {
	m.RunsCompletedTotal.WithLabelValues(planner, status).Inc()
	m.SolveDuration.WithLabelValues(planner).Observe(duration.Seconds())
	if status == "optimal" || status == "feasible" {
		m.ObjectiveValue.WithLabelValues(planner).Set(objective)
	}
}

// RecordModelSize records the size of a built model.
func (m *Metrics) RecordModelSize(planner string, binaryVars, continuousVars, constraints int) {
	m.ModelVariablesTotal.WithLabelValues(planner, "binary").Observe(float64(binaryVars))
	m.ModelVariablesTotal.WithLabelValues(planner, "continuous").Observe(float64(continuousVars))
	m.ModelConstraintsTotal.WithLabelValues(planner).Observe(float64(constraints))
}

// SetServiceInfo sets the service info.
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler returns the HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartMetricsServer starts the HTTP server for metrics.
func StartMetricsServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK")) //nolint:errcheck // health endpoint, write error is not critical
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}
