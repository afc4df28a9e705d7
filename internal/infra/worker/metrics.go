package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"cinerec/internal/pkg/config"
)

// WorkerMetrics provides Prometheus metrics for the rebuild worker.
// It embeds the shared ConfigMetrics for configuration monitoring and adds
// sweep-specific metrics.
//
// Sweep metrics:
//   - worker_sweep_runs_total: sweep runs by status (success/failure)
//   - worker_sweep_duration_seconds: sweep duration histogram
//   - worker_sweep_rebuilds_total: sweeps that actually rebuilt the model
//   - worker_sweep_last_success_timestamp: Unix time of the last good sweep
type WorkerMetrics struct {
	*config.ConfigMetrics

	// SweepRunsTotal counts sweep runs by outcome.
	SweepRunsTotal *prometheus.CounterVec

	// SweepDurationSeconds measures how long one sweep takes. A sweep that
	// skips the rebuild finishes in milliseconds; one that rebuilds can take
	// minutes, hence the wide buckets.
	SweepDurationSeconds prometheus.Histogram

	// SweepRebuildsTotal counts sweeps that triggered a model rebuild.
	SweepRebuildsTotal prometheus.Counter

	// SweepLastSuccessTimestamp records when a sweep last completed cleanly.
	SweepLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates a WorkerMetrics instance. Metrics register with
// the default registry via promauto on creation.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		SweepRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_sweep_runs_total",
			Help: "Total number of rebuild sweep runs by status (success/failure)",
		}, []string{"status"}),

		SweepDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_sweep_duration_seconds",
			Help:    "Duration of rebuild sweep execution in seconds",
			Buckets: []float64{0.01, 0.1, 1, 5, 30, 60, 300, 900},
		}),

		SweepRebuildsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_sweep_rebuilds_total",
			Help: "Total number of sweeps that rebuilt the latent model",
		}),

		SweepLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_sweep_last_success_timestamp",
			Help: "Unix timestamp of the last successful rebuild sweep",
		}),
	}
}

// MustRegister is a no-op kept for call-site symmetry; promauto already
// registered everything in NewWorkerMetrics.
func (m *WorkerMetrics) MustRegister() {}

// RecordSweepRun increments the sweep counter for the given status,
// "success" or "failure".
func (m *WorkerMetrics) RecordSweepRun(status string) {
	m.SweepRunsTotal.WithLabelValues(status).Inc()
}

// RecordSweepDuration observes one sweep duration in seconds.
func (m *WorkerMetrics) RecordSweepDuration(seconds float64) {
	m.SweepDurationSeconds.Observe(seconds)
}

// RecordRebuild counts a sweep that rebuilt the model.
func (m *WorkerMetrics) RecordRebuild() {
	m.SweepRebuildsTotal.Inc()
}

// RecordLastSuccess stamps the last successful sweep time.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.SweepLastSuccessTimestamp.SetToCurrentTime()
}
