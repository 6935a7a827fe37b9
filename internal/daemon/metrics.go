package daemon

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes daemon counters on a private registry so tests can run
// daemons side by side without double-registration panics.
type Metrics struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	lastRun  *prometheus.GaugeVec
}

// NewMetrics builds the metric set.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "duecron_job_runs_total",
			Help: "Job evaluations that ran, failed, or were skipped while busy.",
		}, []string{"job", "result"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "duecron_job_last_run_timestamp_seconds",
			Help: "Wall-clock time of the last successful run per job.",
		}, []string{"job"}),
	}
	m.registry.MustRegister(m.runs, m.lastRun)
	return m
}

// RecordSuccess counts a completed run.
func (m *Metrics) RecordSuccess(job string, at time.Time) {
	m.runs.WithLabelValues(job, "success").Inc()
	m.lastRun.WithLabelValues(job).Set(float64(at.Unix()))
}

// RecordFailure counts a failed run.
func (m *Metrics) RecordFailure(job string) {
	m.runs.WithLabelValues(job, "failure").Inc()
}

// RecordSkip counts a trigger skipped because the job was still running.
func (m *Metrics) RecordSkip(job string) {
	m.runs.WithLabelValues(job, "skipped").Inc()
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
