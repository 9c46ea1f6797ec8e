package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	JobResultSuccess = "success"
	JobResultFailure = "failure"
)

// MaintenanceMetrics records scheduled cleanup runs.
type MaintenanceMetrics struct {
	duration *prometheus.HistogramVec
	runs     *prometheus.CounterVec
	removed  *prometheus.CounterVec
}

// NewMaintenanceMetrics registers the maintenance job metrics on reg.
func NewMaintenanceMetrics(reg prometheus.Registerer) *MaintenanceMetrics {
	if reg == nil {
		return &MaintenanceMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "maintenance_job_duration_seconds",
		Help:    "Duration of maintenance jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "maintenance_job_runs_total",
		Help: "Maintenance job executions by result.",
	}, []string{"job", "result"})
	removed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "maintenance_rows_removed_total",
		Help: "Rows removed by maintenance jobs.",
	}, []string{"job"})
	reg.MustRegister(duration, runs, removed)
	return &MaintenanceMetrics{
		duration: duration,
		runs:     runs,
		removed:  removed,
	}
}

func (m *MaintenanceMetrics) ObserveRun(job, result string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
	m.runs.WithLabelValues(normalizeLabel(job), normalizeLabel(result)).Inc()
}

// AddRemoved counts rows deleted by a job.
func (m *MaintenanceMetrics) AddRemoved(job string, rows int64) {
	if m == nil || m.removed == nil || rows <= 0 {
		return
	}
	m.removed.WithLabelValues(normalizeLabel(job)).Add(float64(rows))
}
