// Package jobmetrics instruments the session audit task handlers.
package jobmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

// Metrics holds the worker's job collectors. A nil *Metrics records nothing.
type Metrics struct {
	runs       *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	duplicates *prometheus.CounterVec
	purged     prometheus.Counter
}

// NewMetrics builds the collectors and registers them with registerer. A nil
// registerer leaves them unregistered.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "finboard_jobs_total",
			Help: "Job executions by task type and status.",
		}, []string{"job", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "finboard_job_duration_seconds",
			Help:    "Job execution time by task type.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"job"}),
		duplicates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "finboard_jobs_duplicates_total",
			Help: "Redelivered tasks skipped because their event was already stored.",
		}, []string{"job"}),
		purged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "finboard_audit_events_purged_total",
			Help: "Session events removed by the retention purge.",
		}),
	}
	if registerer != nil {
		registerer.MustRegister(m.runs, m.duration, m.duplicates, m.purged)
	}
	return m
}

// Run times one execution of a task type.
type Run struct {
	metrics *Metrics
	job     string
	start   time.Time
}

// Track starts timing a run of job.
func (m *Metrics) Track(job string) *Run {
	return &Run{metrics: m, job: job, start: time.Now()}
}

// End records the outcome of the run and returns err unchanged.
func (r *Run) End(err error) error {
	if r == nil || r.metrics == nil {
		return err
	}
	status := statusSuccess
	if err != nil {
		status = statusFailure
	}
	r.metrics.runs.WithLabelValues(r.job, status).Inc()
	r.metrics.duration.WithLabelValues(r.job).Observe(time.Since(r.start).Seconds())
	return err
}

// AddDuplicate counts a redelivered task of job.
func (m *Metrics) AddDuplicate(job string) {
	if m == nil {
		return
	}
	m.duplicates.WithLabelValues(job).Inc()
}

// AddPurged counts events removed by one purge run.
func (m *Metrics) AddPurged(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.purged.Add(float64(n))
}
