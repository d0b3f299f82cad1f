package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pressreach"

// CronJobMetrics records maintenance job runs. The zero value and a nil
// pointer are both no-ops.
type CronJobMetrics struct {
	duration    *prometheus.HistogramVec
	success     *prometheus.CounterVec
	failure     *prometheus.CounterVec
	lastSuccess *prometheus.GaugeVec
	skipped     prometheus.Counter
}

func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	m := &CronJobMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "job_duration_seconds",
			Help:      "Duration of maintenance jobs in seconds.",
			Buckets:   []float64{0.05, 0.25, 1, 5, 15, 60, 300},
		}, []string{"job"}),
		success: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "job_success_total",
			Help:      "Successful maintenance job runs.",
		}, []string{"job"}),
		failure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "job_failure_total",
			Help:      "Failed maintenance job runs.",
		}, []string{"job"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "job_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run per job.",
		}, []string{"job"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "cycles_skipped_total",
			Help:      "Cycles skipped because another worker held the lock.",
		}),
	}
	reg.MustRegister(m.duration, m.success, m.failure, m.lastSuccess, m.skipped)
	return m
}

func (c *CronJobMetrics) ObserveDuration(job string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// IncSuccess counts a successful run and stamps its completion time.
func (c *CronJobMetrics) IncSuccess(job string, at time.Time) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(normalizeLabel(job)).Inc()
	c.lastSuccess.WithLabelValues(normalizeLabel(job)).Set(float64(at.Unix()))
}

func (c *CronJobMetrics) IncFailure(job string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(job)).Inc()
}

func (c *CronJobMetrics) IncSkipped() {
	if c == nil || c.skipped == nil {
		return
	}
	c.skipped.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
