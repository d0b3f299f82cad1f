package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DeliveryMetrics tracks the distribution fan-out.
type DeliveryMetrics struct {
	deliveries   *prometheus.CounterVec
	sendDuration *prometheus.HistogramVec
	finalised    *prometheus.CounterVec
}

// NewDeliveryMetrics registers delivery collectors. A nil registerer yields a
// no-op recorder.
func NewDeliveryMetrics(reg prometheus.Registerer) *DeliveryMetrics {
	if reg == nil {
		return &DeliveryMetrics{}
	}
	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "deliveries_total",
		Help:      "Per-outlet delivery attempts by outcome.",
	}, []string{"status"})
	sendDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "smtp_send_duration_seconds",
		Help:      "Duration of individual SMTP sends.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"status"})
	finalised := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "distributions_finalised_total",
		Help:      "Distributions reaching a terminal status.",
	}, []string{"status"})
	reg.MustRegister(deliveries, sendDuration, finalised)
	return &DeliveryMetrics{
		deliveries:   deliveries,
		sendDuration: sendDuration,
		finalised:    finalised,
	}
}

// ObserveDelivery counts one delivery outcome.
func (d *DeliveryMetrics) ObserveDelivery(status string) {
	if d == nil || d.deliveries == nil {
		return
	}
	d.deliveries.WithLabelValues(normalizeLabel(status)).Inc()
}

// ObserveSend records how long a transport call took.
func (d *DeliveryMetrics) ObserveSend(status string, elapsed time.Duration) {
	if d == nil || d.sendDuration == nil {
		return
	}
	d.sendDuration.WithLabelValues(normalizeLabel(status)).Observe(elapsed.Seconds())
}

// ObserveFinalised counts a distribution reaching status.
func (d *DeliveryMetrics) ObserveFinalised(status string) {
	if d == nil || d.finalised == nil {
		return
	}
	d.finalised.WithLabelValues(normalizeLabel(status)).Inc()
}
