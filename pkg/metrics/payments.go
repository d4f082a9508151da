package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records checkout and webhook activity.
type PaymentMetrics struct {
	webhookEvents    *prometheus.CounterVec
	checkoutSessions *prometheus.CounterVec
	checkoutDuration *prometheus.HistogramVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Payment webhook deliveries by event type and outcome.",
	}, []string{"type", "outcome"})
	checkoutSessions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_sessions_total",
		Help: "Hosted checkout session creations by outcome.",
	}, []string{"outcome"})
	checkoutDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "End-to-end checkout initiation latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	reg.MustRegister(webhookEvents, checkoutSessions, checkoutDuration)
	return &PaymentMetrics{
		webhookEvents:    webhookEvents,
		checkoutSessions: checkoutSessions,
		checkoutDuration: checkoutDuration,
	}
}

// IncWebhookEvent increments the webhook counter for the event type and outcome.
func (p *PaymentMetrics) IncWebhookEvent(eventType, outcome string) {
	if p == nil || p.webhookEvents == nil {
		return
	}
	p.webhookEvents.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}

// IncCheckoutSession increments the checkout counter for the outcome.
func (p *PaymentMetrics) IncCheckoutSession(outcome string) {
	if p == nil || p.checkoutSessions == nil {
		return
	}
	p.checkoutSessions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveCheckoutDuration records the checkout initiation latency.
func (p *PaymentMetrics) ObserveCheckoutDuration(outcome string, duration time.Duration) {
	if p == nil || p.checkoutDuration == nil {
		return
	}
	p.checkoutDuration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
