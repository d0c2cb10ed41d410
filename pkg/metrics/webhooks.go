package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics records billing webhook processing outcomes.
type WebhookMetrics struct {
	duration  *prometheus.HistogramVec
	processed *prometheus.CounterVec
	skipped   *prometheus.CounterVec
	failed    *prometheus.CounterVec
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "webhook_duration_seconds",
		Help:    "Duration of webhook event processing in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event_type"})
	processed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_processed",
		Help: "Webhook events applied to the database.",
	}, []string{"event_type"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_skipped",
		Help: "Webhook events skipped as duplicates or irrelevant.",
	}, []string{"event_type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_failed",
		Help: "Webhook events that ended in an error.",
	}, []string{"event_type"})
	reg.MustRegister(duration, processed, skipped, failed)
	return &WebhookMetrics{
		duration:  duration,
		processed: processed,
		skipped:   skipped,
		failed:    failed,
	}
}

// ObserveDuration records processing time for the event type.
func (m *WebhookMetrics) ObserveDuration(eventType string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(eventType)).Observe(duration.Seconds())
}

// IncProcessed increments the processed counter for the event type.
func (m *WebhookMetrics) IncProcessed(eventType string) {
	if m == nil || m.processed == nil {
		return
	}
	m.processed.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncSkipped increments the skipped counter for the event type.
func (m *WebhookMetrics) IncSkipped(eventType string) {
	if m == nil || m.skipped == nil {
		return
	}
	m.skipped.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncFailed increments the failure counter for the event type.
func (m *WebhookMetrics) IncFailed(eventType string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func normalizeLabel(eventType string) string {
	if eventType == "" {
		return "unknown"
	}
	return eventType
}
