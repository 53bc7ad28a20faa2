package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Shipments records the status write path and email delivery outcomes.
// A nil *Shipments is valid and records nothing.
type Shipments struct {
	statusUpdates *prometheus.CounterVec
	warnings      *prometheus.CounterVec
	emails        *prometheus.CounterVec
	retryBatch    *prometheus.HistogramVec
}

// NewShipments registers the collectors on reg. A nil registerer yields a
// no-op recorder.
func NewShipments(reg prometheus.Registerer) *Shipments {
	if reg == nil {
		return nil
	}
	m := &Shipments{
		statusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eurolink",
			Name:      "status_updates_total",
			Help:      "Shipment status updates by outcome.",
		}, []string{"outcome"}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eurolink",
			Name:      "status_update_warnings_total",
			Help:      "Non-fatal side-effect failures by warning code.",
		}, []string{"code"}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eurolink",
			Name:      "emails_total",
			Help:      "Email deliveries by kind and result.",
		}, []string{"kind", "result"}),
		retryBatch: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "eurolink",
			Name:      "email_retry_batch_seconds",
			Help:      "Duration of email retry batches.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
	}
	reg.MustRegister(m.statusUpdates, m.warnings, m.emails, m.retryBatch)
	return m
}

func (m *Shipments) StatusUpdate(outcome string) {
	if m == nil {
		return
	}
	m.statusUpdates.WithLabelValues(label(outcome)).Inc()
}

func (m *Shipments) Warning(code string) {
	if m == nil {
		return
	}
	m.warnings.WithLabelValues(label(code)).Inc()
}

func (m *Shipments) Email(kind, result string) {
	if m == nil {
		return
	}
	m.emails.WithLabelValues(label(kind), label(result)).Inc()
}

func (m *Shipments) RetryBatch(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.retryBatch.WithLabelValues(label(result)).Observe(d.Seconds())
}

func label(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
