package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	MessagesReceived   prometheus.Counter
	DirectivesExecuted *prometheus.CounterVec
	NotificationsSent  *prometheus.CounterVec
	EscalationsTotal   prometheus.Counter
	RemindersFired     prometheus.Counter
	ObligationStates   *prometheus.CounterVec
	InvariantWarnings  prometheus.Counter
	OracleLatency      prometheus.Histogram
	RequestLatency     *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		MessagesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "asistente_messages_received_total",
			Help: "Total inbound subject messages processed",
		}),
		DirectivesExecuted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "asistente_directives_executed_total",
			Help: "Directives executed by kind and result",
		}, []string{"kind", "result"}),
		NotificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "asistente_notifications_sent_total",
			Help: "Outbound notification attempts by status",
		}, []string{"status"}),
		EscalationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "asistente_escalations_total",
			Help: "Obligation instances escalated to the caregiver chain",
		}),
		RemindersFired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "asistente_reminders_fired_total",
			Help: "One-shot reminders dispatched",
		}),
		ObligationStates: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "asistente_obligation_transitions_total",
			Help: "Obligation state-machine transitions by target state",
		}, []string{"to"}),
		InvariantWarnings: promauto.NewCounter(prometheus.CounterOpts{
			Name: "asistente_invariant_warnings_total",
			Help: "State-invariant violations detected and logged",
		}),
		OracleLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "asistente_oracle_latency_seconds",
			Help:    "Conversation oracle round-trip latency",
			Buckets: prometheus.DefBuckets,
		}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "asistente_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// ObserveOracleLatency records one oracle round trip.
func (m *Metrics) ObserveOracleLatency(d time.Duration) {
	m.OracleLatency.Observe(d.Seconds())
}

// IncDirective records a directive execution outcome ("ok" or "error").
func (m *Metrics) IncDirective(kind, result string) {
	m.DirectivesExecuted.WithLabelValues(kind, result).Inc()
}

// IncNotification records an outbound send attempt ("ok" or "error").
func (m *Metrics) IncNotification(status string) {
	m.NotificationsSent.WithLabelValues(status).Inc()
}

// IncTransition records an obligation transition into the given state.
func (m *Metrics) IncTransition(to string) {
	m.ObligationStates.WithLabelValues(to).Inc()
}
