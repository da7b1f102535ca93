package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics - счетчики реестра. Все методы безопасны для nil-получателя:
// сервисы в тестах работают без метрик.
type Metrics struct {
	IncidentsCreated    *prometheus.CounterVec
	StatusTransitions   *prometheus.CounterVec
	RewardsCredited     prometheus.Counter
	FundOperations      *prometheus.CounterVec
	CASRetries          *prometheus.CounterVec
	LedgerConfirmations *prometheus.HistogramVec
	ProjectionSkipped   prometheus.Counter
	WebhookDeliveries   *prometheus.CounterVec
}

// New регистрирует метрики в reg (nil - в prometheus.DefaultRegisterer)
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		IncidentsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "firechain_incidents_created_total",
			Help: "Confirmed incident reports by severity",
		}, []string{"severity"}),

		StatusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "firechain_status_transitions_total",
			Help: "Applied incident status transitions",
		}, []string{"from", "to"}),

		RewardsCredited: factory.NewCounter(prometheus.CounterOpts{
			Name: "firechain_rewards_credited_total",
			Help: "Reporter rewards credited",
		}),

		FundOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "firechain_fund_operations_total",
			Help: "Emergency fund operations by kind and result",
		}, []string{"operation", "result"}), // operation: request, approve, disburse, deposit

		CASRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "firechain_cas_retries_total",
			Help: "Compare-and-set retries after a version conflict",
		}, []string{"operation"}),

		LedgerConfirmations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "firechain_ledger_confirmation_duration_seconds",
			Help:    "Time from submission to ledger outcome",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"outcome"}),

		ProjectionSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "firechain_projection_skipped_total",
			Help: "Incidents skipped by range listing because they could not be read",
		}),

		WebhookDeliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "firechain_webhook_deliveries_total",
			Help: "Webhook delivery attempts by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) IncidentCreated(severity string) {
	if m != nil {
		m.IncidentsCreated.WithLabelValues(severity).Inc()
	}
}

func (m *Metrics) StatusTransition(from, to string) {
	if m != nil {
		m.StatusTransitions.WithLabelValues(from, to).Inc()
	}
}

func (m *Metrics) RewardCredited() {
	if m != nil {
		m.RewardsCredited.Inc()
	}
}

func (m *Metrics) FundOperation(operation, result string) {
	if m != nil {
		m.FundOperations.WithLabelValues(operation, result).Inc()
	}
}

func (m *Metrics) CASRetry(operation string) {
	if m != nil {
		m.CASRetries.WithLabelValues(operation).Inc()
	}
}

// ObserveConfirmation реализует ledger.Observer
func (m *Metrics) ObserveConfirmation(outcome string, d time.Duration) {
	if m != nil {
		m.LedgerConfirmations.WithLabelValues(outcome).Observe(d.Seconds())
	}
}

func (m *Metrics) ProjectionSkip() {
	if m != nil {
		m.ProjectionSkipped.Inc()
	}
}

func (m *Metrics) WebhookDelivery(result string) {
	if m != nil {
		m.WebhookDeliveries.WithLabelValues(result).Inc()
	}
}
