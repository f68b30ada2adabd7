package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type FulfillmentMetrics struct {
	WebhookRejectedTotal       prometheus.CounterVec
	DuplicateEventsTotal       prometheus.Counter
	OrdersCreatedTotal         prometheus.Counter
	OrdersCompletedTotal       prometheus.Counter
	OrdersRefundedTotal        prometheus.Counter
	GenerationAttemptsTotal    prometheus.CounterVec
	GenerationFallbacksTotal   prometheus.Counter
	ValidationFailuresTotal    prometheus.CounterVec
	TicketsOpenedTotal         prometheus.CounterVec
	TicketsCompensatedTotal    prometheus.Counter
	CompensationDecisionsTotal prometheus.CounterVec
	DeliveryStageDuration      prometheus.HistogramVec
}

func NewFulfillmentMetrics() *FulfillmentMetrics {
	return &FulfillmentMetrics{
		WebhookRejectedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_rejected_total",
				Help: "Webhook events rejected before processing",
			},
			[]string{"cause"},
		),
		DuplicateEventsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "webhook_duplicate_events_total",
				Help: "Webhook redeliveries absorbed by the idempotency guard",
			},
		),
		OrdersCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "orders_created_total",
				Help: "Orders admitted for fulfillment",
			},
		),
		OrdersCompletedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "orders_completed_total",
				Help: "Orders delivered end to end",
			},
		),
		OrdersRefundedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "orders_refunded_total",
				Help: "Orders compensated by refund",
			},
		),
		GenerationAttemptsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "generation_attempts_total",
				Help: "Generation provider calls by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		GenerationFallbacksTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "generation_fallbacks_total",
				Help: "Switches from primary to secondary provider",
			},
		),
		ValidationFailuresTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "generation_validation_failures_total",
				Help: "Validation failures by pass (compliance, structural)",
			},
			[]string{"pass"},
		),
		TicketsOpenedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resolution_tickets_opened_total",
				Help: "Resolution tickets opened by issue kind",
			},
			[]string{"issue_kind"},
		),
		TicketsCompensatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "resolution_tickets_compensated_total",
				Help: "Tickets auto-compensated after SLA breach",
			},
		),
		CompensationDecisionsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "compensation_decisions_total",
				Help: "Abuse guard decisions (auto, manual_review, blocked)",
			},
			[]string{"decision"},
		),
		DeliveryStageDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "delivery_stage_duration_seconds",
				Help:    "Duration of render, store and notify stages",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
	}
}
