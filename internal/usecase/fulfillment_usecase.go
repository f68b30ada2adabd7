package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/docugen/fulfillment-service/internal/domain"
	"github.com/docugen/fulfillment-service/internal/infrastructure/kafka"
	"github.com/docugen/fulfillment-service/internal/infrastructure/metrics"
	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
)

type AdmitOutcome string

const (
	OutcomeAdmitted  AdmitOutcome = "ADMITTED"
	OutcomeDuplicate AdmitOutcome = "DUPLICATE"
)

// PaymentEvent is the verified, parsed webhook payload.
type PaymentEvent struct {
	TransactionID string
	Identity      string
	PaymentMethod string
	Refundable    bool
}

type FulfillmentUsecase interface {
	HandlePaymentSucceeded(ctx context.Context, event PaymentEvent) (AdmitOutcome, error)
	HandleChargeDisputed(ctx context.Context, transactionID string) error
	HandleRefundSucceeded(ctx context.Context, transactionID string) error
	Fulfill(ctx context.Context, orderID string) error
	Reprocess(orderID string) error
}

type DefaultFulfillmentUsecase struct {
	OrderRepo    domain.OrderRepository
	BlockRepo    domain.BlockRepository
	Locker       domain.IdentityLocker
	ReconcilerUc ReconcilerUsecase
	GenerationUc GenerationUsecase
	DeliveryUc   DeliveryUsecase
	Publisher    domain.EventPublisher
	Topic        string
	Metrics      *metrics.FulfillmentMetrics

	// Async controls whether admission spawns the pipeline in a goroutine
	// (production) or runs it inline (tests).
	Async bool
}

func NewDefaultFulfillmentUsecase(
	orderRepo domain.OrderRepository,
	blockRepo domain.BlockRepository,
	locker domain.IdentityLocker,
	reconcilerUc ReconcilerUsecase,
	generationUc GenerationUsecase,
	deliveryUc DeliveryUsecase,
	publisher domain.EventPublisher,
	topic string,
	m *metrics.FulfillmentMetrics) *DefaultFulfillmentUsecase {

	return &DefaultFulfillmentUsecase{
		OrderRepo:    orderRepo,
		BlockRepo:    blockRepo,
		Locker:       locker,
		ReconcilerUc: reconcilerUc,
		GenerationUc: generationUc,
		DeliveryUc:   deliveryUc,
		Publisher:    publisher,
		Topic:        topic,
		Metrics:      m,
		Async:        true,
	}
}

// HandlePaymentSucceeded is the idempotency boundary for the at-least-once
// webhook channel. Admission is a single insert against the unique
// transaction_id constraint; of N concurrent deliveries exactly one is
// admitted and the rest report duplicate.
func (uc *DefaultFulfillmentUsecase) HandlePaymentSucceeded(ctx context.Context, event PaymentEvent) (AdmitOutcome, error) {
	tokenGenerator, err := nanoid.Standard(21)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:                 uuid.New().String(),
		TransactionID:      event.TransactionID,
		Identity:           event.Identity,
		NormalizedIdentity: domain.NormalizeIdentity(event.Identity),
		Status:             domain.StatusProcessing,
		Stage:              domain.StageReceived,
		PaymentMethod:      event.PaymentMethod,
		Refundable:         event.Refundable,
		RecoveryToken:      tokenGenerator(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := uc.OrderRepo.CreateOrder(order); err != nil {
		if errors.Is(err, domain.ErrDuplicateTransaction) {
			if uc.Metrics != nil {
				uc.Metrics.DuplicateEventsTotal.Inc()
			}
			slog.Info("duplicate webhook absorbed", "transaction_id", event.TransactionID)
			return OutcomeDuplicate, nil
		}
		return "", fmt.Errorf("failed to admit order: %w", err)
	}

	if uc.Metrics != nil {
		uc.Metrics.OrdersCreatedTotal.Inc()
	}
	if uc.Publisher != nil {
		kafka.PublishFulfillmentEvent(uc.Publisher, uc.Topic, kafka.FulfillmentEvent{
			EventType:          kafka.EventOrderCreated,
			TransactionID:      order.TransactionID,
			NormalizedIdentity: order.NormalizedIdentity,
			Status:             string(order.Status),
		})
	}

	if uc.Async {
		go func() {
			if err := uc.Fulfill(context.Background(), order.ID); err != nil {
				slog.Error("fulfillment pipeline failed",
					"transaction_id", order.TransactionID,
					"error", err.Error(),
				)
			}
		}()
	} else {
		if err := uc.Fulfill(ctx, order.ID); err != nil {
			slog.Error("fulfillment pipeline failed",
				"transaction_id", order.TransactionID,
				"error", err.Error(),
			)
		}
	}

	return OutcomeAdmitted, nil
}

// Fulfill drives the pipeline from the order's persisted stage. Failures
// leave a resolution ticket behind and keep the order in PROCESSING for the
// SLA monitor; the checkout lock is released either way.
func (uc *DefaultFulfillmentUsecase) Fulfill(ctx context.Context, orderID string) error {
	order, err := uc.OrderRepo.GetOrderByID(orderID)
	if err != nil {
		return err
	}
	defer uc.Locker.Release(ctx, order.NormalizedIdentity)

	if order.Status != domain.StatusProcessing {
		return nil
	}

	if order.TargetParamsJSON == "" {
		input, err := uc.ReconcilerUc.AwaitInput(ctx, order.TransactionID, order.NormalizedIdentity)
		if err != nil {
			return err
		}
		order.TargetParamsJSON = input.ParamsJSON
		if err := uc.OrderRepo.SetInputReady(order.ID, input.ParamsJSON); err != nil {
			return err
		}
	}

	var params domain.TargetParams
	if err := json.Unmarshal([]byte(order.TargetParamsJSON), &params); err != nil {
		return fmt.Errorf("corrupt target parameters for order %s: %w", order.ID, err)
	}

	plan, err := uc.GenerationUc.Generate(ctx, order.TransactionID, order.NormalizedIdentity, params)
	if err != nil {
		return err
	}
	if err := uc.OrderRepo.UpdateOrderStage(order.ID, domain.StageGenerated); err != nil {
		return err
	}

	if err := uc.DeliveryUc.Deliver(ctx, order, plan); err != nil {
		return err
	}

	if uc.Publisher != nil {
		kafka.PublishFulfillmentEvent(uc.Publisher, uc.Topic, kafka.FulfillmentEvent{
			EventType:          kafka.EventOrderCompleted,
			TransactionID:      order.TransactionID,
			NormalizedIdentity: order.NormalizedIdentity,
			Status:             string(domain.StatusCompleted),
		})
	}
	return nil
}

// Reprocess re-drives a stuck order from its persisted state, for the admin
// force-regeneration action. The plan itself is not persisted, so any order
// short of NOTIFIED regenerates; a completed order is left alone.
func (uc *DefaultFulfillmentUsecase) Reprocess(orderID string) error {
	order, err := uc.OrderRepo.GetOrderByID(orderID)
	if err != nil {
		return err
	}
	if order.Status != domain.StatusProcessing {
		return fmt.Errorf("order %s is %s, nothing to reprocess", orderID, order.Status)
	}
	return uc.Fulfill(context.Background(), orderID)
}

// HandleChargeDisputed marks the order refunded and blocks the identity
// from new checkouts for 30 days.
func (uc *DefaultFulfillmentUsecase) HandleChargeDisputed(ctx context.Context, transactionID string) error {
	order, err := uc.OrderRepo.GetOrderByTransactionID(transactionID)
	if err != nil {
		return err
	}

	if err := uc.OrderRepo.MarkRefunded(order.ID); err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := uc.BlockRepo.UpsertBlock(&domain.BlockEntry{
		NormalizedIdentity: order.NormalizedIdentity,
		Reason:             domain.BlockReasonChargeback,
		ExpiresAt:          now.Add(30 * 24 * time.Hour),
		CreatedAt:          now,
	}); err != nil {
		return err
	}

	if uc.Metrics != nil {
		uc.Metrics.OrdersRefundedTotal.Inc()
	}
	uc.publishRefunded(order)
	return nil
}

// HandleRefundSucceeded records a refund issued on the provider side (e.g.
// by support through the provider dashboard).
func (uc *DefaultFulfillmentUsecase) HandleRefundSucceeded(ctx context.Context, transactionID string) error {
	order, err := uc.OrderRepo.GetOrderByTransactionID(transactionID)
	if err != nil {
		return err
	}
	if order.Status == domain.StatusRefunded {
		return nil
	}
	if err := uc.OrderRepo.MarkRefunded(order.ID); err != nil {
		return err
	}
	if uc.Metrics != nil {
		uc.Metrics.OrdersRefundedTotal.Inc()
	}
	uc.publishRefunded(order)
	return nil
}

func (uc *DefaultFulfillmentUsecase) publishRefunded(order *domain.Order) {
	if uc.Publisher == nil {
		return
	}
	kafka.PublishFulfillmentEvent(uc.Publisher, uc.Topic, kafka.FulfillmentEvent{
		EventType:          kafka.EventOrderRefunded,
		TransactionID:      order.TransactionID,
		NormalizedIdentity: order.NormalizedIdentity,
		Status:             string(domain.StatusRefunded),
	})
}
