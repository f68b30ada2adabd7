package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/docugen/fulfillment-service/internal/domain"
	"github.com/docugen/fulfillment-service/internal/infrastructure/metrics"
)

type CompensationDecision string

const (
	CompensationAuto         CompensationDecision = "AUTO"
	CompensationManualReview CompensationDecision = "MANUAL_REVIEW"
	CompensationBlocked      CompensationDecision = "BLOCKED"
)

const (
	abuseLookback  = 90 * 24 * time.Hour
	blockDuration  = 30 * 24 * time.Hour
	manualReviewAt = 2
	blockedAt      = 3
)

type AbuseUsecase interface {
	AuthorizeCompensation(ctx context.Context, order *domain.Order) (CompensationDecision, error)
	RecordCompensation(ctx context.Context, normalizedIdentity string) error
}

type DefaultAbuseUsecase struct {
	Counter   domain.CompensationCounter
	BlockRepo domain.BlockRepository
	Metrics   *metrics.FulfillmentMetrics
}

func NewDefaultAbuseUsecase(
	counter domain.CompensationCounter,
	blockRepo domain.BlockRepository,
	m *metrics.FulfillmentMetrics) *DefaultAbuseUsecase {

	return &DefaultAbuseUsecase{
		Counter:   counter,
		BlockRepo: blockRepo,
		Metrics:   m,
	}
}

// AuthorizeCompensation decides how a refund for this order may be issued,
// based on prior compensations for the identity in the trailing 90 days.
func (uc *DefaultAbuseUsecase) AuthorizeCompensation(ctx context.Context, order *domain.Order) (CompensationDecision, error) {
	decision, err := uc.decide(ctx, order)
	if err != nil {
		return "", err
	}
	if uc.Metrics != nil {
		uc.Metrics.CompensationDecisionsTotal.WithLabelValues(string(decision)).Inc()
	}
	return decision, nil
}

func (uc *DefaultAbuseUsecase) decide(ctx context.Context, order *domain.Order) (CompensationDecision, error) {
	prior, err := uc.Counter.CountSince(ctx, order.NormalizedIdentity, time.Now().Add(-abuseLookback))
	if err != nil {
		return "", err
	}

	if prior >= blockedAt {
		now := time.Now().UTC()
		err := uc.BlockRepo.UpsertBlock(&domain.BlockEntry{
			NormalizedIdentity: order.NormalizedIdentity,
			Reason:             domain.BlockReasonAbuseThreshold,
			ExpiresAt:          now.Add(blockDuration),
			CreatedAt:          now,
		})
		if err != nil {
			return "", err
		}
		slog.Warn("identity blocked for refund abuse",
			"normalized_identity", order.NormalizedIdentity,
			"prior_compensations", prior,
		)
		return CompensationBlocked, nil
	}

	// A non-refundable payment method forces human review regardless of
	// history.
	if !order.Refundable {
		return CompensationManualReview, nil
	}

	if prior >= manualReviewAt {
		return CompensationManualReview, nil
	}
	return CompensationAuto, nil
}

func (uc *DefaultAbuseUsecase) RecordCompensation(ctx context.Context, normalizedIdentity string) error {
	return uc.Counter.RecordCompensation(ctx, normalizedIdentity, time.Now().UTC())
}
