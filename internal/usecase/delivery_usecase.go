package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/docugen/fulfillment-service/internal/domain"
	"github.com/docugen/fulfillment-service/internal/infrastructure/metrics"
)

const (
	maxRenderRetries  = 1
	maxNotifyAttempts = 3
)

func notifyBackoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second // 2s, 4s, 8s
}

// DeliveryUsecase runs the three delivery stages. Each stage pairs its side
// effect with a persisted status write, so a crashed worker resumes from
// the order row rather than in-memory context.
type DeliveryUsecase interface {
	Deliver(ctx context.Context, order *domain.Order, plan *domain.GeneratedPlan) error
}

type DefaultDeliveryUsecase struct {
	OrderRepo domain.OrderRepository
	Renderer  domain.Renderer
	Store     domain.ArtifactStore
	Mailer    domain.Mailer
	TicketUc  TicketUsecase
	Metrics   *metrics.FulfillmentMetrics

	ObjectPrefix    string
	RecoveryBaseURL string
	SignedURLTTL    time.Duration

	// sleep is swapped in tests
	sleep func(time.Duration)
}

func NewDefaultDeliveryUsecase(
	orderRepo domain.OrderRepository,
	renderer domain.Renderer,
	store domain.ArtifactStore,
	mailer domain.Mailer,
	ticketUc TicketUsecase,
	m *metrics.FulfillmentMetrics,
	objectPrefix, recoveryBaseURL string,
	signedURLTTL time.Duration) *DefaultDeliveryUsecase {

	return &DefaultDeliveryUsecase{
		OrderRepo:       orderRepo,
		Renderer:        renderer,
		Store:           store,
		Mailer:          mailer,
		TicketUc:        ticketUc,
		Metrics:         m,
		ObjectPrefix:    objectPrefix,
		RecoveryBaseURL: recoveryBaseURL,
		SignedURLTTL:    signedURLTTL,
		sleep:           time.Sleep,
	}
}

func (uc *DefaultDeliveryUsecase) Deliver(ctx context.Context, order *domain.Order, plan *domain.GeneratedPlan) error {
	artifact, contentType, err := uc.render(ctx, order, plan)
	if err != nil {
		return uc.escalate(order, "render failed: "+err.Error())
	}
	if err := uc.OrderRepo.UpdateOrderStage(order.ID, domain.StageRendered); err != nil {
		return err
	}

	artifactRef := order.ArtifactRef
	if artifactRef == "" {
		artifactRef, err = uc.store(ctx, order, artifact, contentType)
		if err != nil {
			return uc.escalate(order, "store failed: "+err.Error())
		}
	}

	if err := uc.notify(ctx, order, artifact, contentType); err != nil {
		// The artifact is stored and retrievable via the recovery path
		// even though notification failed; only the notify stage
		// escalates.
		return uc.escalate(order, "notify failed: "+err.Error())
	}

	if err := uc.OrderRepo.MarkCompleted(order.ID, artifactRef, time.Now().UTC()); err != nil {
		return err
	}
	if uc.Metrics != nil {
		uc.Metrics.OrdersCompletedTotal.Inc()
	}
	return nil
}

func (uc *DefaultDeliveryUsecase) render(ctx context.Context, order *domain.Order, plan *domain.GeneratedPlan) ([]byte, string, error) {
	defer uc.observe("render", time.Now())

	var lastErr error
	for attempt := 0; attempt <= maxRenderRetries; attempt++ {
		artifact, contentType, err := uc.Renderer.Render(ctx, order, plan)
		if err == nil {
			return artifact, contentType, nil
		}
		lastErr = err
	}
	return nil, "", lastErr
}

func (uc *DefaultDeliveryUsecase) store(ctx context.Context, order *domain.Order, artifact []byte, contentType string) (string, error) {
	defer uc.observe("store", time.Now())

	objectName := fmt.Sprintf("%s/%s/plan.html", uc.ObjectPrefix, order.ID)
	artifactRef, err := uc.Store.Upload(ctx, objectName, artifact, contentType)
	if err != nil {
		return "", err
	}
	// Persist the permanent reference with the stage transition. A signed
	// URL would be dead long before the retention window ends.
	if err := uc.OrderRepo.SetArtifactRef(order.ID, artifactRef); err != nil {
		return "", err
	}
	order.ArtifactRef = artifactRef
	return artifactRef, nil
}

func (uc *DefaultDeliveryUsecase) notify(ctx context.Context, order *domain.Order, artifact []byte, contentType string) error {
	defer uc.observe("notify", time.Now())

	// Idempotence: a redelivered webhook or admin retry must not re-send.
	if order.NotifiedAt != nil {
		return nil
	}

	recoveryURL := fmt.Sprintf("%s/recovery/%s", uc.RecoveryBaseURL, order.RecoveryToken)

	var lastErr error
	for attempt := 1; attempt <= maxNotifyAttempts; attempt++ {
		if err := uc.Mailer.SendArtifact(ctx, order.Identity, artifact, contentType, recoveryURL); err != nil {
			lastErr = err
			slog.Warn("notification attempt failed",
				"transaction_id", order.TransactionID,
				"attempt", attempt,
				"error", err.Error(),
			)
			if attempt < maxNotifyAttempts {
				uc.sleep(notifyBackoff(attempt))
			}
			continue
		}
		return nil
	}
	return lastErr
}

func (uc *DefaultDeliveryUsecase) escalate(order *domain.Order, notes string) error {
	if _, err := uc.TicketUc.OpenTicket(order.TransactionID, order.NormalizedIdentity, domain.IssueDeliveryFailed, notes); err != nil {
		return err
	}
	return fmt.Errorf("delivery escalated for order %s: %s", order.ID, notes)
}

func (uc *DefaultDeliveryUsecase) observe(stage string, start time.Time) {
	if uc.Metrics != nil {
		uc.Metrics.DeliveryStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}
