package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/docugen/fulfillment-service/internal/domain"
	"github.com/docugen/fulfillment-service/internal/infrastructure/metrics"
)

// SLAUsecase is the recurring sweep: any ticket past its deadline and still
// open triggers compensation through the abuse guard.
type SLAUsecase interface {
	CompensateBreachedTickets(ctx context.Context) error
	ForceCompensate(ctx context.Context, ticketID string) error
}

type DefaultSLAUsecase struct {
	TicketRepo   domain.TicketRepository
	OrderRepo    domain.OrderRepository
	RefundClient domain.RefundClient
	AbuseUc      AbuseUsecase
	TicketUc     TicketUsecase
	Metrics      *metrics.FulfillmentMetrics
}

func NewDefaultSLAUsecase(
	ticketRepo domain.TicketRepository,
	orderRepo domain.OrderRepository,
	refundClient domain.RefundClient,
	abuseUc AbuseUsecase,
	ticketUc TicketUsecase,
	m *metrics.FulfillmentMetrics) *DefaultSLAUsecase {

	return &DefaultSLAUsecase{
		TicketRepo:   ticketRepo,
		OrderRepo:    orderRepo,
		RefundClient: refundClient,
		AbuseUc:      abuseUc,
		TicketUc:     ticketUc,
		Metrics:      m,
	}
}

func (uc *DefaultSLAUsecase) CompensateBreachedTickets(ctx context.Context) error {
	tickets, err := uc.TicketRepo.FindBreachedTickets(time.Now().UTC())
	if err != nil {
		return err
	}

	for _, ticket := range tickets {
		if err := uc.compensate(ctx, ticket); err != nil {
			slog.Error("failed to compensate breached ticket",
				"ticket_id", ticket.ID,
				"transaction_id", ticket.TransactionID,
				"error", err.Error(),
			)
			// Keep sweeping; this ticket stays open for the next pass.
		}
	}
	return nil
}

func (uc *DefaultSLAUsecase) compensate(ctx context.Context, ticket *domain.ResolutionTicket) error {
	// A ticket escalated to manual compensation never auto-refunds again;
	// a human owns it now.
	if ticket.IssueKind == domain.IssueManualCompensation {
		return nil
	}

	order, err := uc.OrderRepo.GetOrderByTransactionID(ticket.TransactionID)
	if err != nil {
		return err
	}
	if order.Status == domain.StatusRefunded {
		return uc.TicketRepo.UpdateTicketStatus(ticket.ID, domain.TicketSLAMissedCompensated)
	}

	decision, err := uc.AbuseUc.AuthorizeCompensation(ctx, order)
	if err != nil {
		return err
	}

	switch decision {
	case CompensationAuto:
		return uc.refund(ctx, ticket, order)

	case CompensationManualReview:
		if _, err := uc.TicketUc.OpenTicket(order.TransactionID, order.NormalizedIdentity, domain.IssueManualCompensation, "auto-compensation requires human approval"); err != nil {
			return err
		}
		return uc.TicketRepo.UpdateTicketStatus(ticket.ID, domain.TicketEscalated)

	case CompensationBlocked:
		// The abuse guard already created the block entry; the order's
		// outcome is unchanged, only future checkouts are rejected.
		return uc.TicketRepo.UpdateTicketStatus(ticket.ID, domain.TicketEscalated)
	}
	return fmt.Errorf("unknown compensation decision %q", decision)
}

func (uc *DefaultSLAUsecase) refund(ctx context.Context, ticket *domain.ResolutionTicket, order *domain.Order) error {
	if err := uc.RefundClient.Refund(ctx, order.TransactionID); err != nil {
		if errors.Is(err, domain.ErrRefundUnsupported) {
			// The payment method turned out to be non-refundable after
			// all; hand it to a human.
			if _, terr := uc.TicketUc.OpenTicket(order.TransactionID, order.NormalizedIdentity, domain.IssueManualCompensation, "refund API rejected payment method"); terr != nil {
				return terr
			}
			return uc.TicketRepo.UpdateTicketStatus(ticket.ID, domain.TicketEscalated)
		}
		return err
	}

	if err := uc.OrderRepo.MarkRefunded(order.ID); err != nil {
		return err
	}
	if err := uc.AbuseUc.RecordCompensation(ctx, order.NormalizedIdentity); err != nil {
		return err
	}
	if err := uc.TicketRepo.UpdateTicketStatus(ticket.ID, domain.TicketSLAMissedCompensated); err != nil {
		return err
	}

	slog.Info("sla breach compensated",
		"ticket_id", ticket.ID,
		"transaction_id", order.TransactionID,
	)
	if uc.Metrics != nil {
		uc.Metrics.TicketsCompensatedTotal.Inc()
		uc.Metrics.OrdersRefundedTotal.Inc()
	}
	return nil
}

// ForceCompensate is the admin override: refund directly, bypassing the
// abuse guard, and resolve the ticket.
func (uc *DefaultSLAUsecase) ForceCompensate(ctx context.Context, ticketID string) error {
	ticket, err := uc.TicketRepo.GetTicketByID(ticketID)
	if err != nil {
		return err
	}
	order, err := uc.OrderRepo.GetOrderByTransactionID(ticket.TransactionID)
	if err != nil {
		return err
	}

	if order.Status != domain.StatusRefunded {
		if err := uc.RefundClient.Refund(ctx, order.TransactionID); err != nil {
			return err
		}
		if err := uc.OrderRepo.MarkRefunded(order.ID); err != nil {
			return err
		}
		if err := uc.AbuseUc.RecordCompensation(ctx, order.NormalizedIdentity); err != nil {
			return err
		}
		if uc.Metrics != nil {
			uc.Metrics.OrdersRefundedTotal.Inc()
		}
	}

	return uc.TicketRepo.ResolveTicket(ticketID, "compensated manually", time.Now().UTC())
}
