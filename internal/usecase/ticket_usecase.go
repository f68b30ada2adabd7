package usecase

import (
	"log/slog"
	"time"

	"github.com/docugen/fulfillment-service/internal/domain"
	"github.com/docugen/fulfillment-service/internal/infrastructure/kafka"
	"github.com/docugen/fulfillment-service/internal/infrastructure/metrics"
	"github.com/jaevor/go-nanoid"
)

// PendingTicket is a pending ticket plus its remaining time before the SLA
// deadline, for the admin surface.
type PendingTicket struct {
	Ticket       *domain.ResolutionTicket
	TimeToBreach time.Duration
}

type TicketUsecase interface {
	OpenTicket(transactionID, normalizedIdentity string, kind domain.IssueKind, notes string) (*domain.ResolutionTicket, error)
	GetTicketByID(ticketID string) (*domain.ResolutionTicket, error)
	ResolveTicket(ticketID, notes string) error
	ListPendingTickets(page, limit int64) ([]*PendingTicket, int64, error)
}

type DefaultTicketUsecase struct {
	TicketRepo domain.TicketRepository
	Publisher  domain.EventPublisher
	Topic      string
	SLAWindow  time.Duration
	Metrics    *metrics.FulfillmentMetrics
}

func NewDefaultTicketUsecase(
	ticketRepo domain.TicketRepository,
	publisher domain.EventPublisher,
	topic string,
	slaWindow time.Duration,
	m *metrics.FulfillmentMetrics) *DefaultTicketUsecase {

	return &DefaultTicketUsecase{
		TicketRepo: ticketRepo,
		Publisher:  publisher,
		Topic:      topic,
		SLAWindow:  slaWindow,
		Metrics:    m,
	}
}

func (uc *DefaultTicketUsecase) OpenTicket(transactionID, normalizedIdentity string, kind domain.IssueKind, notes string) (*domain.ResolutionTicket, error) {
	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ticket := &domain.ResolutionTicket{
		ID:                 idGenerator(),
		TransactionID:      transactionID,
		NormalizedIdentity: normalizedIdentity,
		IssueKind:          kind,
		Status:             domain.TicketPending,
		SLADeadline:        now.Add(uc.SLAWindow),
		CreatedAt:          now,
		Notes:              notes,
	}

	if err := uc.TicketRepo.CreateTicket(ticket); err != nil {
		return nil, err
	}

	slog.Warn("resolution ticket opened",
		"ticket_id", ticket.ID,
		"transaction_id", transactionID,
		"issue_kind", string(kind),
		"sla_deadline", ticket.SLADeadline,
	)
	if uc.Metrics != nil {
		uc.Metrics.TicketsOpenedTotal.WithLabelValues(string(kind)).Inc()
	}
	if uc.Publisher != nil {
		kafka.PublishFulfillmentEvent(uc.Publisher, uc.Topic, kafka.FulfillmentEvent{
			EventType:          kafka.EventTicketOpened,
			TransactionID:      transactionID,
			NormalizedIdentity: normalizedIdentity,
			TicketID:           ticket.ID,
			IssueKind:          string(kind),
		})
	}

	return ticket, nil
}

func (uc *DefaultTicketUsecase) GetTicketByID(ticketID string) (*domain.ResolutionTicket, error) {
	return uc.TicketRepo.GetTicketByID(ticketID)
}

func (uc *DefaultTicketUsecase) ResolveTicket(ticketID, notes string) error {
	return uc.TicketRepo.ResolveTicket(ticketID, notes, time.Now().UTC())
}

func (uc *DefaultTicketUsecase) ListPendingTickets(page, limit int64) ([]*PendingTicket, int64, error) {
	tickets, total, err := uc.TicketRepo.FindPendingTickets(page, limit)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now().UTC()
	pending := make([]*PendingTicket, len(tickets))
	for i, ticket := range tickets {
		pending[i] = &PendingTicket{
			Ticket:       ticket,
			TimeToBreach: ticket.SLADeadline.Sub(now),
		}
	}
	return pending, total, nil
}
