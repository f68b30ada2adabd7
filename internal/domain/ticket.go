package domain

import "time"

type IssueKind string

const (
	IssueMissingInput       IssueKind = "MISSING_INPUT"
	IssueGenerationInvalid  IssueKind = "GENERATION_INVALID"
	IssueDeliveryFailed     IssueKind = "DELIVERY_FAILED"
	IssueManualCompensation IssueKind = "MANUAL_COMPENSATION_REQUIRED"
)

type TicketStatus string

const (
	TicketPending              TicketStatus = "PENDING"
	TicketInProgress           TicketStatus = "IN_PROGRESS"
	TicketResolved             TicketStatus = "RESOLVED"
	TicketEscalated            TicketStatus = "ESCALATED"
	TicketSLAMissedCompensated TicketStatus = "SLA_MISSED_COMPENSATED"
)

type ResolutionTicket struct {
	ID                 string
	TransactionID      string
	NormalizedIdentity string
	IssueKind          IssueKind
	Status             TicketStatus
	SLADeadline        time.Time
	CreatedAt          time.Time
	ResolvedAt         *time.Time
	Notes              string
}

type TicketRepository interface {
	CreateTicket(ticket *ResolutionTicket) error
	GetTicketByID(ticketID string) (*ResolutionTicket, error)
	UpdateTicketStatus(ticketID string, status TicketStatus) error
	ResolveTicket(ticketID string, notes string, resolvedAt time.Time) error
	// FindBreachedTickets returns tickets past their SLA deadline that are
	// still pending or in progress.
	FindBreachedTickets(now time.Time) ([]*ResolutionTicket, error)
	FindPendingTickets(page, limit int64) ([]*ResolutionTicket, int64, error)
}
