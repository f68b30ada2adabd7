package models

import (
	"time"

	"github.com/docugen/fulfillment-service/internal/domain"
)

type ResolutionTicketModel struct {
	ID                 string              `gorm:"primaryKey"`
	TransactionID      string              `gorm:"index:idx_tickets_transaction_id;not null"`
	NormalizedIdentity string              `gorm:"index:idx_tickets_normalized_identity;not null"`
	IssueKind          domain.IssueKind    `gorm:"not null"`
	Status             domain.TicketStatus `gorm:"index:idx_tickets_status_deadline;not null"`
	SLADeadline        time.Time           `gorm:"index:idx_tickets_status_deadline;not null"`
	CreatedAt          time.Time
	ResolvedAt         *time.Time
	Notes              string
}
