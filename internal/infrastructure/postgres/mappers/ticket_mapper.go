package mappers

import (
	"github.com/docugen/fulfillment-service/internal/domain"
	"github.com/docugen/fulfillment-service/internal/infrastructure/postgres/models"
)

func ToGORMTicket(ticket *domain.ResolutionTicket) *models.ResolutionTicketModel {
	return &models.ResolutionTicketModel{
		ID:                 ticket.ID,
		TransactionID:      ticket.TransactionID,
		NormalizedIdentity: ticket.NormalizedIdentity,
		IssueKind:          ticket.IssueKind,
		Status:             ticket.Status,
		SLADeadline:        ticket.SLADeadline,
		CreatedAt:          ticket.CreatedAt,
		ResolvedAt:         ticket.ResolvedAt,
		Notes:              ticket.Notes,
	}
}

func ToDomainTicket(model *models.ResolutionTicketModel) *domain.ResolutionTicket {
	return &domain.ResolutionTicket{
		ID:                 model.ID,
		TransactionID:      model.TransactionID,
		NormalizedIdentity: model.NormalizedIdentity,
		IssueKind:          model.IssueKind,
		Status:             model.Status,
		SLADeadline:        model.SLADeadline,
		CreatedAt:          model.CreatedAt,
		ResolvedAt:         model.ResolvedAt,
		Notes:              model.Notes,
	}
}
