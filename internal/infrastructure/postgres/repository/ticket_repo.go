package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/docugen/fulfillment-service/internal/domain"
	"github.com/docugen/fulfillment-service/internal/infrastructure/postgres/mappers"
	"github.com/docugen/fulfillment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultTicketRepository struct {
	DB *gorm.DB
}

func NewDefaultTicketRepository(db *gorm.DB) *DefaultTicketRepository {
	return &DefaultTicketRepository{DB: db}
}

func (r *DefaultTicketRepository) CreateTicket(ticket *domain.ResolutionTicket) error {
	if err := r.DB.Create(mappers.ToGORMTicket(ticket)).Error; err != nil {
		return fmt.Errorf("failed to create resolution ticket: %w", err)
	}
	return nil
}

func (r *DefaultTicketRepository) GetTicketByID(ticketID string) (*domain.ResolutionTicket, error) {
	var ticket models.ResolutionTicketModel
	if err := r.DB.First(&ticket, "id = ?", ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}
	return mappers.ToDomainTicket(&ticket), nil
}

func (r *DefaultTicketRepository) UpdateTicketStatus(ticketID string, status domain.TicketStatus) error {
	return r.DB.Model(&models.ResolutionTicketModel{}).
		Where("id = ?", ticketID).
		Update("status", status).Error
}

func (r *DefaultTicketRepository) ResolveTicket(ticketID string, notes string, resolvedAt time.Time) error {
	return r.DB.Model(&models.ResolutionTicketModel{}).
		Where("id = ?", ticketID).
		Updates(map[string]interface{}{
			"status":      domain.TicketResolved,
			"notes":       notes,
			"resolved_at": resolvedAt,
		}).Error
}

func (r *DefaultTicketRepository) FindBreachedTickets(now time.Time) ([]*domain.ResolutionTicket, error) {
	var ticketModels []models.ResolutionTicketModel
	err := r.DB.
		Where("status IN (?) AND sla_deadline < ?", []domain.TicketStatus{domain.TicketPending, domain.TicketInProgress}, now).
		Find(&ticketModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find breached tickets: %w", err)
	}

	tickets := make([]*domain.ResolutionTicket, len(ticketModels))
	for i, ticketModel := range ticketModels {
		tickets[i] = mappers.ToDomainTicket(&ticketModel)
	}
	return tickets, nil
}

func (r *DefaultTicketRepository) FindPendingTickets(page, limit int64) ([]*domain.ResolutionTicket, int64, error) {
	var ticketModels []models.ResolutionTicketModel
	var total int64

	baseQuery := r.DB.Model(&models.ResolutionTicketModel{}).
		Where("status IN (?)", []domain.TicketStatus{domain.TicketPending, domain.TicketInProgress})

	if err := baseQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tickets: %w", err)
	}

	offset := (page - 1) * limit
	err := baseQuery.
		Order("sla_deadline ASC").
		Offset(int(offset)).
		Limit(int(limit)).
		Find(&ticketModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find tickets: %w", err)
	}

	tickets := make([]*domain.ResolutionTicket, len(ticketModels))
	for i, ticketModel := range ticketModels {
		tickets[i] = mappers.ToDomainTicket(&ticketModel)
	}
	return tickets, total, nil
}
