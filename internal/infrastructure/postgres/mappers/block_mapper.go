package mappers

import (
	"github.com/docugen/fulfillment-service/internal/domain"
	"github.com/docugen/fulfillment-service/internal/infrastructure/postgres/models"
)

func ToGORMBlock(block *domain.BlockEntry) *models.BlockEntryModel {
	return &models.BlockEntryModel{
		NormalizedIdentity: block.NormalizedIdentity,
		Reason:             block.Reason,
		ExpiresAt:          block.ExpiresAt,
		CreatedAt:          block.CreatedAt,
	}
}

func ToDomainBlock(model *models.BlockEntryModel) *domain.BlockEntry {
	return &domain.BlockEntry{
		NormalizedIdentity: model.NormalizedIdentity,
		Reason:             model.Reason,
		ExpiresAt:          model.ExpiresAt,
		CreatedAt:          model.CreatedAt,
	}
}
