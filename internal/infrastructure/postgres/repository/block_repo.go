package repository

import (
	"fmt"
	"time"

	"github.com/docugen/fulfillment-service/internal/domain"
	"github.com/docugen/fulfillment-service/internal/infrastructure/postgres/mappers"
	"github.com/docugen/fulfillment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultBlockRepository struct {
	DB *gorm.DB
}

func NewDefaultBlockRepository(db *gorm.DB) *DefaultBlockRepository {
	return &DefaultBlockRepository{DB: db}
}

// UpsertBlock extends an existing block rather than failing on the primary
// key: a repeat offender gets a fresh expiry.
func (r *DefaultBlockRepository) UpsertBlock(block *domain.BlockEntry) error {
	err := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "normalized_identity"}},
		DoUpdates: clause.AssignmentColumns([]string{"reason", "expires_at"}),
	}).Create(mappers.ToGORMBlock(block)).Error
	if err != nil {
		return fmt.Errorf("failed to upsert block entry: %w", err)
	}
	return nil
}

func (r *DefaultBlockRepository) IsBlocked(normalizedIdentity string, now time.Time) (bool, error) {
	var total int64
	err := r.DB.Model(&models.BlockEntryModel{}).
		Where("normalized_identity = ? AND expires_at > ?", normalizedIdentity, now).
		Count(&total).Error
	if err != nil {
		return false, err
	}
	return total > 0, nil
}

func (r *DefaultBlockRepository) DeleteExpired(now time.Time) error {
	return r.DB.
		Where("expires_at <= ?", now).
		Delete(&models.BlockEntryModel{}).Error
}
