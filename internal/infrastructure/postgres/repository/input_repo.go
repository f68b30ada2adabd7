package repository

import (
	"errors"

	"github.com/docugen/fulfillment-service/internal/domain"
	"github.com/docugen/fulfillment-service/internal/infrastructure/postgres/mappers"
	"github.com/docugen/fulfillment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultInputRepository struct {
	DB *gorm.DB
}

func NewDefaultInputRepository(db *gorm.DB) *DefaultInputRepository {
	return &DefaultInputRepository{DB: db}
}

func (r *DefaultInputRepository) SaveInput(input *domain.QuizInput) error {
	return r.DB.Create(mappers.ToGORMInput(input)).Error
}

// GetInputByIdentity returns the newest record: a returning customer may
// have stale submissions under the same identity.
func (r *DefaultInputRepository) GetInputByIdentity(normalizedIdentity string) (*domain.QuizInput, error) {
	var input models.QuizInputModel
	err := r.DB.
		Where("normalized_identity = ?", normalizedIdentity).
		Order("created_at DESC").
		First(&input).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInputNotFound
		}
		return nil, err
	}
	return mappers.ToDomainInput(&input), nil
}
