package mappers

import (
	"github.com/docugen/fulfillment-service/internal/domain"
	"github.com/docugen/fulfillment-service/internal/infrastructure/postgres/models"
)

func ToGORMInput(input *domain.QuizInput) *models.QuizInputModel {
	return &models.QuizInputModel{
		ID:                 input.ID,
		NormalizedIdentity: input.NormalizedIdentity,
		Params:             input.ParamsJSON,
		CreatedAt:          input.CreatedAt,
	}
}

func ToDomainInput(model *models.QuizInputModel) *domain.QuizInput {
	return &domain.QuizInput{
		ID:                 model.ID,
		NormalizedIdentity: model.NormalizedIdentity,
		ParamsJSON:         model.Params,
		CreatedAt:          model.CreatedAt,
	}
}
