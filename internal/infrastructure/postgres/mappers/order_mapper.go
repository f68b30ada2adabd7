package mappers

import (
	"github.com/docugen/fulfillment-service/internal/domain"
	"github.com/docugen/fulfillment-service/internal/infrastructure/postgres/models"
)

func ToGORMOrder(order *domain.Order) *models.OrderModel {
	return &models.OrderModel{
		ID:                 order.ID,
		TransactionID:      order.TransactionID,
		Identity:           order.Identity,
		NormalizedIdentity: order.NormalizedIdentity,
		Status:             order.Status,
		Stage:              order.Stage,
		ArtifactRef:        order.ArtifactRef,
		TargetParams:       order.TargetParamsJSON,
		PaymentMethod:      order.PaymentMethod,
		Refundable:         order.Refundable,
		RecoveryToken:      order.RecoveryToken,
		CompensationCount:  order.CompensationCount,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
		NotifiedAt:         order.NotifiedAt,
	}
}

func ToDomainOrder(model *models.OrderModel) *domain.Order {
	return &domain.Order{
		ID:                 model.ID,
		TransactionID:      model.TransactionID,
		Identity:           model.Identity,
		NormalizedIdentity: model.NormalizedIdentity,
		Status:             model.Status,
		Stage:              model.Stage,
		ArtifactRef:        model.ArtifactRef,
		TargetParamsJSON:   model.TargetParams,
		PaymentMethod:      model.PaymentMethod,
		Refundable:         model.Refundable,
		RecoveryToken:      model.RecoveryToken,
		CompensationCount:  model.CompensationCount,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
		NotifiedAt:         model.NotifiedAt,
	}
}
