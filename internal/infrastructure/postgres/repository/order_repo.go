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

type DefaultOrderRepository struct {
	DB *gorm.DB
}

func NewDefaultOrderRepository(db *gorm.DB) *DefaultOrderRepository {
	return &DefaultOrderRepository{DB: db}
}

// CreateOrder is the idempotency guard's atomic admission: the unique index
// on transaction_id is the only arbiter, there is no prior read.
func (r *DefaultOrderRepository) CreateOrder(order *domain.Order) error {
	orderModel := mappers.ToGORMOrder(order)
	if err := r.DB.Create(orderModel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateTransaction
		}
		return err
	}
	return nil
}

func (r *DefaultOrderRepository) GetOrderByID(orderID string) (*domain.Order, error) {
	var order models.OrderModel
	if err := r.DB.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return mappers.ToDomainOrder(&order), nil
}

func (r *DefaultOrderRepository) GetOrderByTransactionID(transactionID string) (*domain.Order, error) {
	var order models.OrderModel
	if err := r.DB.First(&order, "transaction_id = ?", transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return mappers.ToDomainOrder(&order), nil
}

func (r *DefaultOrderRepository) GetOrderByRecoveryToken(token string) (*domain.Order, error) {
	var order models.OrderModel
	if err := r.DB.First(&order, "recovery_token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return mappers.ToDomainOrder(&order), nil
}

func (r *DefaultOrderRepository) UpdateOrderStage(orderID string, stage domain.OrderStage) error {
	return r.DB.Model(&models.OrderModel{}).
		Where("id = ?", orderID).
		Update("stage", stage).Error
}

func (r *DefaultOrderRepository) UpdateOrderStatus(orderID string, newStatus domain.OrderStatus) error {
	updatedOrderModel := models.OrderModel{
		ID:     orderID,
		Status: newStatus,
	}

	if err := r.DB.Updates(&updatedOrderModel).Error; err != nil {
		return err
	}

	return nil
}

// SetInputReady writes the reconciled parameters and the stage transition in
// one update, so a crash between them can never leave an INPUT_READY order
// without its pinned parameters.
func (r *DefaultOrderRepository) SetInputReady(orderID, paramsJSON string) error {
	return r.DB.Model(&models.OrderModel{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"stage":         domain.StageInputReady,
			"target_params": paramsJSON,
		}).Error
}

// MarkCompleted commits the terminal success state in one update: status,
// artifact reference, stage and notified_at change together or not at all.
func (r *DefaultOrderRepository) MarkCompleted(orderID, artifactRef string, notifiedAt time.Time) error {
	result := r.DB.Model(&models.OrderModel{}).
		Where("id = ? AND status = ?", orderID, domain.StatusProcessing).
		Updates(map[string]interface{}{
			"status":       domain.StatusCompleted,
			"stage":        domain.StageNotified,
			"artifact_ref": artifactRef,
			"notified_at":  notifiedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("order %s not in processing state", orderID)
	}
	return nil
}

func (r *DefaultOrderRepository) MarkRefunded(orderID string) error {
	return r.DB.Model(&models.OrderModel{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":             domain.StatusRefunded,
			"compensation_count": gorm.Expr("compensation_count + 1"),
		}).Error
}

func (r *DefaultOrderRepository) SetArtifactRef(orderID, artifactRef string) error {
	return r.DB.Model(&models.OrderModel{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"stage":        domain.StageStored,
			"artifact_ref": artifactRef,
		}).Error
}

func (r *DefaultOrderRepository) CountRecentByIdentity(normalizedIdentity string, since time.Time) (int64, error) {
	var total int64
	err := r.DB.Model(&models.OrderModel{}).
		Where("normalized_identity = ? AND created_at >= ?", normalizedIdentity, since).
		Count(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count recent orders: %w", err)
	}
	return total, nil
}
