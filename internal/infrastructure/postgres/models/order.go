package models

import (
	"time"

	"github.com/docugen/fulfillment-service/internal/domain"
)

type OrderModel struct {
	ID                 string             `gorm:"primaryKey;type:uuid"`
	TransactionID      string             `gorm:"uniqueIndex:idx_orders_transaction_id;not null"`
	Identity           string             `gorm:"not null"`
	NormalizedIdentity string             `gorm:"index:idx_orders_normalized_identity;not null"`
	Status             domain.OrderStatus `gorm:"index:idx_orders_status;not null"`
	Stage              domain.OrderStage  `gorm:"not null"`
	ArtifactRef        string
	TargetParams       string `gorm:"type:jsonb"`
	PaymentMethod      string
	Refundable         bool
	RecoveryToken      string `gorm:"uniqueIndex:idx_orders_recovery_token"`
	CompensationCount  int    `gorm:"not null;default:0"`
	CreatedAt          time.Time `gorm:"index:idx_orders_created_at"`
	UpdatedAt          time.Time
	NotifiedAt         *time.Time
}
