package models

import (
	"time"

	"github.com/docugen/fulfillment-service/internal/domain"
)

type BlockEntryModel struct {
	NormalizedIdentity string             `gorm:"primaryKey"`
	Reason             domain.BlockReason `gorm:"not null"`
	ExpiresAt          time.Time          `gorm:"index:idx_blocks_expires_at;not null"`
	CreatedAt          time.Time
}
