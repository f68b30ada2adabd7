package models

import "time"

type QuizInputModel struct {
	ID                 string `gorm:"primaryKey;type:uuid"`
	NormalizedIdentity string `gorm:"index:idx_inputs_normalized_identity;not null"`
	Params             string `gorm:"type:jsonb;not null"`
	CreatedAt          time.Time
}
