package domain

import "time"

// QuizInput is the persisted record the checkout client writes while the
// payment is confirmed. It may lag behind the webhook; the reconciler polls
// for it.
type QuizInput struct {
	ID                 string
	NormalizedIdentity string
	ParamsJSON         string
	CreatedAt          time.Time
}

type InputRepository interface {
	SaveInput(input *QuizInput) error
	// GetInputByIdentity returns ErrInputNotFound when no record exists yet.
	GetInputByIdentity(normalizedIdentity string) (*QuizInput, error)
}
