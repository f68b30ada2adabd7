package domain

import "time"

type BlockReason string

const (
	BlockReasonChargeback     BlockReason = "CHARGEBACK"
	BlockReasonAbuseThreshold BlockReason = "ABUSE_THRESHOLD"
)

// BlockEntry suppresses an identity from new checkouts until it expires.
type BlockEntry struct {
	NormalizedIdentity string
	Reason             BlockReason
	ExpiresAt          time.Time
	CreatedAt          time.Time
}

type BlockRepository interface {
	UpsertBlock(block *BlockEntry) error
	// IsBlocked reports whether a live (non-expired) block exists.
	IsBlocked(normalizedIdentity string, now time.Time) (bool, error)
	DeleteExpired(now time.Time) error
}
