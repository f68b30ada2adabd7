package domain

import (
	"context"
	"time"
)

// IdentityLocker is the distributed checkout lock. TryAcquire must be a
// single atomic set-if-absent round-trip; the lock self-expires after ttl
// so a crashed holder cannot deadlock the identity.
type IdentityLocker interface {
	TryAcquire(ctx context.Context, normalizedIdentity string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, normalizedIdentity string) error
}

// CompensationCounter tracks refund events per identity in a shared store.
// Multiple handler instances must observe the same counts, so this never
// lives in process memory.
type CompensationCounter interface {
	RecordCompensation(ctx context.Context, normalizedIdentity string, at time.Time) error
	CountSince(ctx context.Context, normalizedIdentity string, since time.Time) (int64, error)
}

// RejectionCounter counts webhook rejections per cause within the current
// hour, for the possible-attack / clock-skew alert.
type RejectionCounter interface {
	IncrRejection(ctx context.Context, cause string) (int64, error)
}
