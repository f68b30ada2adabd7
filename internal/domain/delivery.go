package domain

import (
	"context"
	"time"
)

// Renderer turns a validated plan into the final artifact bytes.
type Renderer interface {
	Render(ctx context.Context, order *Order, plan *GeneratedPlan) ([]byte, string, error)
}

// ArtifactStore persists artifact bytes durably. Upload returns a permanent
// reference; time-limited access URLs are minted separately on demand
// because the retention window outlives any signed URL.
type ArtifactStore interface {
	Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
	SignURL(ref string, ttl time.Duration) (string, error)
}

// Mailer dispatches the artifact to the recipient. It deduplicates nothing;
// idempotence is the delivery pipeline's job.
type Mailer interface {
	SendArtifact(ctx context.Context, recipient string, attachment []byte, contentType, recoveryURL string) error
}
