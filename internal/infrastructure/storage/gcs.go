package storage

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSArtifactStore persists artifacts in a GCS bucket. Upload returns the
// permanent gs:// reference; access URLs are minted on demand from it
// because orders are retained far longer than any signed URL lives.
type GCSArtifactStore struct {
	client *storage.Client
	bucket string
}

func NewGCSArtifactStore(ctx context.Context, bucket string) (*GCSArtifactStore, error) {
	var client *storage.Client
	var err error
	// Prefer ADC; explicit JSON only for local runs.
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	} else {
		client, err = storage.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to init storage client: %w", err)
	}

	return &GCSArtifactStore{client: client, bucket: bucket}, nil
}

func (s *GCSArtifactStore) Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	wc := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := wc.Write(data); err != nil {
		return "", fmt.Errorf("failed to write artifact object: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to commit artifact object: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", s.bucket, objectName), nil
}

// SignURL mints a short-lived access URL from a permanent reference.
func (s *GCSArtifactStore) SignURL(ref string, ttl time.Duration) (string, error) {
	objectName, ok := strings.CutPrefix(ref, fmt.Sprintf("gs://%s/", s.bucket))
	if !ok {
		return "", fmt.Errorf("artifact reference %q does not belong to bucket %s", ref, s.bucket)
	}

	url, err := s.client.Bucket(s.bucket).SignedURL(objectName, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign artifact url: %w", err)
	}
	return url, nil
}
