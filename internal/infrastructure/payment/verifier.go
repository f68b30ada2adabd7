package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// Rejection causes, used for logging and the per-cause alert counters.
const (
	RejectMissingSignature = "missing_signature"
	RejectBadSignature     = "bad_signature"
	RejectStaleTimestamp   = "stale_timestamp"
	RejectBadTimestamp     = "bad_timestamp"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")
var ErrStaleTimestamp = errors.New("webhook timestamp outside replay window")

type WebhookVerifier struct {
	secret       []byte
	replayWindow time.Duration

	// injectable clock for tests
	now func() time.Time
}

func NewWebhookVerifier(secret string, replayWindow time.Duration) *WebhookVerifier {
	return &WebhookVerifier{
		secret:       []byte(secret),
		replayWindow: replayWindow,
		now:          time.Now,
	}
}

// Verify authenticates a raw webhook body. The timestamp check runs first
// and rejects independently of signature validity, so a replayed event with
// a perfectly valid signature still fails. Comparison is constant-time.
// Returns the rejection cause alongside the error.
func (v *WebhookVerifier) Verify(rawBody []byte, signature string, eventTimestamp time.Time) (string, error) {
	drift := v.now().Sub(eventTimestamp)
	if drift < 0 {
		drift = -drift
	}
	if drift > v.replayWindow {
		return RejectStaleTimestamp, ErrStaleTimestamp
	}

	if signature == "" {
		return RejectMissingSignature, ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return RejectBadSignature, ErrInvalidSignature
	}

	return "", nil
}
