package domain

import "context"

// RefundClient calls the payment provider's compensation API. The
// transaction ID doubles as the provider-side idempotency key so a repeated
// sweep cannot refund twice. Implementations return ErrRefundUnsupported
// when the payment method cannot be refunded automatically.
type RefundClient interface {
	Refund(ctx context.Context, transactionID string) error
}
