package domain

import "time"

type OrderRepository interface {
	// CreateOrder inserts a new order. The transaction_id column carries a
	// unique constraint; a concurrent insert for the same transaction must
	// fail with ErrDuplicateTransaction.
	CreateOrder(order *Order) error
	GetOrderByID(orderID string) (*Order, error)
	GetOrderByTransactionID(transactionID string) (*Order, error)
	GetOrderByRecoveryToken(token string) (*Order, error)
	UpdateOrderStage(orderID string, stage OrderStage) error
	UpdateOrderStatus(orderID string, status OrderStatus) error
	// SetInputReady pins the quiz parameters to the order together with
	// the stage transition. A resumed or reprocessed order generates from
	// these, never from a re-read of the identity's inputs, which may have
	// changed since payment.
	SetInputReady(orderID, paramsJSON string) error
	// MarkCompleted sets status, artifact reference and notified_at in a
	// single update so the completion invariant is never half-committed.
	MarkCompleted(orderID, artifactRef string, notifiedAt time.Time) error
	MarkRefunded(orderID string) error
	SetArtifactRef(orderID, artifactRef string) error
	// CountRecentByIdentity backs the time-windowed duplicate-order check
	// that covers the lock TTL gap.
	CountRecentByIdentity(normalizedIdentity string, since time.Time) (int64, error)
}
