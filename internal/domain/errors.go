package domain

import "errors"

var (
	ErrDuplicateTransaction = errors.New("duplicate transaction")
	ErrCheckoutInProgress   = errors.New("checkout already in progress")
	ErrIdentityBlocked      = errors.New("identity is blocked")
	ErrDuplicateRecentOrder = errors.New("recent order exists for identity")
	ErrInputNotFound        = errors.New("quiz input not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrTicketNotFound       = errors.New("resolution ticket not found")
	ErrRefundUnsupported    = errors.New("payment method does not support automatic refund")
	ErrGenerationExhausted  = errors.New("generation attempts exhausted")
)
