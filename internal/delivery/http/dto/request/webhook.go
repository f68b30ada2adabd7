package request

// WebhookEvent is the provider's payload, parsed only after signature and
// timestamp verification of the raw body.
type WebhookEvent struct {
	Type string           `json:"type"`
	Data WebhookEventData `json:"data"`
}

type WebhookEventData struct {
	TransactionID string `json:"transaction_id"`
	Email         string `json:"email"`
	PaymentMethod string `json:"payment_method"`
	Refundable    bool   `json:"refundable"`
}
