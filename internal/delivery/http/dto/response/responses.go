package response

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

type TicketResponse struct {
	ID                 string     `json:"id"`
	TransactionID      string     `json:"transaction_id"`
	NormalizedIdentity string     `json:"normalized_identity"`
	IssueKind          string     `json:"issue_kind"`
	Status             string     `json:"status"`
	SLADeadline        time.Time  `json:"sla_deadline"`
	TimeToBreach       string     `json:"time_to_breach"`
	CreatedAt          time.Time  `json:"created_at"`
	ResolvedAt         *time.Time `json:"resolved_at,omitempty"`
	Notes              string     `json:"notes,omitempty"`
}

type TicketListResponse struct {
	Tickets []TicketResponse `json:"tickets"`
	Total   int64            `json:"total"`
}
