package request

type ResolveTicketRequest struct {
	Notes string `json:"notes"`
}
