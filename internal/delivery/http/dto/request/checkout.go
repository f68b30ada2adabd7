package request

type InitiateCheckoutRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type SaveQuizInputRequest struct {
	Email  string `json:"email" binding:"required,email"`
	Params string `json:"params" binding:"required"`
}
