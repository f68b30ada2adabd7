package handlers

import (
	"errors"
	"net/http"

	"github.com/docugen/fulfillment-service/internal/delivery/http/dto/request"
	"github.com/docugen/fulfillment-service/internal/delivery/http/dto/response"
	"github.com/docugen/fulfillment-service/internal/domain"
	"github.com/docugen/fulfillment-service/internal/usecase"
	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	CheckoutUc usecase.CheckoutUsecase
}

func NewCheckoutHandler(checkoutUc usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{CheckoutUc: checkoutUc}
}

func (h *CheckoutHandler) InitiateCheckout(c *gin.Context) {
	var req request.InitiateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		return
	}

	err := h.CheckoutUc.InitiateCheckout(c.Request.Context(), req.Email)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	case errors.Is(err, domain.ErrCheckoutInProgress):
		// User-visible, not silently queued.
		c.JSON(http.StatusConflict, response.ErrorResponse{Error: "a checkout for this email is already in progress, retry shortly"})
	case errors.Is(err, domain.ErrDuplicateRecentOrder):
		c.JSON(http.StatusConflict, response.ErrorResponse{Error: "an order for this email was placed minutes ago"})
	case errors.Is(err, domain.ErrIdentityBlocked):
		c.JSON(http.StatusForbidden, response.ErrorResponse{Error: "checkout is not available for this email"})
	default:
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: err.Error()})
	}
}

func (h *CheckoutHandler) SaveQuizInput(c *gin.Context) {
	var req request.SaveQuizInputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.CheckoutUc.SaveQuizInput(req.Email, req.Params); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}
