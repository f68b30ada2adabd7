package handlers

import (
	"net/http"
	"time"

	"github.com/docugen/fulfillment-service/internal/delivery/http/dto/response"
	"github.com/docugen/fulfillment-service/internal/domain"
	"github.com/gin-gonic/gin"
)

// RecoveryHandler mints a short-lived access URL from the order's permanent
// artifact reference. This is the recovery path embedded in the delivery
// email; it works for months, long after any previously minted URL died.
type RecoveryHandler struct {
	OrderRepo    domain.OrderRepository
	Store        domain.ArtifactStore
	SignedURLTTL time.Duration
}

func NewRecoveryHandler(orderRepo domain.OrderRepository, store domain.ArtifactStore, signedURLTTL time.Duration) *RecoveryHandler {
	return &RecoveryHandler{
		OrderRepo:    orderRepo,
		Store:        store,
		SignedURLTTL: signedURLTTL,
	}
}

func (h *RecoveryHandler) Recover(c *gin.Context) {
	order, err := h.OrderRepo.GetOrderByRecoveryToken(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{Error: "unknown recovery link"})
		return
	}
	if order.ArtifactRef == "" {
		c.JSON(http.StatusConflict, response.ErrorResponse{Error: "your document is still being prepared"})
		return
	}

	url, err := h.Store.SignURL(order.ArtifactRef, h.SignedURLTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "failed to mint access url"})
		return
	}
	c.Redirect(http.StatusFound, url)
}
