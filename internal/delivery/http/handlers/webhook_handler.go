package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/docugen/fulfillment-service/internal/delivery/http/dto/request"
	"github.com/docugen/fulfillment-service/internal/delivery/http/dto/response"
	"github.com/docugen/fulfillment-service/internal/domain"
	"github.com/docugen/fulfillment-service/internal/infrastructure/metrics"
	"github.com/docugen/fulfillment-service/internal/infrastructure/payment"
	"github.com/docugen/fulfillment-service/internal/usecase"
	"github.com/gin-gonic/gin"
)

const (
	SignatureHeader = "X-Webhook-Signature"
	TimestampHeader = "X-Webhook-Timestamp"
)

type WebhookHandler struct {
	Verifier       *payment.WebhookVerifier
	FulfillmentUc  usecase.FulfillmentUsecase
	Rejections     domain.RejectionCounter
	Metrics        *metrics.FulfillmentMetrics
	AlertThreshold int64
}

func NewWebhookHandler(
	verifier *payment.WebhookVerifier,
	fulfillmentUc usecase.FulfillmentUsecase,
	rejections domain.RejectionCounter,
	m *metrics.FulfillmentMetrics,
	alertThreshold int64) *WebhookHandler {

	return &WebhookHandler{
		Verifier:       verifier,
		FulfillmentUc:  fulfillmentUc,
		Rejections:     rejections,
		Metrics:        m,
		AlertThreshold: alertThreshold,
	}
}

// HandleEvent authenticates and routes one provider webhook. Any
// authentication failure is terminal: no side effect, non-success status so
// nothing downstream ever sees a forged or stale event.
func (h *WebhookHandler) HandleEvent(c *gin.Context) {
	rawBody, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "failed to read body"})
		return
	}

	ts, err := strconv.ParseInt(c.GetHeader(TimestampHeader), 10, 64)
	if err != nil {
		h.reject(c, payment.RejectBadTimestamp)
		return
	}

	cause, err := h.Verifier.Verify(rawBody, c.GetHeader(SignatureHeader), time.Unix(ts, 0))
	if err != nil {
		h.reject(c, cause)
		return
	}

	var event request.WebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "malformed payload"})
		return
	}

	switch event.Type {
	case "charge.succeeded":
		outcome, err := h.FulfillmentUc.HandlePaymentSucceeded(c.Request.Context(), usecase.PaymentEvent{
			TransactionID: event.Data.TransactionID,
			Identity:      event.Data.Email,
			PaymentMethod: event.Data.PaymentMethod,
			Refundable:    event.Data.Refundable,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: err.Error()})
			return
		}
		// Duplicates answer success too, so the provider stops retrying.
		c.JSON(http.StatusOK, gin.H{"outcome": string(outcome)})

	case "charge.disputed":
		if err := h.FulfillmentUc.HandleChargeDisputed(c.Request.Context(), event.Data.TransactionID); err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"outcome": "processed"})

	case "charge.refunded":
		if err := h.FulfillmentUc.HandleRefundSucceeded(c.Request.Context(), event.Data.TransactionID); err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"outcome": "processed"})

	default:
		// Unknown event types are acknowledged, not retried forever.
		c.JSON(http.StatusOK, gin.H{"outcome": "ignored"})
	}
}

func (h *WebhookHandler) reject(c *gin.Context, cause string) {
	slog.Warn("webhook rejected", "cause", cause, "remote_addr", c.ClientIP())
	if h.Metrics != nil {
		h.Metrics.WebhookRejectedTotal.WithLabelValues(cause).Inc()
	}
	if h.Rejections != nil {
		count, err := h.Rejections.IncrRejection(c.Request.Context(), cause)
		if err == nil && count > h.AlertThreshold {
			// Repeated rejections of one cause within the hour means either
			// an attack or clock skew with the provider.
			slog.Error("webhook rejection threshold exceeded",
				"cause", cause,
				"count_this_hour", count,
			)
		}
	}
	c.JSON(http.StatusUnauthorized, response.ErrorResponse{Error: "verification failed"})
}
