package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/docugen/fulfillment-service/internal/delivery/http/dto/request"
	"github.com/docugen/fulfillment-service/internal/delivery/http/dto/response"
	"github.com/docugen/fulfillment-service/internal/domain"
	"github.com/docugen/fulfillment-service/internal/usecase"
	"github.com/gin-gonic/gin"
)

// AdminHandler is the operations surface: pending tickets with
// time-to-breach plus the manual actions. Authentication for this surface
// is terminated upstream.
type AdminHandler struct {
	TicketUc      usecase.TicketUsecase
	SLAUc         usecase.SLAUsecase
	FulfillmentUc usecase.FulfillmentUsecase
	OrderRepo     domain.OrderRepository
}

func NewAdminHandler(
	ticketUc usecase.TicketUsecase,
	slaUc usecase.SLAUsecase,
	fulfillmentUc usecase.FulfillmentUsecase,
	orderRepo domain.OrderRepository) *AdminHandler {

	return &AdminHandler{
		TicketUc:      ticketUc,
		SLAUc:         slaUc,
		FulfillmentUc: fulfillmentUc,
		OrderRepo:     orderRepo,
	}
}

func (h *AdminHandler) ListPendingTickets(c *gin.Context) {
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)

	pending, total, err := h.TicketUc.ListPendingTickets(page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: err.Error()})
		return
	}

	out := response.TicketListResponse{Total: total, Tickets: make([]response.TicketResponse, len(pending))}
	for i, p := range pending {
		out.Tickets[i] = response.TicketResponse{
			ID:                 p.Ticket.ID,
			TransactionID:      p.Ticket.TransactionID,
			NormalizedIdentity: p.Ticket.NormalizedIdentity,
			IssueKind:          string(p.Ticket.IssueKind),
			Status:             string(p.Ticket.Status),
			SLADeadline:        p.Ticket.SLADeadline,
			TimeToBreach:       p.TimeToBreach.String(),
			CreatedAt:          p.Ticket.CreatedAt,
			ResolvedAt:         p.Ticket.ResolvedAt,
			Notes:              p.Ticket.Notes,
		}
	}
	c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) ResolveTicket(c *gin.Context) {
	var req request.ResolveTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.TicketUc.ResolveTicket(c.Param("id"), req.Notes); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "resolved"})
}

// ForceRegenerate re-drives the order behind a ticket through the pipeline.
func (h *AdminHandler) ForceRegenerate(c *gin.Context) {
	ticket, err := h.TicketUc.GetTicketByID(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	order, err := h.OrderRepo.GetOrderByTransactionID(ticket.TransactionID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if err := h.FulfillmentUc.Reprocess(order.ID); err != nil {
		c.JSON(http.StatusConflict, response.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reprocessed"})
}

func (h *AdminHandler) ForceCompensate(c *gin.Context) {
	if err := h.SLAUc.ForceCompensate(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "compensated"})
}

func (h *AdminHandler) writeError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrTicketNotFound) || errors.Is(err, domain.ErrOrderNotFound) {
		c.JSON(http.StatusNotFound, response.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: err.Error()})
}
