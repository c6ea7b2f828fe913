// Package ticket provides the e-ticket HTTP handler.
package ticket

import (
	"github.com/gin-gonic/gin"

	commonhandler "github.com/havenstays/booking-backend/internal/common/handler"
	"github.com/havenstays/booking-backend/internal/common/response"
	"github.com/havenstays/booking-backend/internal/middleware"
	ticketService "github.com/havenstays/booking-backend/internal/service/ticket"
)

// Handler serves the e-ticket endpoint.
type Handler struct {
	ticketService *ticketService.Service
}

// NewHandler creates a ticket handler.
func NewHandler(svc *ticketService.Service) *Handler {
	return &Handler{
		ticketService: svc,
	}
}

// Get resolves an e-ticket
// @Summary View an e-ticket
// @Tags ticket
// @Produce json
// @Param booking_id query string false "booking identifier"
// @Param token query string false "ticket token"
// @Success 200 {object} response.Response{data=ticketService.View}
// @Router /api/v1/tickets [get]
func (h *Handler) Get(c *gin.Context) {
	lookup := ticketService.Lookup{
		BookingID: c.Query("booking_id"),
		Token:     c.Query("token"),
	}
	if lookup.BookingID == "" && lookup.Token == "" {
		response.BadRequest(c, "booking_id or token is required")
		return
	}

	// Admin callers bypass the expiry rule; everyone else is gated.
	view, err := h.ticketService.Get(c.Request.Context(), lookup, middleware.IsAdmin(c))
	if err != nil {
		commonhandler.HandleError(c, err)
		return
	}

	response.Success(c, view)
}
