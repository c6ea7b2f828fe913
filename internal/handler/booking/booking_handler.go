// Package booking provides the booking HTTP handlers.
package booking

import (
	"github.com/gin-gonic/gin"

	commonhandler "github.com/havenstays/booking-backend/internal/common/handler"
	"github.com/havenstays/booking-backend/internal/common/response"
	"github.com/havenstays/booking-backend/internal/repository"
	bookingService "github.com/havenstays/booking-backend/internal/service/booking"
)

// Handler serves booking endpoints.
type Handler struct {
	bookingService *bookingService.Service
}

// NewHandler creates a booking handler.
func NewHandler(svc *bookingService.Service) *Handler {
	return &Handler{
		bookingService: svc,
	}
}

// Create creates a booking
// @Summary Create a booking
// @Tags booking
// @Accept json
// @Produce json
// @Param request body bookingService.CreateRequest true "booking details"
// @Success 200 {object} response.Response{data=models.Booking}
// @Router /api/v1/bookings [post]
func (h *Handler) Create(c *gin.Context) {
	var req bookingService.CreateRequest
	if !commonhandler.BindJSON(c, &req) {
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), &req)
	if err != nil {
		commonhandler.HandleError(c, err)
		return
	}

	response.Success(c, booking)
}

// UpdateStatus applies a lifecycle transition
// @Summary Update booking status
// @Tags booking
// @Accept json
// @Produce json
// @Param request body bookingService.UpdateStatusRequest true "status update"
// @Success 200 {object} response.Response{data=models.Booking}
// @Router /api/v1/bookings/status [post]
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req bookingService.UpdateStatusRequest
	if !commonhandler.BindJSON(c, &req) {
		return
	}

	booking, err := h.bookingService.UpdateStatus(c.Request.Context(), &req)
	if err != nil {
		commonhandler.HandleError(c, err)
		return
	}

	response.Success(c, booking)
}

// Get fetches a booking
// @Summary Get a booking
// @Tags booking
// @Produce json
// @Param booking_id path string true "booking identifier"
// @Success 200 {object} response.Response{data=models.Booking}
// @Router /api/v1/bookings/{booking_id} [get]
func (h *Handler) Get(c *gin.Context) {
	bookingID := c.Param("booking_id")
	if bookingID == "" {
		response.BadRequest(c, "booking_id is required")
		return
	}

	booking, err := h.bookingService.Get(c.Request.Context(), bookingID)
	if err != nil {
		commonhandler.HandleError(c, err)
		return
	}

	response.Success(c, booking)
}

// listQuery narrows the admin booking listing.
type listQuery struct {
	BookingStatus string `form:"booking_status"`
	PropertyType  string `form:"property_type"`
	ReferralCode  string `form:"referral_code"`
}

// List lists bookings
// @Summary List bookings
// @Tags booking
// @Produce json
// @Security Bearer
// @Param booking_status query string false "filter by status"
// @Param property_type query string false "filter by property type"
// @Param referral_code query string false "filter by referral code"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/bookings [get]
func (h *Handler) List(c *gin.Context) {
	var query listQuery
	if !commonhandler.BindQuery(c, &query) {
		return
	}
	page := commonhandler.BindPagination(c)

	filter := &repository.BookingFilter{
		BookingStatus: query.BookingStatus,
		PropertyType:  query.PropertyType,
		ReferralCode:  query.ReferralCode,
	}

	bookings, total, err := h.bookingService.List(c.Request.Context(), filter, page)
	if err != nil {
		commonhandler.HandleError(c, err)
		return
	}

	response.SuccessPage(c, bookings, total, page.Page, page.PageSize)
}
