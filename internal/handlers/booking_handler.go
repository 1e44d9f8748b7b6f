package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/middleware"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/internal/services"
)

// BookingHandler serves the guest and host booking endpoints
type BookingHandler struct {
	bookings *services.BookingService
	views    *services.ViewService
	logger   *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookings *services.BookingService, views *services.ViewService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookings: bookings,
		views:    views,
		logger:   logger,
	}
}

type hostBookingsQuery struct {
	Status  string `form:"status" binding:"omitempty,booking_status"`
	HotelID *int64 `form:"hotel_id" binding:"omitempty,gt=0"`
}

type transitionFunc func(ctx context.Context, principal *models.Principal, bookingID int64) (*models.Booking, error)

// CreateBooking handles POST /api/v1/bookings
// @Summary Book a hotel
// @Description Creates a pending booking for the caller; fails with 409 when the dates are taken
// @Tags Bookings
// @Accept json
// @Produce json
// @Param request body models.CreateBookingRequest true "Booking request"
// @Success 201 {object} models.Booking
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Dates already booked"
// @Router /api/v1/bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	booking, err := h.bookings.CreateGuestBooking(c.Request.Context(), principal, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// CreateHostBooking handles POST /api/v1/host/bookings
func (h *BookingHandler) CreateHostBooking(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	var req models.HostBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	booking, err := h.bookings.CreateHostBooking(c.Request.Context(), principal, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// ListMyBookings handles GET /api/v1/bookings
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	bookings, err := h.views.GuestBookings(c.Request.Context(), principal)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// ListHostBookings handles GET /api/v1/host/bookings
func (h *BookingHandler) ListHostBookings(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	var q hostBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	var status *models.BookingStatus
	if q.Status != "" {
		s := models.BookingStatus(q.Status)
		status = &s
	}

	bookings, err := h.views.HostBookings(c.Request.Context(), principal, status, q.HotelID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// GetBooking handles GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	details, err := h.views.BookingDetails(c.Request.Context(), principal, bookingID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, details)
}

// Pay handles POST /api/v1/bookings/:id/pay
func (h *BookingHandler) Pay(c *gin.Context) { h.transition(c, h.bookings.Pay) }

// Cancel handles POST /api/v1/bookings/:id/cancel and POST /api/v1/host/bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) { h.transition(c, h.bookings.Cancel) }

// Confirm handles POST /api/v1/host/bookings/:id/confirm
func (h *BookingHandler) Confirm(c *gin.Context) { h.transition(c, h.bookings.Confirm) }

// Complete handles POST /api/v1/host/bookings/:id/complete
func (h *BookingHandler) Complete(c *gin.Context) { h.transition(c, h.bookings.Complete) }

// MarkNoShow handles POST /api/v1/host/bookings/:id/no-show
func (h *BookingHandler) MarkNoShow(c *gin.Context) { h.transition(c, h.bookings.MarkNoShow) }

func (h *BookingHandler) transition(c *gin.Context, apply transitionFunc) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	booking, err := apply(c.Request.Context(), principal, bookingID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// Reschedule handles PATCH /api/v1/bookings/:id/dates
func (h *BookingHandler) Reschedule(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	booking, err := h.bookings.Reschedule(c.Request.Context(), principal, bookingID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}
