package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/middleware"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/internal/services"
)

// ReviewHandler handles guest reviews of completed stays
type ReviewHandler struct {
	reviews *services.ReviewService
	logger  *logrus.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviews *services.ReviewService, logger *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: logger}
}

// CreateReview handles POST /api/v1/bookings/:id/review
// @Summary Review a completed stay
// @Tags Reviews
// @Accept json
// @Produce json
// @Param request body models.CreateReviewRequest true "Rating 1-5 and optional comment"
// @Success 201 {object} models.Review
// @Failure 409 {object} ErrorResponse "Booking already reviewed"
// @Failure 422 {object} ErrorResponse "Booking not completed"
// @Router /api/v1/bookings/{id}/review [post]
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	review, err := h.reviews.Create(c.Request.Context(), principal, bookingID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}
