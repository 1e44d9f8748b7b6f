package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/internal/services"
)

// SearchHandler handles availability search requests
type SearchHandler struct {
	service *services.AvailabilityService
	logger  *logrus.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(service *services.AvailabilityService, logger *logrus.Logger) *SearchHandler {
	return &SearchHandler{
		service: service,
		logger:  logger,
	}
}

type stayQuery struct {
	CheckIn  models.Date `form:"check_in"`
	CheckOut models.Date `form:"check_out"`
}

// Search handles GET /api/v1/search
// @Summary Search available hotels
// @Description Active hotels in a city that fit the party and have no active booking overlapping the stay
// @Tags Search
// @Produce json
// @Param city query string true "City"
// @Param check_in query string true "Check-in date (YYYY-MM-DD)"
// @Param check_out query string true "Check-out date (YYYY-MM-DD)"
// @Param guests query int true "Number of guests"
// @Success 200 {object} models.SearchResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	var q models.SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.service.Search(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CheckAvailability handles GET /api/v1/hotels/:id/availability
func (h *SearchHandler) CheckAvailability(c *gin.Context) {
	hotelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var q stayQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.service.CheckAvailability(c.Request.Context(), hotelID, models.StayRange{CheckIn: q.CheckIn, CheckOut: q.CheckOut})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
