package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/middleware"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/internal/services"
)

// HotelHandler handles hotel listings, host hotel management and nearby places
type HotelHandler struct {
	hotels  *services.HotelService
	views   *services.ViewService
	reviews *services.ReviewService
	logger  *logrus.Logger
}

// NewHotelHandler creates a new HotelHandler
func NewHotelHandler(hotels *services.HotelService, views *services.ViewService, reviews *services.ReviewService, logger *logrus.Logger) *HotelHandler {
	return &HotelHandler{
		hotels:  hotels,
		views:   views,
		reviews: reviews,
		logger:  logger,
	}
}

type listHotelsQuery struct {
	City   string `form:"city"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}

type catalogQuery struct {
	City string `form:"city"`
}

// ListHotels handles GET /api/v1/hotels
func (h *HotelHandler) ListHotels(c *gin.Context) {
	var q listHotelsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	if q.Limit == 0 {
		q.Limit = 20
	}

	hotels, err := h.views.ListActiveHotels(c.Request.Context(), q.City, q.Limit, q.Offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"hotels": hotels, "count": len(hotels)})
}

// GetHotel handles GET /api/v1/hotels/:id. Inactive hotels are visible to their owner only.
func (h *HotelHandler) GetHotel(c *gin.Context) {
	hotelID, ok := pathID(c, "id")
	if !ok {
		return
	}
	principal, _ := middleware.GetPrincipal(c)

	listing, err := h.views.HotelListing(c.Request.Context(), principal, hotelID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// NearbyPlaces handles GET /api/v1/hotels/:id/places
func (h *HotelHandler) NearbyPlaces(c *gin.Context) {
	hotelID, ok := pathID(c, "id")
	if !ok {
		return
	}
	principal, _ := middleware.GetPrincipal(c)

	places, err := h.views.NearbyPlaces(c.Request.Context(), principal, hotelID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"places": places})
}

// HotelReviews handles GET /api/v1/hotels/:id/reviews
func (h *HotelHandler) HotelReviews(c *gin.Context) {
	hotelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	reviews, err := h.reviews.ListForHotel(c.Request.Context(), hotelID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "count": len(reviews)})
}

// PlaceCatalog handles GET /api/v1/places
func (h *HotelHandler) PlaceCatalog(c *gin.Context) {
	var q catalogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	places, err := h.hotels.PlaceCatalog(c.Request.Context(), q.City)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"places": places})
}

// CreateHotel handles POST /api/v1/host/hotels
func (h *HotelHandler) CreateHotel(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	var in models.HotelInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}

	hotel, err := h.hotels.Create(c.Request.Context(), principal, &in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, hotel)
}

// ListMyHotels handles GET /api/v1/host/hotels
func (h *HotelHandler) ListMyHotels(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	hotels, err := h.views.ListHostHotels(c.Request.Context(), principal)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"hotels": hotels, "count": len(hotels)})
}

// UpdateHotel handles PUT /api/v1/host/hotels/:id
func (h *HotelHandler) UpdateHotel(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}
	hotelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var in models.HotelInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}

	hotel, err := h.hotels.Update(c.Request.Context(), principal, hotelID, &in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, hotel)
}

// SetActive handles PATCH /api/v1/host/hotels/:id/active
func (h *HotelHandler) SetActive(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}
	hotelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	hotel, err := h.hotels.SetActive(c.Request.Context(), principal, hotelID, *req.IsActive)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, hotel)
}

// LinkPlace handles POST /api/v1/host/hotels/:id/places
func (h *HotelHandler) LinkPlace(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}
	hotelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.LinkPlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	places, err := h.hotels.LinkPlace(c.Request.Context(), principal, hotelID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"places": places})
}

// UpdatePlaceDistance handles PATCH /api/v1/host/hotels/:id/places/:placeId
func (h *HotelHandler) UpdatePlaceDistance(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}
	hotelID, ok := pathID(c, "id")
	if !ok {
		return
	}
	placeID, ok := pathID(c, "placeId")
	if !ok {
		return
	}

	var req models.UpdateDistanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	places, err := h.hotels.UpdatePlaceDistance(c.Request.Context(), principal, hotelID, placeID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"places": places})
}

// UnlinkPlace handles DELETE /api/v1/host/hotels/:id/places/:placeId
func (h *HotelHandler) UnlinkPlace(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}
	hotelID, ok := pathID(c, "id")
	if !ok {
		return
	}
	placeID, ok := pathID(c, "placeId")
	if !ok {
		return
	}

	if err := h.hotels.UnlinkPlace(c.Request.Context(), principal, hotelID, placeID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
