package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/middleware"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/internal/services"
)

// WishlistHandler handles the caller's saved hotels
type WishlistHandler struct {
	wishlists *services.WishlistService
	logger    *logrus.Logger
}

// NewWishlistHandler creates a new WishlistHandler
func NewWishlistHandler(wishlists *services.WishlistService, logger *logrus.Logger) *WishlistHandler {
	return &WishlistHandler{wishlists: wishlists, logger: logger}
}

// List handles GET /api/v1/wishlist
func (h *WishlistHandler) List(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	items, err := h.wishlists.List(c.Request.Context(), principal)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// Add handles POST /api/v1/wishlist
func (h *WishlistHandler) Add(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	var req models.AddWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	entry, err := h.wishlists.Add(c.Request.Context(), principal, req.HotelID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// Remove handles DELETE /api/v1/wishlist/:hotelId
func (h *WishlistHandler) Remove(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}
	hotelID, ok := pathID(c, "hotelId")
	if !ok {
		return
	}

	if err := h.wishlists.Remove(c.Request.Context(), principal, hotelID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
