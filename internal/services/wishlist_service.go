package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/models"
)

// WishlistStore persists wishlist entries
type WishlistStore interface {
	Add(ctx context.Context, guestID, hotelID int64) (*models.WishlistEntry, error)
	Remove(ctx context.Context, guestID, hotelID int64) error
	ListForGuest(ctx context.Context, guestID int64) ([]models.WishlistItem, error)
}

// WishlistService manages a guest's saved hotels
type WishlistService struct {
	wishlists WishlistStore
	hotels    HotelReader
	logger    *logrus.Logger
}

// NewWishlistService creates a new WishlistService
func NewWishlistService(wishlists WishlistStore, hotels HotelReader, logger *logrus.Logger) *WishlistService {
	return &WishlistService{
		wishlists: wishlists,
		hotels:    hotels,
		logger:    logger,
	}
}

// Add saves a visible hotel to the principal's wishlist. Saving the same
// hotel twice is a ConflictError.
func (s *WishlistService) Add(ctx context.Context, principal *models.Principal, hotelID int64) (*models.WishlistEntry, error) {
	if err := s.authorize(principal); err != nil {
		return nil, err
	}

	hotel, err := s.hotels.GetByID(ctx, hotelID)
	if err != nil {
		return nil, translateError(err, "hotel", hotelID)
	}
	if err := Authorize(principal, hotelResourceOf(hotel), ActionRead); err != nil {
		return nil, &models.NotFoundError{Resource: "hotel", ID: hotelID}
	}

	entry, err := s.wishlists.Add(ctx, principal.UserID, hotelID)
	if err != nil {
		return nil, translateError(err, "wishlist entry", hotelID)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  principal.UserID,
		"hotel_id": hotelID,
	}).Debug("Hotel added to wishlist")
	return entry, nil
}

// Remove deletes a hotel from the principal's wishlist
func (s *WishlistService) Remove(ctx context.Context, principal *models.Principal, hotelID int64) error {
	if err := s.authorize(principal); err != nil {
		return err
	}
	return translateError(s.wishlists.Remove(ctx, principal.UserID, hotelID), "wishlist entry", hotelID)
}

// List returns the principal's wishlist, newest first
func (s *WishlistService) List(ctx context.Context, principal *models.Principal) ([]models.WishlistItem, error) {
	if err := s.authorize(principal); err != nil {
		return nil, err
	}
	return s.wishlists.ListForGuest(ctx, principal.UserID)
}

func (s *WishlistService) authorize(principal *models.Principal) error {
	if principal == nil {
		return &models.AuthorizationError{Message: "authentication required"}
	}
	return Authorize(principal, WishlistResource{GuestID: principal.UserID}, ActionUpdate)
}
