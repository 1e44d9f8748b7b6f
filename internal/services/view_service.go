package services

import (
	"context"

	"github.com/staynest/booking-backend/internal/models"
)

// ViewStore serves the read-only projections
type ViewStore interface {
	HotelListing(ctx context.Context, hotelID int64) (*models.HotelListing, error)
	ListHotels(ctx context.Context, f models.HotelFilter) ([]models.HotelListing, error)
	BookingDetails(ctx context.Context, bookingID int64) (*models.BookingDetails, error)
	ListBookingDetails(ctx context.Context, f models.BookingFilter) ([]models.BookingDetails, error)
}

// NearbyPlaceReader lists the places linked to a hotel
type NearbyPlaceReader interface {
	NearbyForHotel(ctx context.Context, hotelID int64) ([]models.NearbyPlace, error)
}

// ViewService exposes the aggregation views with visibility rules applied.
// Every call recomputes from current rows.
type ViewService struct {
	views  ViewStore
	places NearbyPlaceReader
}

// NewViewService creates a new ViewService
func NewViewService(views ViewStore, places NearbyPlaceReader) *ViewService {
	return &ViewService{views: views, places: places}
}

// HotelListing returns a hotel with host names and live rating aggregates.
// Inactive hotels are visible to their owner only; others get NotFound.
func (s *ViewService) HotelListing(ctx context.Context, principal *models.Principal, hotelID int64) (*models.HotelListing, error) {
	listing, err := s.views.HotelListing(ctx, hotelID)
	if err != nil {
		return nil, translateError(err, "hotel", hotelID)
	}
	if err := Authorize(principal, hotelResourceOf(&listing.Hotel), ActionRead); err != nil {
		return nil, &models.NotFoundError{Resource: "hotel", ID: hotelID}
	}
	return listing, nil
}

// ListActiveHotels returns published hotels, optionally in one city
func (s *ViewService) ListActiveHotels(ctx context.Context, city string, limit, offset int) ([]models.HotelListing, error) {
	return s.views.ListHotels(ctx, models.HotelFilter{City: city, ActiveOnly: true, Limit: limit, Offset: offset})
}

// ListHostHotels returns every hotel owned by the principal, active or not
func (s *ViewService) ListHostHotels(ctx context.Context, principal *models.Principal) ([]models.HotelListing, error) {
	if principal == nil || !principal.IsHost() {
		return nil, &models.AuthorizationError{Message: "host account required"}
	}
	hostID := principal.UserID
	return s.views.ListHotels(ctx, models.HotelFilter{HostID: &hostID, Limit: 100})
}

// NearbyPlaces returns the places linked to a visible hotel, nearest first
// with unknown distances last
func (s *ViewService) NearbyPlaces(ctx context.Context, principal *models.Principal, hotelID int64) ([]models.NearbyPlace, error) {
	if _, err := s.HotelListing(ctx, principal, hotelID); err != nil {
		return nil, err
	}

	places, err := s.places.NearbyForHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	models.SortNearbyPlaces(places)
	return places, nil
}

// BookingDetails returns one booking joined with guest, hotel and payment,
// for its guest or the owning host
func (s *ViewService) BookingDetails(ctx context.Context, principal *models.Principal, bookingID int64) (*models.BookingDetails, error) {
	details, err := s.views.BookingDetails(ctx, bookingID)
	if err != nil {
		return nil, translateError(err, "booking", bookingID)
	}
	resource := BookingResource{BookingID: details.BookingID, GuestID: details.GuestID, HostID: details.HostID}
	if err := Authorize(principal, resource, ActionRead); err != nil {
		return nil, err
	}
	return details, nil
}

// GuestBookings returns the principal's own bookings, newest first
func (s *ViewService) GuestBookings(ctx context.Context, principal *models.Principal) ([]models.BookingDetails, error) {
	if principal == nil {
		return nil, &models.AuthorizationError{Message: "authentication required"}
	}
	guestID := principal.UserID
	return s.views.ListBookingDetails(ctx, models.BookingFilter{GuestID: &guestID})
}

// HostBookings returns bookings on the principal's hotels, newest first,
// optionally narrowed by status and hotel
func (s *ViewService) HostBookings(ctx context.Context, principal *models.Principal, status *models.BookingStatus, hotelID *int64) ([]models.BookingDetails, error) {
	if principal == nil || !principal.IsHost() {
		return nil, &models.AuthorizationError{Message: "host account required"}
	}
	if status != nil && !status.Valid() {
		return nil, models.NewValidationError("status", "unknown booking status")
	}
	hostID := principal.UserID
	return s.views.ListBookingDetails(ctx, models.BookingFilter{HostID: &hostID, HotelID: hotelID, Status: status})
}

func hotelResourceOf(h *models.Hotel) HotelResource {
	return HotelResource{HotelID: h.HotelID, HostID: h.HostID, IsActive: h.IsActive}
}
