package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/models"
)

// HotelStore persists hotels
type HotelStore interface {
	Create(ctx context.Context, h *models.Hotel) error
	Update(ctx context.Context, h *models.Hotel) error
	SetActive(ctx context.Context, hotelID int64, active bool) (*models.Hotel, error)
	GetByID(ctx context.Context, hotelID int64) (*models.Hotel, error)
}

// PlaceStore persists the famous-place catalog and hotel links
type PlaceStore interface {
	ListCatalog(ctx context.Context, city string) ([]models.FamousPlace, error)
	GetPlace(ctx context.Context, placeID int64) (*models.FamousPlace, error)
	Link(ctx context.Context, hotelID, placeID int64, distanceM *int) error
	UpdateDistance(ctx context.Context, hotelID, placeID int64, distanceM *int) error
	Unlink(ctx context.Context, hotelID, placeID int64) error
	NearbyForHotel(ctx context.Context, hotelID int64) ([]models.NearbyPlace, error)
}

// HotelService manages a host's hotels and their nearby places
type HotelService struct {
	hotels HotelStore
	places PlaceStore
	logger *logrus.Logger
}

// NewHotelService creates a new HotelService
func NewHotelService(hotels HotelStore, places PlaceStore, logger *logrus.Logger) *HotelService {
	return &HotelService{
		hotels: hotels,
		places: places,
		logger: logger,
	}
}

// Create lists a new hotel owned by the principal. New hotels are active
// unless the input says otherwise.
func (s *HotelService) Create(ctx context.Context, principal *models.Principal, in *models.HotelInput) (*models.Hotel, error) {
	if err := Authorize(principal, HotelResource{}, ActionCreate); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hotel := &models.Hotel{HostID: principal.UserID, IsActive: true}
	in.ApplyTo(hotel)

	if err := s.hotels.Create(ctx, hotel); err != nil {
		return nil, translateError(err, "hotel", nil)
	}

	s.logger.WithFields(logrus.Fields{
		"hotel_id": hotel.HotelID,
		"host_id":  hotel.HostID,
		"city":     hotel.City,
	}).Info("Hotel created")

	return hotel, nil
}

// Update replaces the writable fields of a hotel owned by the principal
func (s *HotelService) Update(ctx context.Context, principal *models.Principal, hotelID int64, in *models.HotelInput) (*models.Hotel, error) {
	hotel, err := s.owned(ctx, principal, hotelID, ActionUpdate)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	in.ApplyTo(hotel)
	if err := s.hotels.Update(ctx, hotel); err != nil {
		return nil, translateError(err, "hotel", hotelID)
	}

	s.logger.WithField("hotel_id", hotelID).Info("Hotel updated")
	return hotel, nil
}

// SetActive publishes or unpublishes a hotel
func (s *HotelService) SetActive(ctx context.Context, principal *models.Principal, hotelID int64, active bool) (*models.Hotel, error) {
	if _, err := s.owned(ctx, principal, hotelID, ActionUpdate); err != nil {
		return nil, err
	}

	hotel, err := s.hotels.SetActive(ctx, hotelID, active)
	if err != nil {
		return nil, translateError(err, "hotel", hotelID)
	}

	s.logger.WithFields(logrus.Fields{
		"hotel_id":  hotelID,
		"is_active": active,
	}).Info("Hotel visibility changed")
	return hotel, nil
}

// PlaceCatalog returns catalog places, optionally for one city
func (s *HotelService) PlaceCatalog(ctx context.Context, city string) ([]models.FamousPlace, error) {
	return s.places.ListCatalog(ctx, city)
}

// LinkPlace links a catalog place to the principal's hotel, or updates the
// distance of an existing link
func (s *HotelService) LinkPlace(ctx context.Context, principal *models.Principal, hotelID int64, req *models.LinkPlaceRequest) ([]models.NearbyPlace, error) {
	if _, err := s.owned(ctx, principal, hotelID, ActionManagePlaces); err != nil {
		return nil, err
	}
	if err := validateDistance(req.DistanceM); err != nil {
		return nil, err
	}
	if _, err := s.places.GetPlace(ctx, req.PlaceID); err != nil {
		return nil, translateError(err, "place", req.PlaceID)
	}

	if err := s.places.Link(ctx, hotelID, req.PlaceID, req.DistanceM); err != nil {
		return nil, translateError(err, "place", req.PlaceID)
	}
	return s.nearby(ctx, hotelID)
}

// UpdatePlaceDistance changes the distance of a linked place
func (s *HotelService) UpdatePlaceDistance(ctx context.Context, principal *models.Principal, hotelID, placeID int64, req *models.UpdateDistanceRequest) ([]models.NearbyPlace, error) {
	if _, err := s.owned(ctx, principal, hotelID, ActionManagePlaces); err != nil {
		return nil, err
	}
	if err := validateDistance(req.DistanceM); err != nil {
		return nil, err
	}

	if err := s.places.UpdateDistance(ctx, hotelID, placeID, req.DistanceM); err != nil {
		return nil, translateError(err, "nearby place", placeID)
	}
	return s.nearby(ctx, hotelID)
}

// UnlinkPlace removes a place from the principal's hotel
func (s *HotelService) UnlinkPlace(ctx context.Context, principal *models.Principal, hotelID, placeID int64) error {
	if _, err := s.owned(ctx, principal, hotelID, ActionManagePlaces); err != nil {
		return err
	}
	return translateError(s.places.Unlink(ctx, hotelID, placeID), "nearby place", placeID)
}

func (s *HotelService) nearby(ctx context.Context, hotelID int64) ([]models.NearbyPlace, error) {
	places, err := s.places.NearbyForHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	models.SortNearbyPlaces(places)
	return places, nil
}

// owned loads a hotel and checks the principal may perform action on it
func (s *HotelService) owned(ctx context.Context, principal *models.Principal, hotelID int64, action Action) (*models.Hotel, error) {
	hotel, err := s.hotels.GetByID(ctx, hotelID)
	if err != nil {
		return nil, translateError(err, "hotel", hotelID)
	}
	if err := Authorize(principal, HotelResource{HotelID: hotel.HotelID, HostID: hotel.HostID, IsActive: hotel.IsActive}, action); err != nil {
		return nil, err
	}
	return hotel, nil
}

func validateDistance(d *int) error {
	if d != nil && *d < 0 {
		return models.NewValidationError("distance_m", "must be zero or greater")
	}
	return nil
}
