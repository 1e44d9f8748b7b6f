package services

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/lifecycle"
	"github.com/staynest/booking-backend/internal/models"
)

// AvailabilityStore answers availability questions against current bookings
type AvailabilityStore interface {
	SearchAvailable(ctx context.Context, q models.SearchQuery) ([]models.HotelListing, error)
	GetByID(ctx context.Context, hotelID int64) (*models.Hotel, error)
}

// OverlapChecker reports whether a hotel is free for a stay
type OverlapChecker interface {
	IsAvailable(ctx context.Context, hotelID int64, stay models.StayRange) (bool, error)
}

// AvailabilityService is the availability index: which active hotels can
// take a stay, and at what price
type AvailabilityService struct {
	hotels   AvailabilityStore
	bookings OverlapChecker
	logger   *logrus.Logger
}

// NewAvailabilityService creates a new AvailabilityService
func NewAvailabilityService(hotels AvailabilityStore, bookings OverlapChecker, logger *logrus.Logger) *AvailabilityService {
	return &AvailabilityService{
		hotels:   hotels,
		bookings: bookings,
		logger:   logger,
	}
}

// Search returns active hotels in the city that fit the party and have no
// active booking overlapping the stay, cheapest first
func (s *AvailabilityService) Search(ctx context.Context, q models.SearchQuery) (*models.SearchResponse, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	listings, err := s.hotels.SearchAvailable(ctx, q)
	if err != nil {
		return nil, err
	}

	results := make([]models.AvailableHotel, 0, len(listings))
	for _, l := range listings {
		total, nights, err := lifecycle.CalculatePrice(l.PricePerNight, q.Stay())
		if err != nil {
			// a stored hotel always has a positive price; skip rather than fail the search
			s.logger.WithField("hotel_id", l.HotelID).WithError(err).Warn("Skipping hotel with unpriceable stay")
			continue
		}
		results = append(results, models.AvailableHotel{HotelListing: l, Nights: nights, TotalPrice: total})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].PricePerNight != results[j].PricePerNight {
			return results[i].PricePerNight < results[j].PricePerNight
		}
		return results[i].HotelID < results[j].HotelID
	})

	s.logger.WithFields(logrus.Fields{
		"city":      q.City,
		"check_in":  q.CheckIn.String(),
		"check_out": q.CheckOut.String(),
		"guests":    q.NumGuests,
		"results":   len(results),
	}).Debug("Availability search")

	return &models.SearchResponse{Query: q, Results: results, Count: len(results)}, nil
}

// CheckAvailability answers whether one active hotel is free for a stay
func (s *AvailabilityService) CheckAvailability(ctx context.Context, hotelID int64, stay models.StayRange) (*models.AvailabilityResponse, error) {
	if err := stay.Validate(); err != nil {
		return nil, err
	}

	hotel, err := s.hotels.GetByID(ctx, hotelID)
	if err != nil {
		return nil, translateError(err, "hotel", hotelID)
	}
	if !hotel.IsActive {
		return nil, &models.NotFoundError{Resource: "hotel", ID: hotelID}
	}

	total, nights, err := lifecycle.CalculatePrice(hotel.PricePerNight, stay)
	if err != nil {
		return nil, err
	}

	available, err := s.bookings.IsAvailable(ctx, hotelID, stay)
	if err != nil {
		return nil, err
	}

	return &models.AvailabilityResponse{
		HotelID:    hotelID,
		CheckIn:    stay.CheckIn,
		CheckOut:   stay.CheckOut,
		Available:  available,
		Nights:     nights,
		TotalPrice: total,
	}, nil
}
