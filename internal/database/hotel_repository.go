package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/staynest/booking-backend/internal/models"
)

const hotelColumns = `hotel_id, host_id, name, description, address, city, country,
	max_guests, bedrooms, bathrooms, price_per_night, amenities, images,
	primary_image_url, is_active, created_at, updated_at`

// activeStatuses is models.ActiveBookingStatuses as a query argument
var activeStatuses = statusArray(models.ActiveBookingStatuses)

func statusArray(statuses []models.BookingStatus) pq.StringArray {
	out := make(pq.StringArray, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// HotelRepository handles database operations for hotels
type HotelRepository struct {
	db *sqlx.DB
}

// NewHotelRepository creates a new HotelRepository
func NewHotelRepository(db *sqlx.DB) *HotelRepository {
	return &HotelRepository{db: db}
}

// Create inserts a new hotel
func (r *HotelRepository) Create(ctx context.Context, h *models.Hotel) error {
	query := `
		INSERT INTO hotels (host_id, name, description, address, city, country,
			max_guests, bedrooms, bathrooms, price_per_night, amenities, images,
			primary_image_url, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		RETURNING ` + hotelColumns

	err := r.db.GetContext(ctx, h, query,
		h.HostID, h.Name, h.Description, h.Address, h.City, h.Country,
		h.MaxGuests, h.Bedrooms, h.Bathrooms, h.PricePerNight, h.Amenities, h.Images,
		h.PrimaryImageURL, h.IsActive)
	if err != nil {
		return wrapError(err, "create hotel")
	}
	return nil
}

// Update writes all mutable fields of a hotel owned by h.HostID
func (r *HotelRepository) Update(ctx context.Context, h *models.Hotel) error {
	query := `
		UPDATE hotels SET
			name = $3, description = $4, address = $5, city = $6, country = $7,
			max_guests = $8, bedrooms = $9, bathrooms = $10, price_per_night = $11,
			amenities = $12, images = $13, primary_image_url = $14, is_active = $15,
			updated_at = NOW()
		WHERE hotel_id = $1 AND host_id = $2
		RETURNING ` + hotelColumns

	err := r.db.GetContext(ctx, h, query,
		h.HotelID, h.HostID, h.Name, h.Description, h.Address, h.City, h.Country,
		h.MaxGuests, h.Bedrooms, h.Bathrooms, h.PricePerNight,
		h.Amenities, h.Images, h.PrimaryImageURL, h.IsActive)
	if err != nil {
		return wrapError(err, "update hotel")
	}
	return nil
}

// SetActive toggles the publish flag. Hotels are never hard-deleted.
func (r *HotelRepository) SetActive(ctx context.Context, hotelID int64, active bool) (*models.Hotel, error) {
	query := `UPDATE hotels SET is_active = $2, updated_at = NOW() WHERE hotel_id = $1 RETURNING ` + hotelColumns

	var h models.Hotel
	if err := r.db.GetContext(ctx, &h, query, hotelID, active); err != nil {
		return nil, wrapError(err, "set hotel active flag")
	}
	return &h, nil
}

// GetByID retrieves a hotel regardless of its active flag
func (r *HotelRepository) GetByID(ctx context.Context, hotelID int64) (*models.Hotel, error) {
	var h models.Hotel
	query := `SELECT ` + hotelColumns + ` FROM hotels WHERE hotel_id = $1`
	if err := r.db.GetContext(ctx, &h, query, hotelID); err != nil {
		return nil, wrapError(err, "get hotel")
	}
	return &h, nil
}

// SearchAvailable runs the availability pipeline in one statement: active
// hotels in the city (case-insensitive exact match) with enough capacity and
// no active booking overlapping [checkIn, checkOut). Results are ordered by
// nightly price, then hotel id.
func (r *HotelRepository) SearchAvailable(ctx context.Context, q models.SearchQuery) ([]models.HotelListing, error) {
	query := listingSelect + `
		WHERE h.is_active = TRUE
			AND lower(h.city) = lower($1)
			AND h.max_guests >= $2
			AND NOT EXISTS (
				SELECT 1 FROM bookings b
				WHERE b.hotel_id = h.hotel_id
					AND b.status = ANY($5::booking_status[])
					AND b.check_in_date < $4
					AND $3 < b.check_out_date
			)
		ORDER BY h.price_per_night ASC, h.hotel_id ASC`

	listings := []models.HotelListing{}
	if err := r.db.SelectContext(ctx, &listings, query, q.City, q.NumGuests, q.CheckIn, q.CheckOut, activeStatuses); err != nil {
		return nil, fmt.Errorf("failed to search available hotels: %w", err)
	}
	return listings, nil
}
