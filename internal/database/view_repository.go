package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/staynest/booking-backend/internal/models"
)

// Listing projection pieces. Rating aggregates come from a lateral subquery
// so every read sees the current review rows.
const (
	listingProjection = `h.hotel_id, h.host_id, h.name, h.description, h.address, h.city, h.country,
		h.max_guests, h.bedrooms, h.bathrooms, h.price_per_night, h.amenities, h.images,
		h.primary_image_url, h.is_active, h.created_at, h.updated_at,
		u.first_name AS host_first_name, u.last_name AS host_last_name,
		u.profile_photo_url AS host_profile_photo_url,
		r.average_rating, r.review_count`

	ratingJoin = `LEFT JOIN LATERAL (
			SELECT AVG(rating)::float8 AS average_rating,
				COUNT(*)::int AS review_count
			FROM reviews
			WHERE reviews.hotel_id = h.hotel_id
		) r ON TRUE`

	listingSelect = `
		SELECT ` + listingProjection + `
		FROM hotels h
		JOIN users u ON u.user_id = h.host_id
		` + ratingJoin
)

const bookingDetailsSelect = `
	SELECT b.booking_id, b.hotel_id, b.guest_id, b.check_in_date, b.check_out_date,
		b.num_guests, b.total_price, b.status, b.notes, b.cancelled_at, b.created_at, b.updated_at,
		g.first_name AS guest_first_name, g.last_name AS guest_last_name,
		g.email AS guest_email, g.phone AS guest_phone,
		h.name AS hotel_name, h.primary_image_url AS hotel_primary_image_url,
		h.city AS hotel_city, h.country AS hotel_country, h.host_id,
		p.payment_id, p.status AS payment_status, p.payment_method, p.transaction_id
	FROM bookings b
	JOIN users g ON g.user_id = b.guest_id
	JOIN hotels h ON h.hotel_id = b.hotel_id
	LEFT JOIN payments p ON p.booking_id = b.booking_id`

// ViewRepository serves the read-only projections. Nothing here is stored;
// every call recomputes from the base tables.
type ViewRepository struct {
	db *sqlx.DB
}

// NewViewRepository creates a new ViewRepository
func NewViewRepository(db *sqlx.DB) *ViewRepository {
	return &ViewRepository{db: db}
}

// HotelListing returns the listing projection of one hotel
func (r *ViewRepository) HotelListing(ctx context.Context, hotelID int64) (*models.HotelListing, error) {
	var listing models.HotelListing
	if err := r.db.GetContext(ctx, &listing, listingSelect+` WHERE h.hotel_id = $1`, hotelID); err != nil {
		return nil, wrapError(err, "get hotel listing")
	}
	return &listing, nil
}

// ListHotels returns listing projections matching the filter
func (r *ViewRepository) ListHotels(ctx context.Context, f models.HotelFilter) ([]models.HotelListing, error) {
	var conds []string
	var args []interface{}

	if f.ActiveOnly {
		conds = append(conds, "h.is_active = TRUE")
	}
	if f.City != "" {
		args = append(args, f.City)
		conds = append(conds, fmt.Sprintf("lower(h.city) = lower($%d)", len(args)))
	}
	if f.HostID != nil {
		args = append(args, *f.HostID)
		conds = append(conds, fmt.Sprintf("h.host_id = $%d", len(args)))
	}

	query := listingSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY h.created_at DESC, h.hotel_id DESC"

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	args = append(args, limit, f.Offset)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	listings := []models.HotelListing{}
	if err := r.db.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}
	return listings, nil
}

// BookingDetails returns the denormalized projection of one booking
func (r *ViewRepository) BookingDetails(ctx context.Context, bookingID int64) (*models.BookingDetails, error) {
	var details models.BookingDetails
	if err := r.db.GetContext(ctx, &details, bookingDetailsSelect+` WHERE b.booking_id = $1`, bookingID); err != nil {
		return nil, wrapError(err, "get booking details")
	}
	return &details, nil
}

// ListBookingDetails returns booking projections matching the filter, newest first
func (r *ViewRepository) ListBookingDetails(ctx context.Context, f models.BookingFilter) ([]models.BookingDetails, error) {
	var conds []string
	var args []interface{}

	if f.GuestID != nil {
		args = append(args, *f.GuestID)
		conds = append(conds, fmt.Sprintf("b.guest_id = $%d", len(args)))
	}
	if f.HostID != nil {
		args = append(args, *f.HostID)
		conds = append(conds, fmt.Sprintf("h.host_id = $%d", len(args)))
	}
	if f.HotelID != nil {
		args = append(args, *f.HotelID)
		conds = append(conds, fmt.Sprintf("b.hotel_id = $%d", len(args)))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		conds = append(conds, fmt.Sprintf("b.status = $%d", len(args)))
	}

	query := bookingDetailsSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY b.created_at DESC, b.booking_id DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	details := []models.BookingDetails{}
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list booking details: %w", err)
	}
	return details, nil
}
