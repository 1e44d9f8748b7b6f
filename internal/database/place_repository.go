package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/staynest/booking-backend/internal/models"
)

const placeColumns = `p.place_id, p.name, p.city, p.country, p.address, p.category,
	p.description, p.images, p.primary_image_url`

// PlaceRepository handles the famous-place catalog and hotel links
type PlaceRepository struct {
	db *sqlx.DB
}

// NewPlaceRepository creates a new PlaceRepository
func NewPlaceRepository(db *sqlx.DB) *PlaceRepository {
	return &PlaceRepository{db: db}
}

// ListCatalog returns catalog places, optionally restricted to a city
func (r *PlaceRepository) ListCatalog(ctx context.Context, city string) ([]models.FamousPlace, error) {
	query := `SELECT ` + placeColumns + ` FROM famous_places p
		WHERE ($1 = '' OR lower(p.city) = lower($1))
		ORDER BY p.name ASC, p.place_id ASC`

	places := []models.FamousPlace{}
	if err := r.db.SelectContext(ctx, &places, query, city); err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}
	return places, nil
}

// GetPlace retrieves a catalog place
func (r *PlaceRepository) GetPlace(ctx context.Context, placeID int64) (*models.FamousPlace, error) {
	var place models.FamousPlace
	query := `SELECT ` + placeColumns + ` FROM famous_places p WHERE p.place_id = $1`
	if err := r.db.GetContext(ctx, &place, query, placeID); err != nil {
		return nil, wrapError(err, "get place")
	}
	return &place, nil
}

// Link associates a place with a hotel, updating the distance if the link exists
func (r *PlaceRepository) Link(ctx context.Context, hotelID, placeID int64, distanceM *int) error {
	query := `
		INSERT INTO hotel_famous_places (hotel_id, place_id, distance_m)
		VALUES ($1, $2, $3)
		ON CONFLICT (hotel_id, place_id) DO UPDATE SET distance_m = EXCLUDED.distance_m`
	if _, err := r.db.ExecContext(ctx, query, hotelID, placeID, distanceM); err != nil {
		return wrapError(err, "link place")
	}
	return nil
}

// UpdateDistance changes the distance of an existing link
func (r *PlaceRepository) UpdateDistance(ctx context.Context, hotelID, placeID int64, distanceM *int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE hotel_famous_places SET distance_m = $3 WHERE hotel_id = $1 AND place_id = $2`,
		hotelID, placeID, distanceM)
	if err != nil {
		return fmt.Errorf("failed to update distance: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Unlink removes a place from a hotel
func (r *PlaceRepository) Unlink(ctx context.Context, hotelID, placeID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM hotel_famous_places WHERE hotel_id = $1 AND place_id = $2`, hotelID, placeID)
	if err != nil {
		return fmt.Errorf("failed to unlink place: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// NearbyForHotel returns the places linked to a hotel ordered by distance,
// unknown distances last, then name and place id
func (r *PlaceRepository) NearbyForHotel(ctx context.Context, hotelID int64) ([]models.NearbyPlace, error) {
	query := `
		SELECT hfp.hotel_id, ` + placeColumns + `, hfp.distance_m
		FROM hotel_famous_places hfp
		JOIN famous_places p ON p.place_id = hfp.place_id
		WHERE hfp.hotel_id = $1
		ORDER BY hfp.distance_m ASC NULLS LAST, p.name ASC, p.place_id ASC`

	places := []models.NearbyPlace{}
	if err := r.db.SelectContext(ctx, &places, query, hotelID); err != nil {
		return nil, fmt.Errorf("failed to list nearby places: %w", err)
	}
	return places, nil
}
