package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/staynest/booking-backend/internal/models"
)

// WishlistRepository handles guest wishlists
type WishlistRepository struct {
	db *sqlx.DB
}

// NewWishlistRepository creates a new WishlistRepository
func NewWishlistRepository(db *sqlx.DB) *WishlistRepository {
	return &WishlistRepository{db: db}
}

// Add inserts a (guest, hotel) entry; a repeated pair returns ErrDuplicate
func (r *WishlistRepository) Add(ctx context.Context, guestID, hotelID int64) (*models.WishlistEntry, error) {
	query := `
		INSERT INTO wishlists (guest_id, hotel_id, created_at)
		VALUES ($1, $2, NOW())
		RETURNING wishlist_id, guest_id, hotel_id, created_at`

	var entry models.WishlistEntry
	if err := r.db.GetContext(ctx, &entry, query, guestID, hotelID); err != nil {
		return nil, wrapError(err, "add wishlist entry")
	}
	return &entry, nil
}

// Remove deletes a (guest, hotel) entry
func (r *WishlistRepository) Remove(ctx context.Context, guestID, hotelID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM wishlists WHERE guest_id = $1 AND hotel_id = $2`, guestID, hotelID)
	if err != nil {
		return fmt.Errorf("failed to remove wishlist entry: %w", err)
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

// ListForGuest returns a guest's wishlist with hotel listings, newest first
func (r *WishlistRepository) ListForGuest(ctx context.Context, guestID int64) ([]models.WishlistItem, error) {
	query := `
		SELECT w.wishlist_id, w.created_at AS added_at, ` + listingProjection + `
		FROM wishlists w
		JOIN hotels h ON h.hotel_id = w.hotel_id
		JOIN users u ON u.user_id = h.host_id
		` + ratingJoin + `
		WHERE w.guest_id = $1
		ORDER BY w.created_at DESC, w.wishlist_id DESC`

	items := []models.WishlistItem{}
	if err := r.db.SelectContext(ctx, &items, query, guestID); err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	return items, nil
}
