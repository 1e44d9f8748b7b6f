package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/staynest/booking-backend/internal/models"
)

const reviewColumns = `review_id, booking_id, hotel_id, guest_id, rating, comment, created_at, updated_at`

// ReviewRepository handles database operations for reviews
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository creates a new ReviewRepository
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// ReviewWriteResult is what a review insert committed
type ReviewWriteResult struct {
	Review             *models.Review
	Notifications      []models.Notification
	NotificationErrors []error
}

// Create inserts a review for a completed booking and queues the host
// notification in the same transaction. The insert re-checks, under the
// booking row lock, that the booking is completed and belongs to the guest;
// if not it returns ErrStaleStatus. A second review for the same booking
// returns ErrDuplicate.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review, notification *models.NotificationDraft) (*ReviewWriteResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status models.BookingStatus
	err = tx.GetContext(ctx, &status,
		`SELECT status FROM bookings WHERE booking_id = $1 AND guest_id = $2 FOR SHARE`,
		review.BookingID, review.GuestID)
	if err != nil {
		return nil, wrapError(err, "lock booking for review")
	}
	if status != models.BookingStatusCompleted {
		return nil, ErrStaleStatus
	}

	query := `
		INSERT INTO reviews (booking_id, hotel_id, guest_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING ` + reviewColumns

	var created models.Review
	err = tx.GetContext(ctx, &created, query, review.BookingID, review.HotelID, review.GuestID, review.Rating, review.Comment)
	if err != nil {
		return nil, wrapError(err, "create review")
	}

	result := &ReviewWriteResult{Review: &created}
	if notification != nil {
		result.Notifications, result.NotificationErrors = insertNotifications(ctx, tx, []models.NotificationDraft{*notification})
	}

	if err := tx.Commit(); err != nil {
		return nil, wrapError(err, "commit review")
	}
	return result, nil
}

// ListForHotel returns all reviews for a hotel, newest first
func (r *ReviewRepository) ListForHotel(ctx context.Context, hotelID int64) ([]models.ReviewWithGuest, error) {
	return r.list(ctx, `WHERE rv.hotel_id = $1`, hotelID)
}

// ListForHost returns all reviews on hotels owned by a host, newest first
func (r *ReviewRepository) ListForHost(ctx context.Context, hostID int64) ([]models.ReviewWithGuest, error) {
	return r.list(ctx, `WHERE h.host_id = $1`, hostID)
}

func (r *ReviewRepository) list(ctx context.Context, where string, arg int64) ([]models.ReviewWithGuest, error) {
	query := `
		SELECT rv.review_id, rv.booking_id, rv.hotel_id, rv.guest_id, rv.rating, rv.comment,
			rv.created_at, rv.updated_at,
			g.first_name AS guest_first_name, g.last_name AS guest_last_name,
			g.profile_photo_url AS guest_profile_photo_url,
			h.name AS hotel_name
		FROM reviews rv
		JOIN users g ON g.user_id = rv.guest_id
		JOIN hotels h ON h.hotel_id = rv.hotel_id
		` + where + `
		ORDER BY rv.created_at DESC, rv.review_id DESC`

	reviews := []models.ReviewWithGuest{}
	if err := r.db.SelectContext(ctx, &reviews, query, arg); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// RatingsForHost returns every rating left on a host's hotels
func (r *ReviewRepository) RatingsForHost(ctx context.Context, hostID int64) ([]int, error) {
	ratings := []int{}
	query := `SELECT rv.rating FROM reviews rv JOIN hotels h ON h.hotel_id = rv.hotel_id WHERE h.host_id = $1`
	if err := r.db.SelectContext(ctx, &ratings, query, hostID); err != nil {
		return nil, fmt.Errorf("failed to list host ratings: %w", err)
	}
	return ratings, nil
}
