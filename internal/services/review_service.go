package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/database"
	"github.com/staynest/booking-backend/internal/lifecycle"
	"github.com/staynest/booking-backend/internal/models"
)

// ReviewStore persists reviews
type ReviewStore interface {
	Create(ctx context.Context, review *models.Review, notification *models.NotificationDraft) (*database.ReviewWriteResult, error)
	ListForHotel(ctx context.Context, hotelID int64) ([]models.ReviewWithGuest, error)
	ListForHost(ctx context.Context, hostID int64) ([]models.ReviewWithGuest, error)
}

// SnapshotReader loads the lifecycle view of a booking
type SnapshotReader interface {
	GetSnapshot(ctx context.Context, bookingID int64) (*lifecycle.Snapshot, error)
}

// ReviewService creates reviews for completed stays
type ReviewService struct {
	reviews  ReviewStore
	bookings SnapshotReader
	notifier *NotificationService
	logger   *logrus.Logger
}

// NewReviewService creates a new ReviewService
func NewReviewService(reviews ReviewStore, bookings SnapshotReader, notifier *NotificationService, logger *logrus.Logger) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		bookings: bookings,
		notifier: notifier,
		logger:   logger,
	}
}

// Create stores the principal's review of a completed booking and notifies
// the host. Only the booking's guest may review it, exactly once.
func (s *ReviewService) Create(ctx context.Context, principal *models.Principal, bookingID int64, req *models.CreateReviewRequest) (*models.Review, error) {
	if principal == nil {
		return nil, &models.AuthorizationError{Message: "authentication required"}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	snapshot, err := s.bookings.GetSnapshot(ctx, bookingID)
	if err != nil {
		return nil, translateError(err, "booking", bookingID)
	}

	if snapshot.GuestID != principal.UserID {
		return nil, &models.StateError{
			From:    snapshot.Status,
			Action:  "review",
			Message: "only the booking's guest can review it",
		}
	}
	if snapshot.Status != models.BookingStatusCompleted {
		return nil, &models.StateError{
			From:    snapshot.Status,
			Action:  "review",
			Message: fmt.Sprintf("only completed stays can be reviewed, booking is %s", snapshot.Status),
		}
	}

	review := &models.Review{
		BookingID: bookingID,
		HotelID:   snapshot.HotelID,
		GuestID:   principal.UserID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	draft := &models.NotificationDraft{
		UserID:           snapshot.HostID,
		Type:             models.NotificationNewReview,
		Title:            "New review",
		Message:          fmt.Sprintf("%s received a %d-star review.", snapshot.HotelName, req.Rating),
		RelatedBookingID: &bookingID,
	}

	result, err := s.reviews.Create(ctx, review, draft)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrStaleStatus):
			return nil, &models.StateError{From: snapshot.Status, Action: "review", Message: "booking is no longer completed"}
		case errors.Is(err, database.ErrDuplicate):
			return nil, &models.ConflictError{Message: "this booking has already been reviewed"}
		}
		return nil, translateError(err, "booking", bookingID)
	}

	fields := logrus.Fields{
		"review_id":  result.Review.ReviewID,
		"booking_id": bookingID,
		"hotel_id":   snapshot.HotelID,
		"rating":     req.Rating,
	}
	s.logger.WithFields(fields).Info("Review created")
	s.notifier.Deliver(ctx, result.Notifications, result.NotificationErrors, fields)

	return result.Review, nil
}

// ListForHotel returns a hotel's reviews, newest first
func (s *ReviewService) ListForHotel(ctx context.Context, hotelID int64) ([]models.ReviewWithGuest, error) {
	return s.reviews.ListForHotel(ctx, hotelID)
}
