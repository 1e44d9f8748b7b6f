package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/config"
	"github.com/staynest/booking-backend/internal/models"
)

// recentActivityPerSource is how many bookings and notifications feed the overview
const recentActivityPerSource = 5

// DashboardStore computes host aggregates
type DashboardStore interface {
	HostStats(ctx context.Context, hostID int64) (*models.HostStats, error)
}

// PaymentHistoryStore lists a host's payments
type PaymentHistoryStore interface {
	ListForHost(ctx context.Context, hostID int64, status *models.PaymentStatus) ([]models.PaymentHistoryRow, error)
}

// HostReviewStore reads reviews across a host's hotels
type HostReviewStore interface {
	ListForHost(ctx context.Context, hostID int64) ([]models.ReviewWithGuest, error)
	RatingsForHost(ctx context.Context, hostID int64) ([]int, error)
}

// BookingDetailsLister lists booking projections
type BookingDetailsLister interface {
	ListBookingDetails(ctx context.Context, f models.BookingFilter) ([]models.BookingDetails, error)
}

// InboxReader lists a user's notifications
type InboxReader interface {
	ListForUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]models.Notification, error)
}

// HostService serves the host dashboard: KPIs, financial history and reviews
type HostService struct {
	stats    DashboardStore
	payments PaymentHistoryStore
	reviews  HostReviewStore
	bookings BookingDetailsLister
	inbox    InboxReader
	cfg      config.BookingConfig
	logger   *logrus.Logger
}

// NewHostService creates a new HostService
func NewHostService(
	stats DashboardStore,
	payments PaymentHistoryStore,
	reviews HostReviewStore,
	bookings BookingDetailsLister,
	inbox InboxReader,
	cfg config.BookingConfig,
	logger *logrus.Logger,
) *HostService {
	return &HostService{
		stats:    stats,
		payments: payments,
		reviews:  reviews,
		bookings: bookings,
		inbox:    inbox,
		cfg:      cfg,
		logger:   logger,
	}
}

// Overview returns the dashboard KPIs and the merged recent activity feed
func (s *HostService) Overview(ctx context.Context, principal *models.Principal) (*models.HostOverview, error) {
	if err := requireHost(principal); err != nil {
		return nil, err
	}
	hostID := principal.UserID

	stats, err := s.stats.HostStats(ctx, hostID)
	if err != nil {
		return nil, err
	}
	ratings, err := s.reviews.RatingsForHost(ctx, hostID)
	if err != nil {
		return nil, err
	}
	recent, err := s.bookings.ListBookingDetails(ctx, models.BookingFilter{HostID: &hostID, Limit: recentActivityPerSource})
	if err != nil {
		return nil, err
	}
	notifications, err := s.inbox.ListForUser(ctx, hostID, false, recentActivityPerSource)
	if err != nil {
		return nil, err
	}

	return &models.HostOverview{
		TotalRevenue:    stats.TotalRevenue,
		ActiveListings:  stats.ActiveListings,
		TotalListings:   stats.TotalListings,
		PendingBookings: stats.PendingBookings,
		Rating:          models.SummarizeRatings(ratings),
		RecentActivity: models.MergeActivity(2*recentActivityPerSource,
			bookingActivity(recent), notificationActivity(notifications)),
	}, nil
}

// Financials returns the host's payment history, newest first
func (s *HostService) Financials(ctx context.Context, principal *models.Principal, status *models.PaymentStatus) ([]models.PaymentHistoryRow, error) {
	if err := requireHost(principal); err != nil {
		return nil, err
	}
	if status != nil && !status.Valid() {
		return nil, models.NewValidationError("status", "unknown payment status")
	}
	return s.payments.ListForHost(ctx, principal.UserID, status)
}

// ExportFinancials renders the payment history as an .xlsx workbook
func (s *HostService) ExportFinancials(ctx context.Context, principal *models.Principal, status *models.PaymentStatus) (*bytes.Buffer, error) {
	rows, err := s.Financials(ctx, principal, status)
	if err != nil {
		return nil, err
	}

	buf, err := BuildFinancialsWorkbook(rows, s.cfg.Currency)
	if err != nil {
		s.logger.WithField("host_id", principal.UserID).WithError(err).Error("Failed to build financials export")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"host_id": principal.UserID,
		"rows":    len(rows),
	}).Info("Financials exported")
	return buf, nil
}

// Reviews returns reviews on all of the host's hotels
func (s *HostService) Reviews(ctx context.Context, principal *models.Principal) ([]models.ReviewWithGuest, error) {
	if err := requireHost(principal); err != nil {
		return nil, err
	}
	return s.reviews.ListForHost(ctx, principal.UserID)
}

func requireHost(p *models.Principal) error {
	if p == nil || !p.IsHost() {
		return &models.AuthorizationError{Message: "host account required"}
	}
	return nil
}

func bookingActivity(bookings []models.BookingDetails) []models.ActivityItem {
	items := make([]models.ActivityItem, 0, len(bookings))
	for _, b := range bookings {
		id := b.BookingID
		items = append(items, models.ActivityItem{
			Kind:      "booking",
			At:        b.CreatedAt,
			BookingID: &id,
			Title:     fmt.Sprintf("Booking #%d at %s", b.BookingID, b.HotelName),
			Detail: fmt.Sprintf("%s, %s to %s, %s",
				joinName(b.GuestFirstName, b.GuestLastName), b.CheckInDate, b.CheckOutDate, b.Status),
		})
	}
	return items
}

func notificationActivity(notifications []models.Notification) []models.ActivityItem {
	items := make([]models.ActivityItem, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, models.ActivityItem{
			Kind:      "notification",
			At:        n.CreatedAt,
			BookingID: n.RelatedBookingID,
			Title:     n.Title,
			Detail:    n.Message,
		})
	}
	return items
}
