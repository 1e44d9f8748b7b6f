package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/events"
	"github.com/staynest/booking-backend/internal/models"
)

// NotificationStore is the notification inbox storage
type NotificationStore interface {
	ListForUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]models.Notification, error)
	GetByID(ctx context.Context, notificationID int64) (*models.Notification, error)
	MarkRead(ctx context.Context, notificationID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
}

// NotificationList is a page of a user's inbox
type NotificationList struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
}

// publishTimeout bounds the delivery step so a slow broker cannot hold a request
const publishTimeout = 5 * time.Second

// NotificationService delivers committed notifications and serves the inbox
type NotificationService struct {
	store     NotificationStore
	publisher events.Publisher
	logger    *logrus.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(store NotificationStore, publisher events.Publisher, logger *logrus.Logger) *NotificationService {
	return &NotificationService{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// Deliver logs the notifications that could not be stored with their write
// and publishes the ones that were. It never fails the caller.
func (s *NotificationService) Deliver(ctx context.Context, stored []models.Notification, failed []error, fields logrus.Fields) {
	for _, err := range failed {
		s.logger.WithFields(fields).WithError(err).Warn("Notification was not stored")
	}
	s.Dispatch(ctx, stored)
}

// Dispatch publishes one lifecycle event per stored notification.
// Failures are logged; the stored rows remain and can be re-published.
func (s *NotificationService) Dispatch(ctx context.Context, stored []models.Notification) {
	if len(stored) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	for _, n := range stored {
		event := events.FromNotification(n)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.WithFields(logrus.Fields{
				"notification_id": n.NotificationID,
				"user_id":         n.UserID,
				"type":            n.Type,
			}).WithError(err).Warn("Failed to publish notification event")
		}
	}
}

// List returns the principal's notifications, newest first
func (s *NotificationService) List(ctx context.Context, principal *models.Principal, unreadOnly bool, limit int) (*NotificationList, error) {
	if err := Authorize(principal, NotificationResource{UserID: principalID(principal)}, ActionRead); err != nil {
		return nil, err
	}

	notifications, err := s.store.ListForUser(ctx, principal.UserID, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.store.CountUnread(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	return &NotificationList{Notifications: notifications, UnreadCount: unread}, nil
}

// MarkRead marks one of the principal's notifications read
func (s *NotificationService) MarkRead(ctx context.Context, principal *models.Principal, notificationID int64) error {
	n, err := s.store.GetByID(ctx, notificationID)
	if err != nil {
		return translateError(err, "notification", notificationID)
	}

	if err := Authorize(principal, NotificationResource{NotificationID: n.NotificationID, UserID: n.UserID}, ActionUpdate); err != nil {
		return err
	}

	if n.IsRead {
		return nil
	}
	return translateError(s.store.MarkRead(ctx, notificationID), "notification", notificationID)
}

// MarkAllRead marks every unread notification of the principal read
func (s *NotificationService) MarkAllRead(ctx context.Context, principal *models.Principal) (int64, error) {
	if err := Authorize(principal, NotificationResource{UserID: principalID(principal)}, ActionUpdate); err != nil {
		return 0, err
	}
	return s.store.MarkAllRead(ctx, principal.UserID)
}

func principalID(p *models.Principal) int64 {
	if p == nil {
		return 0
	}
	return p.UserID
}
