// Package events carries booking lifecycle events out of the process once
// the owning transaction has committed. The notification rows written with
// the booking are the source of truth; publishing is best-effort delivery.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/models"
)

// LifecycleEvent is the message published for every stored notification
type LifecycleEvent struct {
	EventID        string                  `json:"event_id"`
	Type           models.NotificationType `json:"type"`
	NotificationID int64                   `json:"notification_id"`
	UserID         int64                   `json:"user_id"`
	BookingID      *int64                  `json:"booking_id,omitempty"`
	Title          string                  `json:"title"`
	Message        string                  `json:"message"`
	OccurredAt     time.Time               `json:"occurred_at"`
}

// FromNotification builds the event for a stored notification
func FromNotification(n models.Notification) LifecycleEvent {
	occurred := n.CreatedAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	return LifecycleEvent{
		EventID:        uuid.New().String(),
		Type:           n.Type,
		NotificationID: n.NotificationID,
		UserID:         n.UserID,
		BookingID:      n.RelatedBookingID,
		Title:          n.Title,
		Message:        n.Message,
		OccurredAt:     occurred.UTC(),
	}
}

// RoutingKey is the topic the event is published under
func (e LifecycleEvent) RoutingKey() string {
	return string(e.Type)
}

// Publisher delivers lifecycle events
type Publisher interface {
	Publish(ctx context.Context, event LifecycleEvent) error
	Close() error
}

// NoopPublisher drops events. Used when no broker is configured.
type NoopPublisher struct {
	logger *logrus.Logger
}

// NewNoopPublisher creates a publisher that only logs at debug level
func NewNoopPublisher(logger *logrus.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger}
}

// Publish implements Publisher
func (p *NoopPublisher) Publish(ctx context.Context, event LifecycleEvent) error {
	p.logger.WithFields(logrus.Fields{
		"event_id": event.EventID,
		"type":     event.Type,
		"user_id":  event.UserID,
	}).Debug("Event publishing disabled, dropping event")
	return nil
}

// Close implements Publisher
func (p *NoopPublisher) Close() error { return nil }
