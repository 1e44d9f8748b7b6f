package models

import "time"

// NotificationType is the closed set of notification kinds
type NotificationType string

const (
	NotificationBookingCreated   NotificationType = "booking_created"
	NotificationBookingConfirmed NotificationType = "booking_confirmed"
	NotificationBookingCancelled NotificationType = "booking_cancelled"
	NotificationBookingCompleted NotificationType = "booking_completed"
	NotificationBookingNoShow    NotificationType = "booking_no_show"
	NotificationNewReview        NotificationType = "new_review"
	NotificationPaymentCompleted NotificationType = "payment_completed"
	NotificationPaymentFailed    NotificationType = "payment_failed"
)

// Notification is addressed to one user
type Notification struct {
	NotificationID   int64            `json:"notification_id" db:"notification_id"`
	UserID           int64            `json:"user_id" db:"user_id"`
	Type             NotificationType `json:"type" db:"type"`
	Title            string           `json:"title" db:"title"`
	Message          string           `json:"message" db:"message"`
	RelatedBookingID *int64           `json:"related_booking_id,omitempty" db:"related_booking_id"`
	IsRead           bool             `json:"is_read" db:"is_read"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
}

// NotificationDraft is a notification that has not been stored yet
type NotificationDraft struct {
	UserID           int64
	Type             NotificationType
	Title            string
	Message          string
	RelatedBookingID *int64
}
