package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/staynest/booking-backend/internal/models"
)

const notificationColumns = `notification_id, user_id, type, title, message, related_booking_id, is_read, created_at`

const insertNotificationQuery = `
	INSERT INTO notifications (user_id, type, title, message, related_booking_id, is_read, created_at)
	VALUES ($1, $2, $3, $4, $5, FALSE, NOW())
	RETURNING ` + notificationColumns

// NotificationRepository handles the notification inbox
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// ListForUser returns a user's notifications, newest first
func (r *NotificationRepository) ListForUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + notificationColumns + ` FROM notifications
		WHERE user_id = $1 AND ($2 = FALSE OR is_read = FALSE)
		ORDER BY created_at DESC, notification_id DESC
		LIMIT $3`

	notifications := []models.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, userID, unreadOnly, limit); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// GetByID retrieves one notification
func (r *NotificationRepository) GetByID(ctx context.Context, notificationID int64) (*models.Notification, error) {
	var n models.Notification
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE notification_id = $1`
	if err := r.db.GetContext(ctx, &n, query, notificationID); err != nil {
		return nil, wrapError(err, "get notification")
	}
	return &n, nil
}

// MarkRead marks one notification read
func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID int64) error {
	result, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE notification_id = $1`, notificationID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
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

// MarkAllRead marks all of a user's notifications read and returns how many changed
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return result.RowsAffected()
}

// CountUnread returns the number of unread notifications for a user
func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// insertNotifications writes outbox rows inside tx, each under its own
// savepoint so one bad row cannot abort the surrounding write
func insertNotifications(ctx context.Context, tx *sqlx.Tx, drafts []models.NotificationDraft) ([]models.Notification, []error) {
	var stored []models.Notification
	var failed []error

	for i, d := range drafts {
		savepoint := fmt.Sprintf("notification_%d", i)
		if _, err := tx.ExecContext(ctx, "SAVEPOINT "+savepoint); err != nil {
			failed = append(failed, fmt.Errorf("failed to create savepoint for %s notification to user %d: %w", d.Type, d.UserID, err))
			continue
		}

		var n models.Notification
		err := tx.GetContext(ctx, &n, insertNotificationQuery, d.UserID, d.Type, d.Title, d.Message, d.RelatedBookingID)
		if err != nil {
			failed = append(failed, fmt.Errorf("failed to insert %s notification for user %d: %w", d.Type, d.UserID, err))
			if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepoint); rbErr != nil {
				failed = append(failed, fmt.Errorf("failed to roll back to %s: %w", savepoint, rbErr))
			}
			continue
		}

		if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+savepoint); err != nil {
			failed = append(failed, fmt.Errorf("failed to release %s: %w", savepoint, err))
		}
		stored = append(stored, n)
	}

	return stored, failed
}
