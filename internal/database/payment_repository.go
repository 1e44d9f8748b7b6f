package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/staynest/booking-backend/internal/models"
)

// PaymentRepository handles payment reads. Payments are written only as
// lifecycle effects inside BookingRepository transactions.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// ListForHost returns the payment history of all hotels owned by a host,
// newest first, optionally filtered by payment status
func (r *PaymentRepository) ListForHost(ctx context.Context, hostID int64, status *models.PaymentStatus) ([]models.PaymentHistoryRow, error) {
	query := `
		SELECT p.payment_id, p.booking_id, p.amount, p.payment_method, p.status,
			p.transaction_id, p.payment_date,
			h.hotel_id, h.name AS hotel_name,
			g.first_name AS guest_first_name, g.last_name AS guest_last_name,
			b.check_in_date, b.check_out_date
		FROM payments p
		JOIN bookings b ON b.booking_id = p.booking_id
		JOIN hotels h ON h.hotel_id = b.hotel_id
		JOIN users g ON g.user_id = b.guest_id
		WHERE h.host_id = $1 AND ($2::payment_status IS NULL OR p.status = $2::payment_status)
		ORDER BY p.payment_date DESC, p.payment_id DESC`

	rows := []models.PaymentHistoryRow{}
	if err := r.db.SelectContext(ctx, &rows, query, hostID, status); err != nil {
		return nil, fmt.Errorf("failed to list host payments: %w", err)
	}
	return rows, nil
}
