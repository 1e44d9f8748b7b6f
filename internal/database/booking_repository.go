package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/staynest/booking-backend/internal/lifecycle"
	"github.com/staynest/booking-backend/internal/models"
)

const bookingColumns = `booking_id, hotel_id, guest_id, check_in_date, check_out_date,
	num_guests, total_price, status, notes, cancelled_at, created_at, updated_at`

// WriteResult is what a booking write committed. Notifications holds the
// outbox rows that were stored; NotificationErrors holds the ones that were
// rolled back to their savepoint without failing the write.
type WriteResult struct {
	Booking            *models.Booking
	Notifications      []models.Notification
	NotificationErrors []error
}

// BookingRepository handles bookings and applies lifecycle effects
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a booking behind the double-booking guard and applies the
// creation effects, all in one transaction:
//  1. lock the hotel row (serializes writers for the same hotel)
//  2. scan active bookings for an overlap
//  3. insert, then apply payment and notification effects
//
// The bookings_no_overlap exclusion constraint backs this up; its violation
// is reported as ErrBookingOverlap too.
func (r *BookingRepository) Create(ctx context.Context, b *models.Booking, effects []lifecycle.Effect) (*WriteResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockHotel(ctx, tx, b.HotelID); err != nil {
		return nil, err
	}

	overlap, err := hasOverlap(ctx, tx, b.HotelID, b.Stay(), 0)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrBookingOverlap
	}

	query := `
		INSERT INTO bookings (hotel_id, guest_id, check_in_date, check_out_date,
			num_guests, total_price, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING ` + bookingColumns

	var created models.Booking
	err = tx.GetContext(ctx, &created, query,
		b.HotelID, b.GuestID, b.CheckInDate, b.CheckOutDate,
		b.NumGuests, b.TotalPrice, b.Status, b.Notes)
	if err != nil {
		return nil, wrapError(err, "insert booking")
	}

	result, err := applyEffects(ctx, tx, created.BookingID, effects)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, wrapError(err, "commit booking")
	}

	result.Booking = &created
	return result, nil
}

// ApplyTransition applies a lifecycle transition atomically. The booking row
// is locked and its status must still equal t.From, otherwise ErrStaleStatus.
func (r *BookingRepository) ApplyTransition(ctx context.Context, t lifecycle.Transition) (*WriteResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current models.BookingStatus
	err = tx.GetContext(ctx, &current, `SELECT status FROM bookings WHERE booking_id = $1 FOR UPDATE`, t.BookingID)
	if err != nil {
		return nil, wrapError(err, "lock booking")
	}
	if current != t.From {
		return nil, ErrStaleStatus
	}

	result, err := applyEffects(ctx, tx, t.BookingID, t.Effects)
	if err != nil {
		return nil, err
	}

	var updated models.Booking
	err = tx.GetContext(ctx, &updated, `SELECT `+bookingColumns+` FROM bookings WHERE booking_id = $1`, t.BookingID)
	if err != nil {
		return nil, wrapError(err, "reload booking")
	}

	if err := tx.Commit(); err != nil {
		return nil, wrapError(err, "commit transition")
	}

	result.Booking = &updated
	return result, nil
}

// Reschedule moves a pending booking to new dates and price. The booking is
// excluded from its own overlap scan.
func (r *BookingRepository) Reschedule(ctx context.Context, bookingID int64, stay models.StayRange, totalPrice float64) (*models.Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var hotelID int64
	if err := tx.GetContext(ctx, &hotelID, `SELECT hotel_id FROM bookings WHERE booking_id = $1`, bookingID); err != nil {
		return nil, wrapError(err, "get booking hotel")
	}

	// Same lock order as Create: hotel first, then the booking row
	if err := lockHotel(ctx, tx, hotelID); err != nil {
		return nil, err
	}

	var current models.BookingStatus
	if err := tx.GetContext(ctx, &current, `SELECT status FROM bookings WHERE booking_id = $1 FOR UPDATE`, bookingID); err != nil {
		return nil, wrapError(err, "lock booking")
	}
	if current != models.BookingStatusPending {
		return nil, ErrStaleStatus
	}

	overlap, err := hasOverlap(ctx, tx, hotelID, stay, bookingID)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrBookingOverlap
	}

	query := `
		UPDATE bookings SET check_in_date = $2, check_out_date = $3, total_price = $4, updated_at = NOW()
		WHERE booking_id = $1
		RETURNING ` + bookingColumns

	var updated models.Booking
	if err := tx.GetContext(ctx, &updated, query, bookingID, stay.CheckIn, stay.CheckOut, totalPrice); err != nil {
		return nil, wrapError(err, "reschedule booking")
	}

	if err := tx.Commit(); err != nil {
		return nil, wrapError(err, "commit reschedule")
	}
	return &updated, nil
}

type snapshotRow struct {
	BookingID    int64                `db:"booking_id"`
	HotelID      int64                `db:"hotel_id"`
	HotelName    string               `db:"hotel_name"`
	GuestID      int64                `db:"guest_id"`
	HostID       int64                `db:"host_id"`
	Status       models.BookingStatus `db:"status"`
	CheckInDate  models.Date          `db:"check_in_date"`
	CheckOutDate models.Date          `db:"check_out_date"`
	TotalPrice   float64              `db:"total_price"`
}

// GetSnapshot loads what the state machine needs to decide on a booking
func (r *BookingRepository) GetSnapshot(ctx context.Context, bookingID int64) (*lifecycle.Snapshot, error) {
	query := `
		SELECT b.booking_id, b.hotel_id, h.name AS hotel_name, b.guest_id, h.host_id,
			b.status, b.check_in_date, b.check_out_date, b.total_price
		FROM bookings b
		JOIN hotels h ON h.hotel_id = b.hotel_id
		WHERE b.booking_id = $1`

	var row snapshotRow
	if err := r.db.GetContext(ctx, &row, query, bookingID); err != nil {
		return nil, wrapError(err, "get booking snapshot")
	}

	return &lifecycle.Snapshot{
		BookingID:  row.BookingID,
		HotelID:    row.HotelID,
		HotelName:  row.HotelName,
		GuestID:    row.GuestID,
		HostID:     row.HostID,
		Status:     row.Status,
		Stay:       models.StayRange{CheckIn: row.CheckInDate, CheckOut: row.CheckOutDate},
		TotalPrice: row.TotalPrice,
	}, nil
}

// IsAvailable reports whether no active booking overlaps the stay.
// It is a plain read; writers go through Create's guard.
func (r *BookingRepository) IsAvailable(ctx context.Context, hotelID int64, stay models.StayRange) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, overlapQuery, hotelID, stay.CheckIn, stay.CheckOut, 0, activeStatuses); err != nil {
		return false, fmt.Errorf("failed to check availability: %w", err)
	}
	return !exists, nil
}

const overlapQuery = `
	SELECT EXISTS (
		SELECT 1 FROM bookings
		WHERE hotel_id = $1
			AND status = ANY($5::booking_status[])
			AND check_in_date < $3
			AND $2 < check_out_date
			AND booking_id <> $4
	)`

func lockHotel(ctx context.Context, tx *sqlx.Tx, hotelID int64) error {
	var locked int64
	err := tx.GetContext(ctx, &locked, `SELECT hotel_id FROM hotels WHERE hotel_id = $1 FOR UPDATE`, hotelID)
	if err != nil {
		return wrapError(err, "lock hotel")
	}
	return nil
}

func hasOverlap(ctx context.Context, tx *sqlx.Tx, hotelID int64, stay models.StayRange, excludeBookingID int64) (bool, error) {
	var exists bool
	if err := tx.GetContext(ctx, &exists, overlapQuery, hotelID, stay.CheckIn, stay.CheckOut, excludeBookingID, activeStatuses); err != nil {
		return false, fmt.Errorf("failed to check booking overlap: %w", err)
	}
	return exists, nil
}

// applyEffects writes the primary effects first and the notification outbox
// last. A failing notification is rolled back to its savepoint and reported
// in the result; any other failure aborts the transaction.
func applyEffects(ctx context.Context, tx *sqlx.Tx, bookingID int64, effects []lifecycle.Effect) (*WriteResult, error) {
	var drafts []models.NotificationDraft

	for _, effect := range effects {
		switch e := effect.(type) {
		case lifecycle.SetStatus:
			_, err := tx.ExecContext(ctx,
				`UPDATE bookings SET status = $2, updated_at = NOW() WHERE booking_id = $1`,
				bookingID, e.Status)
			if err != nil {
				return nil, wrapError(err, "update booking status")
			}

		case lifecycle.StampCancelledAt:
			_, err := tx.ExecContext(ctx,
				`UPDATE bookings SET cancelled_at = $2 WHERE booking_id = $1`,
				bookingID, e.At)
			if err != nil {
				return nil, wrapError(err, "stamp cancellation")
			}

		case lifecycle.RecordPayment:
			if err := recordPayment(ctx, tx, bookingID, e); err != nil {
				return nil, err
			}

		case lifecycle.Notify:
			d := e.Notification
			if d.RelatedBookingID == nil {
				id := bookingID
				d.RelatedBookingID = &id
			}
			drafts = append(drafts, d)

		default:
			return nil, fmt.Errorf("unsupported effect %T", effect)
		}
	}

	stored, failed := insertNotifications(ctx, tx, drafts)
	return &WriteResult{Notifications: stored, NotificationErrors: failed}, nil
}

const paymentInsert = `
		INSERT INTO payments (booking_id, amount, payment_method, status, transaction_id, payment_date)
		VALUES ($1, $2, $3, $4, $5, NOW())`

func recordPayment(ctx context.Context, tx *sqlx.Tx, bookingID int64, p lifecycle.RecordPayment) error {
	var transactionID *string
	if p.TransactionID != "" {
		transactionID = &p.TransactionID
	}

	var query string
	switch p.Mode {
	case lifecycle.PaymentUpsert:
		query = paymentInsert + `
		ON CONFLICT (booking_id) DO UPDATE SET
			status = EXCLUDED.status,
			transaction_id = COALESCE(EXCLUDED.transaction_id, payments.transaction_id),
			payment_date = NOW()`
	case lifecycle.PaymentSettle:
		query = paymentInsert + `
		ON CONFLICT (booking_id) DO UPDATE SET status = EXCLUDED.status
		WHERE payments.status = 'pending'`
	default:
		query = paymentInsert + `
		ON CONFLICT (booking_id) DO NOTHING`
	}

	if _, err := tx.ExecContext(ctx, query, bookingID, p.Amount, p.Method, p.Status, transactionID); err != nil {
		return wrapError(err, "record payment")
	}
	return nil
}
