package database

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/staynest/booking-backend/internal/lifecycle"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingRowColumns = []string{
	"booking_id", "hotel_id", "guest_id", "check_in_date", "check_out_date",
	"num_guests", "total_price", "status", "notes", "cancelled_at", "created_at", "updated_at",
}

var notificationRowColumns = []string{
	"notification_id", "user_id", "type", "title", "message", "related_booking_id", "is_read", "created_at",
}

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func testStay() models.StayRange {
	d := models.NewDate(2025, time.June, 10)
	return models.StayRange{CheckIn: d, CheckOut: d.AddDays(3)}
}

func bookingRow(id int64, status models.BookingStatus, stay models.StayRange) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(bookingRowColumns).AddRow(
		id, int64(7), int64(100), stay.CheckIn.Time, stay.CheckOut.Time,
		2, 267.0, string(status), nil, nil, now, now,
	)
}

func newPendingBooking(stay models.StayRange) *models.Booking {
	return &models.Booking{
		HotelID:      7,
		GuestID:      100,
		CheckInDate:  stay.CheckIn,
		CheckOutDate: stay.CheckOut,
		NumGuests:    2,
		TotalPrice:   267,
		Status:       models.BookingStatusPending,
	}
}

func hostNotification() []lifecycle.Effect {
	return []lifecycle.Effect{
		lifecycle.Notify{Notification: models.NotificationDraft{
			UserID: 200, Type: models.NotificationBookingCreated, Title: "New booking request", Message: "msg",
		}},
	}
}

func TestBookingRepository_Create(t *testing.T) {
	ctx := context.Background()
	stay := testStay()

	t.Run("Success", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT hotel_id FROM hotels WHERE hotel_id = \$1 FOR UPDATE`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"hotel_id"}).AddRow(int64(7)))
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(int64(7), "2025-06-10", "2025-06-13", int64(0), activeStatuses).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnRows(bookingRow(42, models.BookingStatusPending, stay))
		mock.ExpectExec(`SAVEPOINT notification_0`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`INSERT INTO notifications`).
			WithArgs(int64(200), models.NotificationBookingCreated, "New booking request", "msg", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(notificationRowColumns).
				AddRow(int64(1), int64(200), "booking_created", "New booking request", "msg", int64(42), false, time.Now()))
		mock.ExpectExec(`RELEASE SAVEPOINT notification_0`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		result, err := repo.Create(ctx, newPendingBooking(stay), hostNotification())
		require.NoError(t, err)
		require.NotNil(t, result.Booking)
		assert.Equal(t, int64(42), result.Booking.BookingID)
		assert.Equal(t, models.BookingStatusPending, result.Booking.Status)
		require.Len(t, result.Notifications, 1)
		require.NotNil(t, result.Notifications[0].RelatedBookingID)
		assert.Equal(t, int64(42), *result.Notifications[0].RelatedBookingID)
		assert.Empty(t, result.NotificationErrors)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Overlapping Booking", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT hotel_id FROM hotels WHERE hotel_id = \$1 FOR UPDATE`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"hotel_id"}).AddRow(int64(7)))
		mock.ExpectQuery(`SELECT EXISTS`).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		result, err := repo.Create(ctx, newPendingBooking(stay), hostNotification())
		assert.ErrorIs(t, err, ErrBookingOverlap)
		assert.Nil(t, result)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Exclusion Constraint Violation", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT hotel_id FROM hotels`).
			WillReturnRows(sqlmock.NewRows([]string{"hotel_id"}).AddRow(int64(7)))
		mock.ExpectQuery(`SELECT EXISTS`).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnError(&pq.Error{Code: "23P01", Message: "conflicting key value violates exclusion constraint"})
		mock.ExpectRollback()

		_, err := repo.Create(ctx, newPendingBooking(stay), nil)
		assert.ErrorIs(t, err, ErrBookingOverlap)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Hotel Not Found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT hotel_id FROM hotels`).WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.Create(ctx, newPendingBooking(stay), nil)
		assert.ErrorIs(t, err, ErrNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Host Booking Records Payment", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewBookingRepository(db)

		b := newPendingBooking(stay)
		b.Status = models.BookingStatusConfirmed
		effects := []lifecycle.Effect{
			lifecycle.RecordPayment{Amount: 267, Method: models.PaymentMethodHostCreated, Status: models.PaymentStatusCompleted, Mode: lifecycle.PaymentUpsert},
		}

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT hotel_id FROM hotels`).
			WillReturnRows(sqlmock.NewRows([]string{"hotel_id"}).AddRow(int64(7)))
		mock.ExpectQuery(`SELECT EXISTS`).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnRows(bookingRow(43, models.BookingStatusConfirmed, stay))
		mock.ExpectExec(`INSERT INTO payments (.+) ON CONFLICT \(booking_id\) DO UPDATE`).
			WithArgs(int64(43), 267.0, models.PaymentMethodHostCreated, models.PaymentStatusCompleted, nil).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		result, err := repo.Create(ctx, b, effects)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusConfirmed, result.Booking.Status)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_ApplyTransition(t *testing.T) {
	ctx := context.Background()
	stay := testStay()

	payTransition := func() lifecycle.Transition {
		snapshot := lifecycle.Snapshot{
			BookingID: 42, HotelID: 7, HotelName: "Villa", GuestID: 100, HostID: 200,
			Status: models.BookingStatusPending, Stay: stay, TotalPrice: 267,
		}
		tr, err := lifecycle.Decide(snapshot, lifecycle.Command{
			Kind:    lifecycle.CommandPay,
			Payment: lifecycle.PaymentRef{Method: "simulated", TransactionID: "SIM-1"},
		})
		require.NoError(t, err)
		return tr
	}

	t.Run("Notification Failure Does Not Roll Back", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM bookings WHERE booking_id = \$1 FOR UPDATE`).
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))
		mock.ExpectExec(`UPDATE bookings SET status = \$2`).
			WithArgs(int64(42), models.BookingStatusConfirmed).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO payments`).
			WithArgs(int64(42), 267.0, "simulated", models.PaymentStatusCompleted, "SIM-1").
			WillReturnResult(sqlmock.NewResult(1, 1))

		mock.ExpectExec(`SAVEPOINT notification_0`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`INSERT INTO notifications`).
			WillReturnRows(sqlmock.NewRows(notificationRowColumns).
				AddRow(int64(1), int64(100), "booking_confirmed", "Booking confirmed", "msg", int64(42), false, time.Now()))
		mock.ExpectExec(`RELEASE SAVEPOINT notification_0`).WillReturnResult(sqlmock.NewResult(0, 0))

		mock.ExpectExec(`SAVEPOINT notification_1`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`INSERT INTO notifications`).WillReturnError(fmt.Errorf("notifications table unavailable"))
		mock.ExpectExec(`ROLLBACK TO SAVEPOINT notification_1`).WillReturnResult(sqlmock.NewResult(0, 0))

		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE booking_id = \$1`).
			WithArgs(int64(42)).
			WillReturnRows(bookingRow(42, models.BookingStatusConfirmed, stay))
		mock.ExpectCommit()

		result, err := repo.ApplyTransition(ctx, payTransition())
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusConfirmed, result.Booking.Status)
		assert.Len(t, result.Notifications, 1)
		require.Len(t, result.NotificationErrors, 1)
		assert.Contains(t, result.NotificationErrors[0].Error(), "payment_completed")

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Complete Settles Only A Pending Payment", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewBookingRepository(db)

		snapshot := lifecycle.Snapshot{
			BookingID: 42, HotelID: 7, HotelName: "Villa", GuestID: 100, HostID: 200,
			Status: models.BookingStatusConfirmed, Stay: stay, TotalPrice: 267,
		}
		tr, err := lifecycle.Decide(snapshot, lifecycle.Command{Kind: lifecycle.CommandComplete})
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM bookings WHERE booking_id = \$1 FOR UPDATE`).
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("confirmed"))
		mock.ExpectExec(`UPDATE bookings SET status = \$2`).
			WithArgs(int64(42), models.BookingStatusCompleted).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`ON CONFLICT \(booking_id\) DO UPDATE SET status = EXCLUDED.status\s+WHERE payments.status = 'pending'`).
			WithArgs(int64(42), 267.0, models.PaymentMethodManual, models.PaymentStatusCompleted, nil).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`SAVEPOINT notification_0`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`INSERT INTO notifications`).
			WillReturnRows(sqlmock.NewRows(notificationRowColumns).
				AddRow(int64(1), int64(100), "booking_completed", "Stay completed", "msg", int64(42), false, time.Now()))
		mock.ExpectExec(`RELEASE SAVEPOINT notification_0`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE booking_id = \$1`).
			WithArgs(int64(42)).
			WillReturnRows(bookingRow(42, models.BookingStatusCompleted, stay))
		mock.ExpectCommit()

		result, err := repo.ApplyTransition(ctx, tr)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusCompleted, result.Booking.Status)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Stale Status", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM bookings WHERE booking_id = \$1 FOR UPDATE`).
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("cancelled"))
		mock.ExpectRollback()

		result, err := repo.ApplyTransition(ctx, payTransition())
		assert.ErrorIs(t, err, ErrStaleStatus)
		assert.Nil(t, result)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Payment Failure Rolls Back", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM bookings`).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))
		mock.ExpectExec(`UPDATE bookings SET status`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO payments`).WillReturnError(fmt.Errorf("connection reset"))
		mock.ExpectRollback()

		_, err := repo.ApplyTransition(ctx, payTransition())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to record payment")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_Reschedule(t *testing.T) {
	ctx := context.Background()
	newStay := models.StayRange{CheckIn: models.NewDate(2025, time.June, 20), CheckOut: models.NewDate(2025, time.June, 22)}

	t.Run("Excludes Itself From Overlap Scan", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT hotel_id FROM bookings WHERE booking_id = \$1`).
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"hotel_id"}).AddRow(int64(7)))
		mock.ExpectQuery(`SELECT hotel_id FROM hotels WHERE hotel_id = \$1 FOR UPDATE`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"hotel_id"}).AddRow(int64(7)))
		mock.ExpectQuery(`SELECT status FROM bookings WHERE booking_id = \$1 FOR UPDATE`).
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(int64(7), "2025-06-20", "2025-06-22", int64(42), activeStatuses).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery(`UPDATE bookings SET check_in_date`).
			WithArgs(int64(42), "2025-06-20", "2025-06-22", 178.0).
			WillReturnRows(bookingRow(42, models.BookingStatusPending, newStay))
		mock.ExpectCommit()

		updated, err := repo.Reschedule(ctx, 42, newStay, 178)
		require.NoError(t, err)
		assert.Equal(t, "2025-06-20", updated.CheckInDate.String())

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Only Pending Bookings", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT hotel_id FROM bookings`).
			WillReturnRows(sqlmock.NewRows([]string{"hotel_id"}).AddRow(int64(7)))
		mock.ExpectQuery(`SELECT hotel_id FROM hotels`).
			WillReturnRows(sqlmock.NewRows([]string{"hotel_id"}).AddRow(int64(7)))
		mock.ExpectQuery(`SELECT status FROM bookings`).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("confirmed"))
		mock.ExpectRollback()

		_, err := repo.Reschedule(ctx, 42, newStay, 178)
		assert.ErrorIs(t, err, ErrStaleStatus)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_GetSnapshot(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBookingRepository(db)
	stay := testStay()

	mock.ExpectQuery(`SELECT (.+) FROM bookings b JOIN hotels h`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{
			"booking_id", "hotel_id", "hotel_name", "guest_id", "host_id",
			"status", "check_in_date", "check_out_date", "total_price",
		}).AddRow(int64(42), int64(7), "Villa", int64(100), int64(200), "confirmed", stay.CheckIn.Time, stay.CheckOut.Time, 267.0))

	snapshot, err := repo.GetSnapshot(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, snapshot.Status)
	assert.Equal(t, int64(200), snapshot.HostID)
	assert.Equal(t, 3, snapshot.Stay.Nights())

	assert.NoError(t, mock.ExpectationsWereMet())
}
