package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/staynest/booking-backend/internal/config"
	"github.com/staynest/booking-backend/internal/database"
	"github.com/staynest/booking-backend/internal/lifecycle"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	hostID  int64 = 1
	guestID int64 = 2
	otherID int64 = 3
	hotelID int64 = 10
)

type bookingEnv struct {
	store     *memoryStore
	publisher *recordingPublisher
	notifier  *NotificationService
	service   *BookingService
	host      *models.Principal
	guest     *models.Principal
	other     *models.Principal
}

func newBookingEnv(t *testing.T) *bookingEnv {
	t.Helper()

	store := newMemoryStore()
	store.addUser(hostID, models.UserTypeHost, "host@example.com")
	store.addUser(guestID, models.UserTypeGuest, "guest@example.com")
	store.addUser(otherID, models.UserTypeGuest, "other@example.com")
	store.addHotel(hotelID, hostID, 89, 4, true)

	publisher := &recordingPublisher{}
	logger := quietLogger()
	notifier := NewNotificationService(inboxTable{store}, publisher, logger)
	cfg := config.BookingConfig{Currency: "USD", SimulatedPaymentMethod: "simulated"}

	service := NewBookingService(store, hotelTable{store}, userTable{store}, notifier, cfg, logger)
	service.now = func() time.Time { return time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC) }

	return &bookingEnv{
		store:     store,
		publisher: publisher,
		notifier:  notifier,
		service:   service,
		host:      &models.Principal{UserID: hostID, Type: models.UserTypeHost},
		guest:     &models.Principal{UserID: guestID, Type: models.UserTypeGuest},
		other:     &models.Principal{UserID: otherID, Type: models.UserTypeGuest},
	}
}

func date(s string) models.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func guestRequest(in, out string, guests int) *models.CreateBookingRequest {
	return &models.CreateBookingRequest{HotelID: hotelID, CheckIn: date(in), CheckOut: date(out), NumGuests: guests}
}

func TestBookingLifecycle_GuestBooksAndPays(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	booking, err := env.service.CreateGuestBooking(ctx, env.guest, guestRequest("2025-06-10", "2025-06-13", 2))
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Equal(t, 267.0, booking.TotalPrice)

	hostInbox := env.store.notificationsFor(hostID)
	require.Len(t, hostInbox, 1)
	assert.Equal(t, models.NotificationBookingCreated, hostInbox[0].Type)
	require.NotNil(t, hostInbox[0].RelatedBookingID)
	assert.Equal(t, booking.BookingID, *hostInbox[0].RelatedBookingID)

	paid, err := env.service.Pay(ctx, env.guest, booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, paid.Status)

	payment := env.store.payment(booking.BookingID)
	require.NotNil(t, payment)
	assert.Equal(t, 267.0, payment.Amount)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	assert.Equal(t, "simulated", payment.PaymentMethod)
	require.NotNil(t, payment.TransactionID)
	assert.Contains(t, *payment.TransactionID, "SIM-")

	guestInbox := env.store.notificationsFor(guestID)
	require.Len(t, guestInbox, 1)
	assert.Equal(t, models.NotificationBookingConfirmed, guestInbox[0].Type)
	assert.Equal(t, models.NotificationPaymentCompleted, env.store.notificationsFor(hostID)[1].Type)

	assert.Equal(t, []models.NotificationType{
		models.NotificationBookingCreated,
		models.NotificationBookingConfirmed,
		models.NotificationPaymentCompleted,
	}, env.publisher.types())
}

func TestBookingLifecycle_PayThenCompleteKeepsPayment(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	booking, err := env.service.CreateGuestBooking(ctx, env.guest, guestRequest("2025-06-10", "2025-06-13", 2))
	require.NoError(t, err)
	_, err = env.service.Pay(ctx, env.guest, booking.BookingID)
	require.NoError(t, err)
	paid := *env.store.payment(booking.BookingID)

	completed, err := env.service.Complete(ctx, env.host, booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, completed.Status)

	payment := env.store.payment(booking.BookingID)
	require.NotNil(t, payment)
	assert.Equal(t, paid.PaymentID, payment.PaymentID)
	assert.Equal(t, 267.0, payment.Amount)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	assert.Equal(t, "simulated", payment.PaymentMethod)
	require.NotNil(t, payment.TransactionID)
	assert.Equal(t, *paid.TransactionID, *payment.TransactionID)
	assert.Equal(t, paid.PaymentDate, payment.PaymentDate)

	_, err = env.service.Complete(ctx, env.host, booking.BookingID)
	var stateErr *models.StateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestComplete_LeavesSettledPaymentAlone(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	booking, err := env.service.CreateGuestBooking(ctx, env.guest, guestRequest("2025-06-10", "2025-06-13", 2))
	require.NoError(t, err)
	_, err = env.service.Confirm(ctx, env.host, booking.BookingID)
	require.NoError(t, err)

	env.store.mu.Lock()
	env.store.payments[booking.BookingID].Status = models.PaymentStatusRefunded
	env.store.mu.Unlock()

	_, err = env.service.Complete(ctx, env.host, booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, env.store.payment(booking.BookingID).Status)
}

func TestCreateGuestBooking_Overlap(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	_, err := env.service.CreateGuestBooking(ctx, env.guest, guestRequest("2025-06-10", "2025-06-13", 2))
	require.NoError(t, err)

	t.Run("Overlapping Stay Conflicts", func(t *testing.T) {
		_, err := env.service.CreateGuestBooking(ctx, env.other, guestRequest("2025-06-12", "2025-06-15", 1))
		var conflict *models.ConflictError
		assert.True(t, errors.As(err, &conflict))
	})

	t.Run("Touching Stay Is Allowed", func(t *testing.T) {
		b, err := env.service.CreateGuestBooking(ctx, env.other, guestRequest("2025-06-13", "2025-06-15", 1))
		require.NoError(t, err)
		assert.Equal(t, 178.0, b.TotalPrice)
	})

	t.Run("Stay Ending On Check In Is Allowed", func(t *testing.T) {
		_, err := env.service.CreateGuestBooking(ctx, env.other, guestRequest("2025-06-08", "2025-06-10", 1))
		assert.NoError(t, err)
	})
}

func TestCreateGuestBooking_CancelledBookingFreesDates(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	first, err := env.service.CreateGuestBooking(ctx, env.guest, guestRequest("2025-06-10", "2025-06-13", 2))
	require.NoError(t, err)

	cancelled, err := env.service.Cancel(ctx, env.guest, first.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, env.service.now().UTC(), *cancelled.CancelledAt)

	_, err = env.service.CreateGuestBooking(ctx, env.other, guestRequest("2025-06-11", "2025-06-12", 1))
	assert.NoError(t, err)
}

func TestCreateGuestBooking_ConcurrentRequests(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	const attempts = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.service.CreateGuestBooking(ctx, env.guest, guestRequest("2025-07-01", "2025-07-04", 1))
			mu.Lock()
			defer mu.Unlock()
			var conflict *models.ConflictError
			switch {
			case err == nil:
				succeeded++
			case errors.As(err, &conflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicts)
}

func TestCreateGuestBooking_Validation(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *models.CreateBookingRequest
	}{
		{"Inverted Dates", guestRequest("2025-06-13", "2025-06-10", 1)},
		{"Zero Nights", guestRequest("2025-06-10", "2025-06-10", 1)},
		{"Too Many Guests", guestRequest("2025-06-10", "2025-06-12", 5)},
		{"No Guests", guestRequest("2025-06-10", "2025-06-12", 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.service.CreateGuestBooking(ctx, env.guest, tt.req)
			var validation *models.ValidationError
			assert.True(t, errors.As(err, &validation), "got %v", err)
		})
	}
	assert.Empty(t, env.store.bookings)
}

func TestCreateGuestBooking_HotelVisibility(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	env.store.addHotel(11, hostID, 120, 2, false)

	t.Run("Inactive Hotel Is Not Found For Guests", func(t *testing.T) {
		req := guestRequest("2025-06-10", "2025-06-12", 1)
		req.HotelID = 11
		_, err := env.service.CreateGuestBooking(ctx, env.guest, req)
		var notFound *models.NotFoundError
		assert.True(t, errors.As(err, &notFound))
	})

	t.Run("Unknown Hotel", func(t *testing.T) {
		req := guestRequest("2025-06-10", "2025-06-12", 1)
		req.HotelID = 999
		_, err := env.service.CreateGuestBooking(ctx, env.guest, req)
		var notFound *models.NotFoundError
		assert.True(t, errors.As(err, &notFound))
	})

	t.Run("Anonymous Caller", func(t *testing.T) {
		_, err := env.service.CreateGuestBooking(ctx, nil, guestRequest("2025-06-10", "2025-06-12", 1))
		var authErr *models.AuthorizationError
		assert.True(t, errors.As(err, &authErr))
	})
}

func TestCreateHostBooking(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	req := &models.HostBookingRequest{
		HotelID:    hotelID,
		GuestEmail: "guest@example.com",
		CheckIn:    date("2025-08-01"),
		CheckOut:   date("2025-08-03"),
		NumGuests:  2,
	}

	t.Run("Confirmed With Completed Payment", func(t *testing.T) {
		booking, err := env.service.CreateHostBooking(ctx, env.host, req)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
		assert.Equal(t, guestID, booking.GuestID)

		payment := env.store.payment(booking.BookingID)
		require.NotNil(t, payment)
		assert.Equal(t, models.PaymentMethodHostCreated, payment.PaymentMethod)
		assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
		assert.Equal(t, 178.0, payment.Amount)

		inbox := env.store.notificationsFor(guestID)
		require.Len(t, inbox, 1)
		assert.Equal(t, models.NotificationBookingCreated, inbox[0].Type)
	})

	t.Run("Unknown Guest Email", func(t *testing.T) {
		r := *req
		r.GuestEmail = "nobody@example.com"
		_, err := env.service.CreateHostBooking(ctx, env.host, &r)
		var validation *models.ValidationError
		require.True(t, errors.As(err, &validation))
		assert.Equal(t, "guest_email", validation.Field)
	})

	t.Run("Guest Cannot Create Host Booking", func(t *testing.T) {
		_, err := env.service.CreateHostBooking(ctx, env.guest, req)
		var authErr *models.AuthorizationError
		assert.True(t, errors.As(err, &authErr))
	})

	t.Run("Overlaps Existing Booking", func(t *testing.T) {
		_, err := env.service.CreateHostBooking(ctx, env.host, req)
		var conflict *models.ConflictError
		assert.True(t, errors.As(err, &conflict))
	})
}

func TestTransitions_Authorization(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	booking, err := env.service.CreateGuestBooking(ctx, env.guest, guestRequest("2025-06-10", "2025-06-13", 2))
	require.NoError(t, err)

	var authErr *models.AuthorizationError

	_, err = env.service.Pay(ctx, env.host, booking.BookingID)
	assert.True(t, errors.As(err, &authErr), "host cannot pay")

	_, err = env.service.Confirm(ctx, env.guest, booking.BookingID)
	assert.True(t, errors.As(err, &authErr), "guest cannot confirm")

	_, err = env.service.Cancel(ctx, env.other, booking.BookingID)
	assert.True(t, errors.As(err, &authErr), "stranger cannot cancel")

	assert.Equal(t, models.BookingStatusPending, env.store.booking(booking.BookingID).Status)
}

func TestTransitions_StateMachine(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	booking, err := env.service.CreateGuestBooking(ctx, env.guest, guestRequest("2025-06-10", "2025-06-13", 2))
	require.NoError(t, err)
	id := booking.BookingID

	var stateErr *models.StateError

	_, err = env.service.Complete(ctx, env.host, id)
	require.True(t, errors.As(err, &stateErr), "pending cannot complete")
	assert.Equal(t, models.BookingStatusPending, stateErr.From)

	confirmed, err := env.service.Confirm(ctx, env.host, id)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, confirmed.Status)

	pending := env.store.payment(id)
	require.NotNil(t, pending)
	assert.Equal(t, models.PaymentStatusPending, pending.Status)
	assert.Equal(t, models.PaymentMethodManual, pending.PaymentMethod)

	_, err = env.service.Pay(ctx, env.guest, id)
	assert.True(t, errors.As(err, &stateErr), "confirmed cannot be paid again")

	completed, err := env.service.Complete(ctx, env.host, id)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, completed.Status)
	assert.Equal(t, models.PaymentStatusCompleted, env.store.payment(id).Status)
	assert.Equal(t, pending.PaymentID, env.store.payment(id).PaymentID)

	for _, op := range []func(context.Context, *models.Principal, int64) (*models.Booking, error){
		env.service.Cancel, env.service.MarkNoShow, env.service.Confirm,
	} {
		_, err = op(ctx, env.host, id)
		assert.True(t, errors.As(err, &stateErr), "completed is terminal")
	}
}

func TestCancel_NotifiesBothParties(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	booking, err := env.service.CreateGuestBooking(ctx, env.guest, guestRequest("2025-06-10", "2025-06-13", 2))
	require.NoError(t, err)

	_, err = env.service.Cancel(ctx, env.host, booking.BookingID)
	require.NoError(t, err)

	guestInbox := env.store.notificationsFor(guestID)
	require.Len(t, guestInbox, 1)
	assert.Equal(t, models.NotificationBookingCancelled, guestInbox[0].Type)
	assert.Contains(t, guestInbox[0].Message, "cancelled by the host")

	_, err = env.service.Cancel(ctx, env.guest, booking.BookingID)
	var stateErr *models.StateError
	assert.True(t, errors.As(err, &stateErr), "cancelled is terminal")
}

func TestMarkNoShow(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	booking, err := env.service.CreateGuestBooking(ctx, env.guest, guestRequest("2025-06-10", "2025-06-13", 2))
	require.NoError(t, err)
	_, err = env.service.Pay(ctx, env.guest, booking.BookingID)
	require.NoError(t, err)

	noShow, err := env.service.MarkNoShow(ctx, env.host, booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusNoShow, noShow.Status)

	// a no-show releases the dates
	_, err = env.service.CreateGuestBooking(ctx, env.other, guestRequest("2025-06-10", "2025-06-13", 1))
	assert.NoError(t, err)
}

func TestTransition_NotificationFailureStillCommits(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	booking, err := env.service.CreateGuestBooking(ctx, env.guest, guestRequest("2025-06-10", "2025-06-13", 2))
	require.NoError(t, err)

	env.store.failNotify[models.NotificationPaymentCompleted] = true

	paid, err := env.service.Pay(ctx, env.guest, booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, paid.Status)
	assert.NotNil(t, env.store.payment(booking.BookingID))
	assert.Len(t, env.store.notificationsFor(hostID), 1, "only booking_created reached the host")
	assert.Len(t, env.store.notificationsFor(guestID), 1)
}

func TestTransition_PaymentFailureRollsBack(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	booking, err := env.service.CreateGuestBooking(ctx, env.guest, guestRequest("2025-06-10", "2025-06-13", 2))
	require.NoError(t, err)

	env.store.failPayment = true

	_, err = env.service.Pay(ctx, env.guest, booking.BookingID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to record payment")

	assert.Equal(t, models.BookingStatusPending, env.store.booking(booking.BookingID).Status)
	assert.Nil(t, env.store.payment(booking.BookingID))
	assert.Empty(t, env.store.notificationsFor(guestID))
}

func TestTransition_PublisherFailureIsNotReturned(t *testing.T) {
	env := newBookingEnv(t)
	env.publisher.err = errors.New("broker down")

	booking, err := env.service.CreateGuestBooking(context.Background(), env.guest, guestRequest("2025-06-10", "2025-06-13", 2))
	require.NoError(t, err)
	assert.Len(t, env.store.notificationsFor(hostID), 1, "the stored row survives")
	assert.NotZero(t, booking.BookingID)
}

// staleStore reports that another writer changed the status first
type staleStore struct {
	*memoryStore
}

func (s staleStore) ApplyTransition(ctx context.Context, t lifecycle.Transition) (*database.WriteResult, error) {
	return nil, database.ErrStaleStatus
}

func TestTransition_StaleStatus(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	booking, err := env.service.CreateGuestBooking(ctx, env.guest, guestRequest("2025-06-10", "2025-06-13", 2))
	require.NoError(t, err)

	env.service.bookings = staleStore{env.store}

	_, err = env.service.Confirm(ctx, env.host, booking.BookingID)
	var stateErr *models.StateError
	require.True(t, errors.As(err, &stateErr))
	assert.Equal(t, models.BookingStatusPending, stateErr.From)
	assert.Contains(t, stateErr.Error(), "changed while processing")
}

func TestReschedule(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	booking, err := env.service.CreateGuestBooking(ctx, env.guest, guestRequest("2025-06-10", "2025-06-13", 2))
	require.NoError(t, err)
	_, err = env.service.CreateGuestBooking(ctx, env.other, guestRequest("2025-06-20", "2025-06-22", 1))
	require.NoError(t, err)

	t.Run("Shift Overlapping Its Own Dates", func(t *testing.T) {
		moved, err := env.service.Reschedule(ctx, env.guest, booking.BookingID, &models.RescheduleRequest{CheckIn: date("2025-06-11"), CheckOut: date("2025-06-15")})
		require.NoError(t, err)
		assert.Equal(t, "2025-06-11", moved.CheckInDate.String())
		assert.Equal(t, 356.0, moved.TotalPrice)
	})

	t.Run("Conflicts With Another Booking", func(t *testing.T) {
		_, err := env.service.Reschedule(ctx, env.guest, booking.BookingID, &models.RescheduleRequest{CheckIn: date("2025-06-19"), CheckOut: date("2025-06-21")})
		var conflict *models.ConflictError
		assert.True(t, errors.As(err, &conflict))
	})

	t.Run("Stranger Cannot Reschedule", func(t *testing.T) {
		_, err := env.service.Reschedule(ctx, env.other, booking.BookingID, &models.RescheduleRequest{CheckIn: date("2025-07-01"), CheckOut: date("2025-07-02")})
		var authErr *models.AuthorizationError
		assert.True(t, errors.As(err, &authErr))
	})

	t.Run("Only Pending Bookings", func(t *testing.T) {
		_, err := env.service.Pay(ctx, env.guest, booking.BookingID)
		require.NoError(t, err)
		_, err = env.service.Reschedule(ctx, env.guest, booking.BookingID, &models.RescheduleRequest{CheckIn: date("2025-07-01"), CheckOut: date("2025-07-02")})
		var stateErr *models.StateError
		assert.True(t, errors.As(err, &stateErr))
	})
}

func TestTransition_UnknownBooking(t *testing.T) {
	env := newBookingEnv(t)

	_, err := env.service.Pay(context.Background(), env.guest, 404)
	var notFound *models.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "booking", notFound.Resource)
}
