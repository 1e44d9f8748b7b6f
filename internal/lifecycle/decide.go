package lifecycle

import (
	"fmt"

	"github.com/staynest/booking-backend/internal/models"
)

// Decide applies cmd to the booking described by s. It returns the
// transition with its effects, or a *models.StateError when the command is
// not allowed from the current status. It never partially succeeds.
func Decide(s Snapshot, cmd Command) (Transition, error) {
	r, ok := rules[cmd.Kind]
	if !ok {
		return Transition{}, &models.StateError{From: s.Status, Action: string(cmd.Kind), Message: fmt.Sprintf("unknown command %q", cmd.Kind)}
	}
	if !r.accepts(s.Status) || !CanTransition(s.Status, r.to) {
		return Transition{}, &models.StateError{From: s.Status, Action: string(cmd.Kind)}
	}

	t := Transition{
		BookingID: s.BookingID,
		Command:   cmd.Kind,
		From:      s.Status,
		To:        r.to,
		Effects:   []Effect{SetStatus{Status: r.to}},
	}

	bookingID := s.BookingID
	dates := fmt.Sprintf("%s to %s", s.Stay.CheckIn, s.Stay.CheckOut)

	switch cmd.Kind {
	case CommandPay:
		t.Effects = append(t.Effects,
			RecordPayment{
				Amount:        s.TotalPrice,
				Method:        cmd.Payment.Method,
				Status:        models.PaymentStatusCompleted,
				TransactionID: cmd.Payment.TransactionID,
				Mode:          PaymentUpsert,
			},
			notify(s.GuestID, models.NotificationBookingConfirmed, bookingID,
				"Booking confirmed",
				fmt.Sprintf("Your payment was received and your stay at %s (%s) is confirmed.", s.HotelName, dates)),
			notify(s.HostID, models.NotificationPaymentCompleted, bookingID,
				"Payment received",
				fmt.Sprintf("Payment of %.2f received for booking #%d at %s.", s.TotalPrice, bookingID, s.HotelName)),
		)

	case CommandConfirm:
		t.Effects = append(t.Effects,
			RecordPayment{
				Amount: s.TotalPrice,
				Method: models.PaymentMethodManual,
				Status: models.PaymentStatusPending,
				Mode:   PaymentInsertIfAbsent,
			},
			notify(s.GuestID, models.NotificationBookingConfirmed, bookingID,
				"Booking confirmed",
				fmt.Sprintf("Your host confirmed your stay at %s (%s).", s.HotelName, dates)),
		)

	case CommandCancel:
		by := "the guest"
		if cmd.Actor == ActorHost {
			by = "the host"
		}
		t.Effects = append(t.Effects,
			StampCancelledAt{At: cmd.At},
			notify(s.GuestID, models.NotificationBookingCancelled, bookingID,
				"Booking cancelled",
				fmt.Sprintf("Booking #%d at %s (%s) was cancelled by %s.", bookingID, s.HotelName, dates, by)),
			notify(s.HostID, models.NotificationBookingCancelled, bookingID,
				"Booking cancelled",
				fmt.Sprintf("Booking #%d at %s (%s) was cancelled by %s.", bookingID, s.HotelName, dates, by)),
		)

	case CommandComplete:
		t.Effects = append(t.Effects,
			RecordPayment{
				Amount: s.TotalPrice,
				Method: models.PaymentMethodManual,
				Status: models.PaymentStatusCompleted,
				Mode:   PaymentSettle,
			},
			notify(s.GuestID, models.NotificationBookingCompleted, bookingID,
				"Stay completed",
				fmt.Sprintf("Thanks for staying at %s. You can now leave a review.", s.HotelName)),
		)

	case CommandMarkNoShow:
		t.Effects = append(t.Effects,
			notify(s.GuestID, models.NotificationBookingNoShow, bookingID,
				"Marked as no-show",
				fmt.Sprintf("Your booking at %s (%s) was marked as a no-show.", s.HotelName, dates)),
		)
	}

	return t, nil
}

// Origin is how a booking is created
type Origin string

const (
	// OriginGuest is guest self-service; the booking starts pending
	OriginGuest Origin = "guest"
	// OriginHost is a manual booking entered by the host; it starts confirmed
	// with a completed payment
	OriginHost Origin = "host"
)

// Draft is everything DecideCreate needs about a booking to be created
type Draft struct {
	Origin        Origin
	HotelID       int64
	HotelName     string
	HostID        int64
	GuestID       int64
	Stay          models.StayRange
	NumGuests     int
	MaxGuests     int
	PricePerNight float64
}

// Initial is the outcome of DecideCreate
type Initial struct {
	Status     models.BookingStatus
	Nights     int
	TotalPrice float64
	Effects    []Effect
}

// Notifications returns the Notify effects of the creation
func (i Initial) Notifications() []models.NotificationDraft {
	return notificationsOf(i.Effects)
}

// DecideCreate validates a new booking and derives its initial status, price
// and effects. The overlap check is not done here: it has to run in the same
// transaction as the insert.
func DecideCreate(d Draft) (Initial, error) {
	if d.NumGuests < 1 {
		return Initial{}, models.NewValidationError("num_guests", "must be at least 1")
	}
	if d.MaxGuests > 0 && d.NumGuests > d.MaxGuests {
		return Initial{}, models.NewValidationError("num_guests", fmt.Sprintf("hotel accepts at most %d guests", d.MaxGuests))
	}

	total, nights, err := CalculatePrice(d.PricePerNight, d.Stay)
	if err != nil {
		return Initial{}, err
	}

	dates := fmt.Sprintf("%s to %s", d.Stay.CheckIn, d.Stay.CheckOut)

	switch d.Origin {
	case OriginGuest:
		return Initial{
			Status:     models.BookingStatusPending,
			Nights:     nights,
			TotalPrice: total,
			Effects: []Effect{
				notify(d.HostID, models.NotificationBookingCreated, 0,
					"New booking request",
					fmt.Sprintf("New booking at %s for %s (%d guests, %d nights).", d.HotelName, dates, d.NumGuests, nights)),
			},
		}, nil

	case OriginHost:
		return Initial{
			Status:     models.BookingStatusConfirmed,
			Nights:     nights,
			TotalPrice: total,
			Effects: []Effect{
				RecordPayment{
					Amount: total,
					Method: models.PaymentMethodHostCreated,
					Status: models.PaymentStatusCompleted,
					Mode:   PaymentUpsert,
				},
				notify(d.GuestID, models.NotificationBookingCreated, 0,
					"Booking created",
					fmt.Sprintf("Your host booked %s for you from %s.", d.HotelName, dates)),
			},
		}, nil
	}

	return Initial{}, models.NewValidationError("origin", fmt.Sprintf("unknown booking origin %q", d.Origin))
}

func notify(userID int64, typ models.NotificationType, bookingID int64, title, message string) Notify {
	n := models.NotificationDraft{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
	}
	if bookingID != 0 {
		id := bookingID
		n.RelatedBookingID = &id
	}
	return Notify{Notification: n}
}
