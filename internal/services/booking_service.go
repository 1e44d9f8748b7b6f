package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/config"
	"github.com/staynest/booking-backend/internal/database"
	"github.com/staynest/booking-backend/internal/lifecycle"
	"github.com/staynest/booking-backend/internal/models"
)

// BookingStore persists bookings and applies lifecycle effects atomically
type BookingStore interface {
	Create(ctx context.Context, b *models.Booking, effects []lifecycle.Effect) (*database.WriteResult, error)
	ApplyTransition(ctx context.Context, t lifecycle.Transition) (*database.WriteResult, error)
	Reschedule(ctx context.Context, bookingID int64, stay models.StayRange, totalPrice float64) (*models.Booking, error)
	GetSnapshot(ctx context.Context, bookingID int64) (*lifecycle.Snapshot, error)
}

// HotelReader loads hotels
type HotelReader interface {
	GetByID(ctx context.Context, hotelID int64) (*models.Hotel, error)
}

// GuestLookup finds the guest a host books on behalf of
type GuestLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// BookingService runs the booking lifecycle: creation behind the
// double-booking guard, status transitions, and rescheduling
type BookingService struct {
	bookings BookingStore
	hotels   HotelReader
	users    GuestLookup
	notifier *NotificationService
	cfg      config.BookingConfig
	logger   *logrus.Logger
	now      func() time.Time
}

// NewBookingService creates a new BookingService
func NewBookingService(
	bookings BookingStore,
	hotels HotelReader,
	users GuestLookup,
	notifier *NotificationService,
	cfg config.BookingConfig,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		hotels:   hotels,
		users:    users,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateGuestBooking creates a pending booking for the principal
func (s *BookingService) CreateGuestBooking(ctx context.Context, principal *models.Principal, req *models.CreateBookingRequest) (*models.Booking, error) {
	if principal == nil {
		return nil, &models.AuthorizationError{Message: "authentication required"}
	}

	hotel, err := s.hotels.GetByID(ctx, req.HotelID)
	if err != nil {
		return nil, translateError(err, "hotel", req.HotelID)
	}
	if err := Authorize(principal, HotelResource{HotelID: hotel.HotelID, HostID: hotel.HostID, IsActive: hotel.IsActive}, ActionRead); err != nil {
		return nil, &models.NotFoundError{Resource: "hotel", ID: req.HotelID}
	}
	if !hotel.IsActive {
		return nil, &models.ConflictError{Message: "hotel is not accepting bookings"}
	}

	return s.create(ctx, lifecycle.Draft{
		Origin:        lifecycle.OriginGuest,
		HotelID:       hotel.HotelID,
		HotelName:     hotel.Name,
		HostID:        hotel.HostID,
		GuestID:       principal.UserID,
		Stay:          models.StayRange{CheckIn: req.CheckIn, CheckOut: req.CheckOut},
		NumGuests:     req.NumGuests,
		MaxGuests:     hotel.MaxGuests,
		PricePerNight: hotel.PricePerNight,
	}, req.Notes)
}

// CreateHostBooking creates a confirmed, paid booking that the owning host
// enters on behalf of an existing guest
func (s *BookingService) CreateHostBooking(ctx context.Context, principal *models.Principal, req *models.HostBookingRequest) (*models.Booking, error) {
	hotel, err := s.hotels.GetByID(ctx, req.HotelID)
	if err != nil {
		return nil, translateError(err, "hotel", req.HotelID)
	}
	if err := Authorize(principal, HotelResource{HotelID: hotel.HotelID, HostID: hotel.HostID, IsActive: hotel.IsActive}, ActionCreateBookingForGuest); err != nil {
		return nil, err
	}

	guest, err := s.users.GetByEmail(ctx, req.GuestEmail)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, models.NewValidationError("guest_email", "no user is registered with this email")
		}
		return nil, err
	}

	return s.create(ctx, lifecycle.Draft{
		Origin:        lifecycle.OriginHost,
		HotelID:       hotel.HotelID,
		HotelName:     hotel.Name,
		HostID:        hotel.HostID,
		GuestID:       guest.UserID,
		Stay:          models.StayRange{CheckIn: req.CheckIn, CheckOut: req.CheckOut},
		NumGuests:     req.NumGuests,
		MaxGuests:     hotel.MaxGuests,
		PricePerNight: hotel.PricePerNight,
	}, req.Notes)
}

func (s *BookingService) create(ctx context.Context, draft lifecycle.Draft, notes *string) (*models.Booking, error) {
	initial, err := lifecycle.DecideCreate(draft)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		HotelID:      draft.HotelID,
		GuestID:      draft.GuestID,
		CheckInDate:  draft.Stay.CheckIn,
		CheckOutDate: draft.Stay.CheckOut,
		NumGuests:    draft.NumGuests,
		TotalPrice:   initial.TotalPrice,
		Status:       initial.Status,
		Notes:        notes,
	}

	result, err := s.bookings.Create(ctx, booking, initial.Effects)
	if err != nil {
		if !errors.Is(err, database.ErrBookingOverlap) && !errors.Is(err, database.ErrNotFound) {
			s.logger.WithFields(logrus.Fields{
				"hotel_id": draft.HotelID,
				"guest_id": draft.GuestID,
			}).WithError(err).Error("Failed to create booking")
		}
		return nil, translateError(err, "hotel", draft.HotelID)
	}

	fields := logrus.Fields{
		"booking_id": result.Booking.BookingID,
		"hotel_id":   result.Booking.HotelID,
		"guest_id":   result.Booking.GuestID,
		"status":     result.Booking.Status,
		"origin":     draft.Origin,
	}
	s.logger.WithFields(fields).Info("Booking created")
	s.notifier.Deliver(ctx, result.Notifications, result.NotificationErrors, fields)

	return result.Booking, nil
}

// Pay settles a pending booking with a simulated payment and confirms it
func (s *BookingService) Pay(ctx context.Context, principal *models.Principal, bookingID int64) (*models.Booking, error) {
	return s.transition(ctx, principal, bookingID, ActionPay, lifecycle.Command{
		Kind:  lifecycle.CommandPay,
		Actor: lifecycle.ActorGuest,
		Payment: lifecycle.PaymentRef{
			Method:        s.cfg.SimulatedPaymentMethod,
			TransactionID: "SIM-" + uuid.NewString(),
		},
	})
}

// Confirm confirms a pending booking on behalf of the owning host
func (s *BookingService) Confirm(ctx context.Context, principal *models.Principal, bookingID int64) (*models.Booking, error) {
	return s.transition(ctx, principal, bookingID, ActionConfirm, lifecycle.Command{
		Kind:  lifecycle.CommandConfirm,
		Actor: lifecycle.ActorHost,
	})
}

// Cancel cancels a pending or confirmed booking. Either the guest or the
// owning host may cancel.
func (s *BookingService) Cancel(ctx context.Context, principal *models.Principal, bookingID int64) (*models.Booking, error) {
	return s.transition(ctx, principal, bookingID, ActionCancel, lifecycle.Command{
		Kind: lifecycle.CommandCancel,
	})
}

// Complete marks a confirmed stay as completed
func (s *BookingService) Complete(ctx context.Context, principal *models.Principal, bookingID int64) (*models.Booking, error) {
	return s.transition(ctx, principal, bookingID, ActionComplete, lifecycle.Command{
		Kind:  lifecycle.CommandComplete,
		Actor: lifecycle.ActorHost,
	})
}

// MarkNoShow marks a confirmed booking whose guest never arrived
func (s *BookingService) MarkNoShow(ctx context.Context, principal *models.Principal, bookingID int64) (*models.Booking, error) {
	return s.transition(ctx, principal, bookingID, ActionNoShow, lifecycle.Command{
		Kind:  lifecycle.CommandMarkNoShow,
		Actor: lifecycle.ActorHost,
	})
}

func (s *BookingService) transition(ctx context.Context, principal *models.Principal, bookingID int64, action Action, cmd lifecycle.Command) (*models.Booking, error) {
	snapshot, err := s.bookings.GetSnapshot(ctx, bookingID)
	if err != nil {
		return nil, translateError(err, "booking", bookingID)
	}

	if err := Authorize(principal, bookingResource(snapshot), action); err != nil {
		return nil, err
	}

	if cmd.Actor == "" {
		cmd.Actor = lifecycle.ActorHost
		if principal.UserID == snapshot.GuestID {
			cmd.Actor = lifecycle.ActorGuest
		}
	}
	cmd.At = s.now().UTC()

	t, err := lifecycle.Decide(*snapshot, cmd)
	if err != nil {
		return nil, err
	}

	result, err := s.bookings.ApplyTransition(ctx, t)
	if err != nil {
		if errors.Is(err, database.ErrStaleStatus) {
			return nil, &models.StateError{
				From:    snapshot.Status,
				Action:  string(cmd.Kind),
				Message: "booking status changed while processing the request",
			}
		}
		return nil, translateError(err, "booking", bookingID)
	}

	fields := logrus.Fields{
		"booking_id": bookingID,
		"hotel_id":   snapshot.HotelID,
		"user_id":    principal.UserID,
		"command":    cmd.Kind,
		"from":       t.From,
		"status":     t.To,
	}
	s.logger.WithFields(fields).Info("Booking status changed")
	s.notifier.Deliver(ctx, result.Notifications, result.NotificationErrors, fields)

	return result.Booking, nil
}

// Reschedule moves a pending booking to new dates and reprices it at the
// hotel's current nightly rate
func (s *BookingService) Reschedule(ctx context.Context, principal *models.Principal, bookingID int64, req *models.RescheduleRequest) (*models.Booking, error) {
	snapshot, err := s.bookings.GetSnapshot(ctx, bookingID)
	if err != nil {
		return nil, translateError(err, "booking", bookingID)
	}

	if err := Authorize(principal, bookingResource(snapshot), ActionReschedule); err != nil {
		return nil, err
	}

	if snapshot.Status != models.BookingStatusPending {
		return nil, &models.StateError{From: snapshot.Status, Action: "reschedule"}
	}

	stay := models.StayRange{CheckIn: req.CheckIn, CheckOut: req.CheckOut}
	hotel, err := s.hotels.GetByID(ctx, snapshot.HotelID)
	if err != nil {
		return nil, translateError(err, "hotel", snapshot.HotelID)
	}

	total, _, err := lifecycle.CalculatePrice(hotel.PricePerNight, stay)
	if err != nil {
		return nil, err
	}

	updated, err := s.bookings.Reschedule(ctx, bookingID, stay, total)
	if err != nil {
		if errors.Is(err, database.ErrStaleStatus) {
			return nil, &models.StateError{
				From:    snapshot.Status,
				Action:  "reschedule",
				Message: "booking status changed while processing the request",
			}
		}
		return nil, translateError(err, "booking", bookingID)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"hotel_id":   snapshot.HotelID,
		"check_in":   stay.CheckIn.String(),
		"check_out":  stay.CheckOut.String(),
	}).Info("Booking rescheduled")

	return updated, nil
}

func bookingResource(s *lifecycle.Snapshot) BookingResource {
	return BookingResource{BookingID: s.BookingID, GuestID: s.GuestID, HostID: s.HostID}
}
