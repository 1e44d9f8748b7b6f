// Package lifecycle is the booking state machine. It is pure: Decide and
// DecideCreate look at a snapshot of a booking and a command and return the
// next status plus the list of effects the storage layer must apply
// atomically. Nothing in this package touches the database.
package lifecycle

import (
	"time"

	"github.com/staynest/booking-backend/internal/models"
)

// CommandKind identifies a status-changing operation
type CommandKind string

const (
	CommandPay        CommandKind = "pay"
	CommandConfirm    CommandKind = "confirm"
	CommandCancel     CommandKind = "cancel"
	CommandComplete   CommandKind = "complete"
	CommandMarkNoShow CommandKind = "no_show"
)

// Actor is who issued a command
type Actor string

const (
	ActorGuest Actor = "guest"
	ActorHost  Actor = "host"
)

// PaymentRef carries the payment details for a Pay command
type PaymentRef struct {
	Method        string
	TransactionID string
}

// Command is a request to move a booking to another status
type Command struct {
	Kind    CommandKind
	Actor   Actor
	Payment PaymentRef
	At      time.Time
}

// Snapshot is the state Decide needs about a booking
type Snapshot struct {
	BookingID  int64
	HotelID    int64
	HotelName  string
	GuestID    int64
	HostID     int64
	Status     models.BookingStatus
	Stay       models.StayRange
	TotalPrice float64
}

// Effect is one storage mutation produced by a decision. The set of
// effect types is closed: SetStatus, StampCancelledAt, RecordPayment, Notify.
type Effect interface {
	isEffect()
}

// SetStatus moves the booking to Status
type SetStatus struct {
	Status models.BookingStatus
}

// StampCancelledAt sets cancelled_at
type StampCancelledAt struct {
	At time.Time
}

// PaymentMode says how RecordPayment treats an existing payment row
type PaymentMode int

const (
	// PaymentInsertIfAbsent leaves an existing payment untouched
	PaymentInsertIfAbsent PaymentMode = iota
	// PaymentUpsert creates the payment or moves the existing one to Status
	PaymentUpsert
	// PaymentSettle creates the payment if absent, else completes it only
	// when it is still pending. Date, method and transaction id are kept.
	PaymentSettle
)

// RecordPayment writes the booking's single payment row
type RecordPayment struct {
	Amount        float64
	Method        string
	Status        models.PaymentStatus
	TransactionID string
	Mode          PaymentMode
}

// Notify appends a notification row to the outbox. A zero RelatedBookingID
// is filled in by the storage layer once the booking id is known.
type Notify struct {
	Notification models.NotificationDraft
}

func (SetStatus) isEffect()        {}
func (StampCancelledAt) isEffect() {}
func (RecordPayment) isEffect()    {}
func (Notify) isEffect()           {}

// Transition is the outcome of a successful decision
type Transition struct {
	BookingID int64
	Command   CommandKind
	From      models.BookingStatus
	To        models.BookingStatus
	Effects   []Effect
}

// Notifications returns the Notify effects of the transition
func (t Transition) Notifications() []models.NotificationDraft {
	return notificationsOf(t.Effects)
}

func notificationsOf(effects []Effect) []models.NotificationDraft {
	var out []models.NotificationDraft
	for _, e := range effects {
		if n, ok := e.(Notify); ok {
			out = append(out, n.Notification)
		}
	}
	return out
}

// edges is the booking state graph between non-terminal statuses
var edges = map[models.BookingStatus][]models.BookingStatus{
	models.BookingStatusPending:   {models.BookingStatusConfirmed, models.BookingStatusCancelled},
	models.BookingStatusConfirmed: {models.BookingStatusCompleted, models.BookingStatusCancelled, models.BookingStatusNoShow},
}

// CanTransition reports whether from -> to is an edge of the state graph
func CanTransition(from, to models.BookingStatus) bool {
	if from.IsTerminal() {
		return false
	}
	for _, s := range edges[from] {
		if s == to {
			return true
		}
	}
	return false
}

// rule says which source statuses a command accepts and where it leads
type rule struct {
	from []models.BookingStatus
	to   models.BookingStatus
}

var rules = map[CommandKind]rule{
	CommandPay:        {from: []models.BookingStatus{models.BookingStatusPending}, to: models.BookingStatusConfirmed},
	CommandConfirm:    {from: []models.BookingStatus{models.BookingStatusPending}, to: models.BookingStatusConfirmed},
	CommandCancel:     {from: []models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed}, to: models.BookingStatusCancelled},
	CommandComplete:   {from: []models.BookingStatus{models.BookingStatusConfirmed}, to: models.BookingStatusCompleted},
	CommandMarkNoShow: {from: []models.BookingStatus{models.BookingStatusConfirmed}, to: models.BookingStatusNoShow},
}

func (r rule) accepts(s models.BookingStatus) bool {
	for _, f := range r.from {
		if f == s {
			return true
		}
	}
	return false
}
