package models

import "time"

// PaymentStatus represents the state of a booking's payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Valid reports whether s is a known payment status
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusRefunded, PaymentStatusFailed:
		return true
	}
	return false
}

// Payment methods recorded by the engine itself
const (
	PaymentMethodHostCreated = "host_created"
	PaymentMethodManual      = "manual"
)

// Payment is at most one per booking
type Payment struct {
	PaymentID     int64         `json:"payment_id" db:"payment_id"`
	BookingID     int64         `json:"booking_id" db:"booking_id"`
	Amount        float64       `json:"amount" db:"amount"`
	PaymentMethod string        `json:"payment_method" db:"payment_method"`
	Status        PaymentStatus `json:"status" db:"status"`
	TransactionID *string       `json:"transaction_id,omitempty" db:"transaction_id"`
	PaymentDate   time.Time     `json:"payment_date" db:"payment_date"`
}

// PaymentHistoryRow is one line of a host's financial history
type PaymentHistoryRow struct {
	Payment
	HotelID        int64  `json:"hotel_id" db:"hotel_id"`
	HotelName      string `json:"hotel_name" db:"hotel_name"`
	GuestFirstName string `json:"guest_first_name" db:"guest_first_name"`
	GuestLastName  string `json:"guest_last_name" db:"guest_last_name"`
	CheckInDate    Date   `json:"check_in_date" db:"check_in_date"`
	CheckOutDate   Date   `json:"check_out_date" db:"check_out_date"`
}
