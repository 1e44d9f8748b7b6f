package models

import "time"

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusNoShow    BookingStatus = "no_show"
)

// ActiveBookingStatuses are the statuses that occupy their date range
var ActiveBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusCompleted,
}

// Valid reports whether s is a known status
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted,
		BookingStatusCancelled, BookingStatusNoShow:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are permitted
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled || s == BookingStatusNoShow
}

// Booking is a reservation of one hotel by one guest for a date range
type Booking struct {
	BookingID    int64         `json:"booking_id" db:"booking_id"`
	HotelID      int64         `json:"hotel_id" db:"hotel_id"`
	GuestID      int64         `json:"guest_id" db:"guest_id"`
	CheckInDate  Date          `json:"check_in_date" db:"check_in_date"`
	CheckOutDate Date          `json:"check_out_date" db:"check_out_date"`
	NumGuests    int           `json:"num_guests" db:"num_guests"`
	TotalPrice   float64       `json:"total_price" db:"total_price"`
	Status       BookingStatus `json:"status" db:"status"`
	Notes        *string       `json:"notes,omitempty" db:"notes"`
	CancelledAt  *time.Time    `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// Stay returns the booking's date range
func (b *Booking) Stay() StayRange {
	return StayRange{CheckIn: b.CheckInDate, CheckOut: b.CheckOutDate}
}

// CreateBookingRequest represents a guest self-service booking
type CreateBookingRequest struct {
	HotelID   int64   `json:"hotel_id" binding:"required,gt=0"`
	CheckIn   Date    `json:"check_in"`
	CheckOut  Date    `json:"check_out"`
	NumGuests int     `json:"num_guests" binding:"required,gte=1"`
	Notes     *string `json:"notes" binding:"omitempty,max=1000"`
}

// HostBookingRequest represents a manual ("custom") booking entered by a host
// on behalf of a guest; it is confirmed immediately
type HostBookingRequest struct {
	HotelID    int64   `json:"hotel_id" binding:"required,gt=0"`
	GuestEmail string  `json:"guest_email" binding:"required,email"`
	CheckIn    Date    `json:"check_in"`
	CheckOut   Date    `json:"check_out"`
	NumGuests  int     `json:"num_guests" binding:"required,gte=1"`
	Notes      *string `json:"notes" binding:"omitempty,max=1000"`
}

// RescheduleRequest moves a pending booking to new dates
type RescheduleRequest struct {
	CheckIn  Date `json:"check_in"`
	CheckOut Date `json:"check_out"`
}

// BookingDetails is the denormalized booking projection used by dashboards
type BookingDetails struct {
	Booking
	GuestFirstName       string         `json:"guest_first_name" db:"guest_first_name"`
	GuestLastName        string         `json:"guest_last_name" db:"guest_last_name"`
	GuestEmail           string         `json:"guest_email" db:"guest_email"`
	GuestPhone           *string        `json:"guest_phone,omitempty" db:"guest_phone"`
	HotelName            string         `json:"hotel_name" db:"hotel_name"`
	HotelPrimaryImageURL *string        `json:"hotel_primary_image_url,omitempty" db:"hotel_primary_image_url"`
	HotelCity            string         `json:"hotel_city" db:"hotel_city"`
	HotelCountry         string         `json:"hotel_country" db:"hotel_country"`
	HostID               int64          `json:"host_id" db:"host_id"`
	PaymentID            *int64         `json:"payment_id,omitempty" db:"payment_id"`
	PaymentStatus        *PaymentStatus `json:"payment_status,omitempty" db:"payment_status"`
	PaymentMethod        *string        `json:"payment_method,omitempty" db:"payment_method"`
	TransactionID        *string        `json:"transaction_id,omitempty" db:"transaction_id"`
}

// BookingFilter narrows booking detail reads
type BookingFilter struct {
	GuestID *int64
	HostID  *int64
	HotelID *int64
	Status  *BookingStatus
	Limit   int
}
