package services

import (
	"fmt"

	"github.com/staynest/booking-backend/internal/models"
)

// Action is something a principal wants to do with a resource
type Action string

const (
	ActionRead                  Action = "read"
	ActionCreate                Action = "create"
	ActionUpdate                Action = "update"
	ActionManagePlaces          Action = "manage_places"
	ActionCreateBookingForGuest Action = "create_booking_for_guest"
	ActionPay                   Action = "pay"
	ActionConfirm               Action = "confirm"
	ActionCancel                Action = "cancel"
	ActionComplete              Action = "complete"
	ActionNoShow                Action = "no_show"
	ActionReschedule            Action = "reschedule"
)

// Resource is an entity an authorization decision is made about
type Resource interface {
	resourceName() string
}

// HotelResource describes a hotel. A zero HostID with an ActionCreate
// stands for "a hotel that does not exist yet".
type HotelResource struct {
	HotelID  int64
	HostID   int64
	IsActive bool
}

// BookingResource describes a booking and the owner of its hotel
type BookingResource struct {
	BookingID int64
	GuestID   int64
	HostID    int64
}

// NotificationResource describes a notification
type NotificationResource struct {
	NotificationID int64
	UserID         int64
}

// WishlistResource describes a guest's wishlist
type WishlistResource struct {
	GuestID int64
}

func (HotelResource) resourceName() string        { return "hotel" }
func (BookingResource) resourceName() string      { return "booking" }
func (NotificationResource) resourceName() string { return "notification" }
func (WishlistResource) resourceName() string     { return "wishlist" }

// Authorize decides whether principal may perform action on resource.
// A nil principal is an anonymous caller. It returns nil or an
// *models.AuthorizationError and has no side effects.
func Authorize(principal *models.Principal, resource Resource, action Action) error {
	allowed := false

	switch r := resource.(type) {
	case HotelResource:
		allowed = authorizeHotel(principal, r, action)
	case BookingResource:
		allowed = authorizeBooking(principal, r, action)
	case NotificationResource:
		allowed = principal != nil && principal.UserID == r.UserID && (action == ActionRead || action == ActionUpdate)
	case WishlistResource:
		allowed = principal != nil && principal.UserID == r.GuestID
	}

	if !allowed {
		return &models.AuthorizationError{
			Message: fmt.Sprintf("not allowed to %s this %s", action, resource.resourceName()),
		}
	}
	return nil
}

func authorizeHotel(p *models.Principal, h HotelResource, action Action) bool {
	owner := p != nil && p.IsHost() && p.UserID == h.HostID

	switch action {
	case ActionRead:
		return h.IsActive || owner
	case ActionCreate:
		return p != nil && p.IsHost()
	case ActionUpdate, ActionManagePlaces, ActionCreateBookingForGuest:
		return owner
	}
	return false
}

func authorizeBooking(p *models.Principal, b BookingResource, action Action) bool {
	if p == nil {
		return false
	}
	guest := p.UserID == b.GuestID
	owner := p.IsHost() && p.UserID == b.HostID

	switch action {
	case ActionRead, ActionCancel, ActionReschedule:
		return guest || owner
	case ActionPay:
		return guest
	case ActionConfirm, ActionComplete, ActionNoShow:
		return owner
	}
	return false
}
