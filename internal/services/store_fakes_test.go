package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/staynest/booking-backend/internal/database"
	"github.com/staynest/booking-backend/internal/events"
	"github.com/staynest/booking-backend/internal/lifecycle"
	"github.com/staynest/booking-backend/internal/models"
)

// memoryStore is an in-memory entity store. Every write holds mu for its
// whole duration, which gives the same all-or-nothing behavior as the
// transactional repositories.
type memoryStore struct {
	mu            sync.Mutex
	nextID        int64
	users         map[int64]*models.User
	hotels        map[int64]*models.Hotel
	bookings      map[int64]*models.Booking
	payments      map[int64]*models.Payment
	reviews       map[int64]*models.Review
	wishlist      map[[2]int64]*models.WishlistEntry
	notifications []models.Notification

	failNotify  map[models.NotificationType]bool
	failPayment bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		nextID:     100,
		users:      map[int64]*models.User{},
		hotels:     map[int64]*models.Hotel{},
		bookings:   map[int64]*models.Booking{},
		payments:   map[int64]*models.Payment{},
		reviews:    map[int64]*models.Review{},
		wishlist:   map[[2]int64]*models.WishlistEntry{},
		failNotify: map[models.NotificationType]bool{},
	}
}

func (m *memoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memoryStore) addUser(id int64, typ models.UserType, email string) *models.User {
	u := &models.User{UserID: id, AuthID: fmt.Sprintf("auth-%d", id), Email: email, FirstName: "User", LastName: fmt.Sprint(id), UserType: typ}
	m.users[id] = u
	return u
}

func (m *memoryStore) addHotel(id, hostID int64, price float64, maxGuests int, active bool) *models.Hotel {
	h := &models.Hotel{HotelID: id, HostID: hostID, Name: fmt.Sprintf("Hotel %d", id), City: "Lisbon", Country: "Portugal", PricePerNight: price, MaxGuests: maxGuests, IsActive: active}
	m.hotels[id] = h
	return h
}

func (m *memoryStore) booking(id int64) models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.bookings[id]
}

func (m *memoryStore) payment(bookingID int64) *models.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payments[bookingID]
}

func (m *memoryStore) notificationsFor(userID int64) []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (m *memoryStore) overlaps(hotelID int64, stay models.StayRange, exclude int64) bool {
	for _, b := range m.bookings {
		if b.HotelID == hotelID && b.BookingID != exclude &&
			slices.Contains(models.ActiveBookingStatuses, b.Status) &&
			b.CheckInDate.Before(stay.CheckOut) && stay.CheckIn.Before(b.CheckOutDate) {
			return true
		}
	}
	return false
}

// apply stages effects against a copy of b; nothing is visible until commit
type staged struct {
	booking       models.Booking
	payment       *models.Payment
	notifications []models.Notification
	notifyErrors  []error
}

func (m *memoryStore) stage(b models.Booking, effects []lifecycle.Effect) (*staged, error) {
	st := &staged{booking: b}
	for _, e := range effects {
		switch e := e.(type) {
		case lifecycle.SetStatus:
			st.booking.Status = e.Status
		case lifecycle.StampCancelledAt:
			at := e.At
			st.booking.CancelledAt = &at
		case lifecycle.RecordPayment:
			if existing := m.payments[b.BookingID]; existing != nil {
				// same conflict rules as the payments upserts
				p := *existing
				switch {
				case e.Mode == lifecycle.PaymentUpsert:
					p.Status = e.Status
					if e.TransactionID != "" {
						tx := e.TransactionID
						p.TransactionID = &tx
					}
					p.PaymentDate = time.Now()
				case e.Mode == lifecycle.PaymentSettle && existing.Status == models.PaymentStatusPending:
					p.Status = e.Status
				default:
					continue
				}
				if m.failPayment {
					return nil, errors.New("failed to record payment: connection reset")
				}
				st.payment = &p
				continue
			}
			if m.failPayment {
				return nil, errors.New("failed to record payment: connection reset")
			}
			p := &models.Payment{PaymentID: m.id(), BookingID: b.BookingID, Amount: e.Amount, PaymentMethod: e.Method, Status: e.Status, PaymentDate: time.Now()}
			if e.TransactionID != "" {
				tx := e.TransactionID
				p.TransactionID = &tx
			}
			st.payment = p
		case lifecycle.Notify:
			draft := e.Notification
			if m.failNotify[draft.Type] {
				st.notifyErrors = append(st.notifyErrors, fmt.Errorf("failed to store %s notification", draft.Type))
				continue
			}
			if draft.RelatedBookingID == nil {
				id := b.BookingID
				draft.RelatedBookingID = &id
			}
			st.notifications = append(st.notifications, models.Notification{
				NotificationID:   m.id(),
				UserID:           draft.UserID,
				Type:             draft.Type,
				Title:            draft.Title,
				Message:          draft.Message,
				RelatedBookingID: draft.RelatedBookingID,
				CreatedAt:        time.Now(),
			})
		}
	}
	return st, nil
}

func (m *memoryStore) commit(st *staged) *database.WriteResult {
	b := st.booking
	m.bookings[b.BookingID] = &b
	if st.payment != nil {
		m.payments[b.BookingID] = st.payment
	}
	m.notifications = append(m.notifications, st.notifications...)
	out := b
	return &database.WriteResult{Booking: &out, Notifications: st.notifications, NotificationErrors: st.notifyErrors}
}

func (m *memoryStore) Create(ctx context.Context, b *models.Booking, effects []lifecycle.Effect) (*database.WriteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.hotels[b.HotelID]; !ok {
		return nil, database.ErrNotFound
	}
	if m.overlaps(b.HotelID, b.Stay(), 0) {
		return nil, database.ErrBookingOverlap
	}

	row := *b
	row.BookingID = m.id()
	row.CreatedAt = time.Now()
	st, err := m.stage(row, effects)
	if err != nil {
		return nil, err
	}
	return m.commit(st), nil
}

func (m *memoryStore) ApplyTransition(ctx context.Context, t lifecycle.Transition) (*database.WriteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.bookings[t.BookingID]
	if !ok {
		return nil, database.ErrNotFound
	}
	if current.Status != t.From {
		return nil, database.ErrStaleStatus
	}
	st, err := m.stage(*current, t.Effects)
	if err != nil {
		return nil, err
	}
	return m.commit(st), nil
}

func (m *memoryStore) Reschedule(ctx context.Context, bookingID int64, stay models.StayRange, totalPrice float64) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[bookingID]
	if !ok {
		return nil, database.ErrNotFound
	}
	if b.Status != models.BookingStatusPending {
		return nil, database.ErrStaleStatus
	}
	if m.overlaps(b.HotelID, stay, bookingID) {
		return nil, database.ErrBookingOverlap
	}
	b.CheckInDate, b.CheckOutDate, b.TotalPrice = stay.CheckIn, stay.CheckOut, totalPrice
	out := *b
	return &out, nil
}

func (m *memoryStore) GetSnapshot(ctx context.Context, bookingID int64) (*lifecycle.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[bookingID]
	if !ok {
		return nil, database.ErrNotFound
	}
	h := m.hotels[b.HotelID]
	return &lifecycle.Snapshot{
		BookingID:  b.BookingID,
		HotelID:    b.HotelID,
		HotelName:  h.Name,
		GuestID:    b.GuestID,
		HostID:     h.HostID,
		Status:     b.Status,
		Stay:       b.Stay(),
		TotalPrice: b.TotalPrice,
	}, nil
}

func (m *memoryStore) IsAvailable(ctx context.Context, hotelID int64, stay models.StayRange) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.overlaps(hotelID, stay, 0), nil
}

// hotelTable exposes hotel reads
type hotelTable struct{ *memoryStore }

func (h hotelTable) GetByID(ctx context.Context, hotelID int64) (*models.Hotel, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	hotel, ok := h.hotels[hotelID]
	if !ok {
		return nil, database.ErrNotFound
	}
	out := *hotel
	return &out, nil
}

func (h hotelTable) SearchAvailable(ctx context.Context, q models.SearchQuery) ([]models.HotelListing, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []models.HotelListing
	for _, hotel := range h.hotels {
		if hotel.IsActive && strings.EqualFold(hotel.City, q.City) && hotel.MaxGuests >= q.NumGuests && !h.overlaps(hotel.HotelID, q.Stay(), 0) {
			out = append(out, models.HotelListing{Hotel: *hotel})
		}
	}
	// map order is random; the service must impose its own order
	sort.Slice(out, func(i, j int) bool { return out[i].HotelID > out[j].HotelID })
	return out, nil
}

// userTable exposes user reads and writes
type userTable struct{ *memoryStore }

func (u userTable) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, user := range u.users {
		if strings.EqualFold(user.Email, email) {
			out := *user
			return &out, nil
		}
	}
	return nil, database.ErrNotFound
}

func (u userTable) GetByAuthID(ctx context.Context, authID string) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, user := range u.users {
		if user.AuthID == authID {
			out := *user
			return &out, nil
		}
	}
	return nil, database.ErrNotFound
}

func (u userTable) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.users[userID]
	if !ok {
		return nil, database.ErrNotFound
	}
	out := *user
	return &out, nil
}

func (u userTable) Upsert(ctx context.Context, authID string, req *models.SyncUserRequest) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, user := range u.users {
		if user.AuthID == authID {
			user.Email, user.FirstName, user.LastName = req.Email, req.FirstName, req.LastName
			out := *user
			return &out, nil
		}
	}
	user := &models.User{UserID: u.id(), AuthID: authID, Email: req.Email, FirstName: req.FirstName, LastName: req.LastName, UserType: req.UserType}
	u.users[user.UserID] = user
	out := *user
	return &out, nil
}

func (u userTable) UpdateProfile(ctx context.Context, userID int64, req *models.UpdateProfileRequest) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.users[userID]
	if !ok {
		return nil, database.ErrNotFound
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	out := *user
	return &out, nil
}

// inboxTable exposes the notification inbox
type inboxTable struct{ *memoryStore }

func (n inboxTable) ListForUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]models.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := []models.Notification{}
	for i := len(n.notifications) - 1; i >= 0; i-- {
		row := n.notifications[i]
		if row.UserID != userID || (unreadOnly && row.IsRead) {
			continue
		}
		out = append(out, row)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (n inboxTable) GetByID(ctx context.Context, notificationID int64) (*models.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, row := range n.notifications {
		if row.NotificationID == notificationID {
			out := row
			return &out, nil
		}
	}
	return nil, database.ErrNotFound
}

func (n inboxTable) MarkRead(ctx context.Context, notificationID int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := range n.notifications {
		if n.notifications[i].NotificationID == notificationID {
			n.notifications[i].IsRead = true
			return nil
		}
	}
	return database.ErrNotFound
}

func (n inboxTable) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	var count int64
	for i := range n.notifications {
		if n.notifications[i].UserID == userID && !n.notifications[i].IsRead {
			n.notifications[i].IsRead = true
			count++
		}
	}
	return count, nil
}

func (n inboxTable) CountUnread(ctx context.Context, userID int64) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, row := range n.notifications {
		if row.UserID == userID && !row.IsRead {
			count++
		}
	}
	return count, nil
}

// reviewTable exposes reviews
type reviewTable struct{ *memoryStore }

func (r reviewTable) Create(ctx context.Context, review *models.Review, draft *models.NotificationDraft) (*database.ReviewWriteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[review.BookingID]
	if !ok {
		return nil, database.ErrNotFound
	}
	if b.Status != models.BookingStatusCompleted {
		return nil, database.ErrStaleStatus
	}
	if _, exists := r.reviews[review.BookingID]; exists {
		return nil, database.ErrDuplicate
	}

	row := *review
	row.ReviewID = r.id()
	row.CreatedAt = time.Now()
	r.reviews[review.BookingID] = &row

	result := &database.ReviewWriteResult{Review: &row}
	if draft != nil {
		n := models.Notification{NotificationID: r.id(), UserID: draft.UserID, Type: draft.Type, Title: draft.Title, Message: draft.Message, RelatedBookingID: draft.RelatedBookingID, CreatedAt: time.Now()}
		r.notifications = append(r.notifications, n)
		result.Notifications = append(result.Notifications, n)
	}
	return result, nil
}

func (r reviewTable) ListForHotel(ctx context.Context, hotelID int64) ([]models.ReviewWithGuest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.ReviewWithGuest{}
	for _, rev := range r.reviews {
		if rev.HotelID == hotelID {
			out = append(out, models.ReviewWithGuest{Review: *rev})
		}
	}
	return out, nil
}

func (r reviewTable) ListForHost(ctx context.Context, hostID int64) ([]models.ReviewWithGuest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.ReviewWithGuest{}
	for _, rev := range r.reviews {
		if r.hotels[rev.HotelID].HostID == hostID {
			out = append(out, models.ReviewWithGuest{Review: *rev})
		}
	}
	return out, nil
}

func (r reviewTable) RatingsForHost(ctx context.Context, hostID int64) ([]int, error) {
	rows, _ := r.ListForHost(ctx, hostID)
	ratings := make([]int, 0, len(rows))
	for _, row := range rows {
		ratings = append(ratings, row.Rating)
	}
	return ratings, nil
}

// wishlistTable exposes wishlists
type wishlistTable struct{ *memoryStore }

func (w wishlistTable) Add(ctx context.Context, guestID, hotelID int64) (*models.WishlistEntry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := [2]int64{guestID, hotelID}
	if _, ok := w.wishlist[key]; ok {
		return nil, database.ErrDuplicate
	}
	entry := &models.WishlistEntry{WishlistID: w.id(), GuestID: guestID, HotelID: hotelID, CreatedAt: time.Now()}
	w.wishlist[key] = entry
	return entry, nil
}

func (w wishlistTable) Remove(ctx context.Context, guestID, hotelID int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := [2]int64{guestID, hotelID}
	if _, ok := w.wishlist[key]; !ok {
		return database.ErrNotFound
	}
	delete(w.wishlist, key)
	return nil
}

func (w wishlistTable) ListForGuest(ctx context.Context, guestID int64) ([]models.WishlistItem, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := []models.WishlistItem{}
	for key, entry := range w.wishlist {
		if key[0] == guestID {
			out = append(out, models.WishlistItem{WishlistID: entry.WishlistID, AddedAt: entry.CreatedAt, HotelListing: models.HotelListing{Hotel: *w.hotels[key[1]]}})
		}
	}
	return out, nil
}

// recordingPublisher captures published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.LifecycleEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.LifecycleEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []models.NotificationType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.NotificationType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
