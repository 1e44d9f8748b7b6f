package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/staynest/booking-backend/internal/config"
)

// DB interface defines the database operations used outside the repositories
// (health checks, maintenance commands)
type DB interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Get(dest interface{}, query string, args ...interface{}) error
	PingContext(ctx context.Context) error
	Ping() error
	Close() error
}

// PostgresDB implements the DB interface using sqlx
type PostgresDB struct {
	*sqlx.DB
}

// NewConnection creates a new database connection
func NewConnection(cfg config.DatabaseConfig) (*PostgresDB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	// Connection poolers (Supavisor, PgBouncer in transaction mode) reject
	// server-side prepared statements
	connectionURL := cfg.URL
	if !strings.Contains(connectionURL, "prefer_simple_protocol") {
		separator := "?"
		if strings.Contains(connectionURL, "?") {
			separator = "&"
		}
		connectionURL = connectionURL + separator + "prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", connectionURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxLifetime / 2)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{DB: db}, nil
}

// Repositories bundles every repository over one connection
type Repositories struct {
	Users         *UserRepository
	Hotels        *HotelRepository
	Bookings      *BookingRepository
	Payments      *PaymentRepository
	Reviews       *ReviewRepository
	Places        *PlaceRepository
	Notifications *NotificationRepository
	Wishlists     *WishlistRepository
	Views         *ViewRepository
	Dashboard     *DashboardRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(db),
		Hotels:        NewHotelRepository(db),
		Bookings:      NewBookingRepository(db),
		Payments:      NewPaymentRepository(db),
		Reviews:       NewReviewRepository(db),
		Places:        NewPlaceRepository(db),
		Notifications: NewNotificationRepository(db),
		Wishlists:     NewWishlistRepository(db),
		Views:         NewViewRepository(db),
		Dashboard:     NewDashboardRepository(db),
	}
}
