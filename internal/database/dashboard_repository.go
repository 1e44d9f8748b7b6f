package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/staynest/booking-backend/internal/models"
)

// DashboardRepository computes host dashboard aggregates
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository creates a new DashboardRepository
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// HostStats returns revenue, listing and pending-booking counts for a host.
// Revenue is the sum of completed payments.
func (r *DashboardRepository) HostStats(ctx context.Context, hostID int64) (*models.HostStats, error) {
	query := `
		SELECT
			COALESCE((
				SELECT SUM(p.amount)
				FROM payments p
				JOIN bookings b ON b.booking_id = p.booking_id
				JOIN hotels h ON h.hotel_id = b.hotel_id
				WHERE h.host_id = $1 AND p.status = 'completed'
			), 0)::float8 AS total_revenue,
			(SELECT COUNT(*) FROM hotels WHERE host_id = $1 AND is_active = TRUE)::int AS active_listings,
			(SELECT COUNT(*) FROM hotels WHERE host_id = $1)::int AS total_listings,
			(
				SELECT COUNT(*)
				FROM bookings b
				JOIN hotels h ON h.hotel_id = b.hotel_id
				WHERE h.host_id = $1 AND b.status = 'pending'
			)::int AS pending_bookings`

	var stats models.HostStats
	if err := r.db.GetContext(ctx, &stats, query, hostID); err != nil {
		return nil, fmt.Errorf("failed to compute host stats: %w", err)
	}
	return &stats, nil
}
