package models

import (
	"sort"
	"time"
)

// HostOverview is the KPI block of the host dashboard
type HostOverview struct {
	TotalRevenue    float64        `json:"total_revenue"`
	ActiveListings  int            `json:"active_listings"`
	TotalListings   int            `json:"total_listings"`
	PendingBookings int            `json:"pending_bookings"`
	Rating          RatingSummary  `json:"rating"`
	RecentActivity  []ActivityItem `json:"recent_activity"`
}

// HostStats is the raw aggregate row behind HostOverview
type HostStats struct {
	TotalRevenue    float64 `db:"total_revenue"`
	ActiveListings  int     `db:"active_listings"`
	TotalListings   int     `db:"total_listings"`
	PendingBookings int     `db:"pending_bookings"`
}

// ActivityItem is one entry of the host's recent activity feed
type ActivityItem struct {
	Kind      string    `json:"kind"` // "booking" or "notification"
	At        time.Time `json:"at"`
	BookingID *int64    `json:"booking_id,omitempty"`
	Title     string    `json:"title"`
	Detail    string    `json:"detail"`
}

// MergeActivity interleaves activity items newest first and keeps at most limit
func MergeActivity(limit int, groups ...[]ActivityItem) []ActivityItem {
	var all []ActivityItem
	for _, g := range groups {
		all = append(all, g...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].At.After(all[j].At)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}
