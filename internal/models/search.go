package models

import "strings"

// SearchQuery represents an availability search
type SearchQuery struct {
	City      string `form:"city" json:"city"`
	CheckIn   Date   `form:"check_in" json:"check_in"`
	CheckOut  Date   `form:"check_out" json:"check_out"`
	NumGuests int    `form:"guests" json:"guests"`
}

// Stay returns the requested date range
func (q *SearchQuery) Stay() StayRange {
	return StayRange{CheckIn: q.CheckIn, CheckOut: q.CheckOut}
}

// Validate checks the search input; it normalizes the city in place
func (q *SearchQuery) Validate() error {
	q.City = strings.TrimSpace(q.City)
	if q.City == "" {
		return NewValidationError("city", "is required")
	}
	if q.NumGuests < 1 {
		return NewValidationError("guests", "must be at least 1")
	}
	return q.Stay().Validate()
}

// AvailableHotel is one search result: the hotel listing plus the derived price for the stay
type AvailableHotel struct {
	HotelListing
	Nights     int     `json:"nights" db:"-"`
	TotalPrice float64 `json:"total_price" db:"-"`
}

// SearchResponse wraps search results
type SearchResponse struct {
	Query   SearchQuery      `json:"query"`
	Results []AvailableHotel `json:"results"`
	Count   int              `json:"count"`
}

// AvailabilityResponse answers the single-hotel availability question
type AvailabilityResponse struct {
	HotelID    int64   `json:"hotel_id"`
	CheckIn    Date    `json:"check_in"`
	CheckOut   Date    `json:"check_out"`
	Available  bool    `json:"available"`
	Nights     int     `json:"nights"`
	TotalPrice float64 `json:"total_price"`
}
