package models

import (
	"strings"
	"time"
)

// Hotel is a bookable property owned by exactly one host
type Hotel struct {
	HotelID         int64       `json:"hotel_id" db:"hotel_id"`
	HostID          int64       `json:"host_id" db:"host_id"`
	Name            string      `json:"name" db:"name"`
	Description     *string     `json:"description,omitempty" db:"description"`
	Address         string      `json:"address" db:"address"`
	City            string      `json:"city" db:"city"`
	Country         string      `json:"country" db:"country"`
	MaxGuests       int         `json:"max_guests" db:"max_guests"`
	Bedrooms        int         `json:"bedrooms" db:"bedrooms"`
	Bathrooms       int         `json:"bathrooms" db:"bathrooms"`
	PricePerNight   float64     `json:"price_per_night" db:"price_per_night"`
	Amenities       StringArray `json:"amenities" db:"amenities"`
	Images          StringArray `json:"images" db:"images"`
	PrimaryImageURL *string     `json:"primary_image_url,omitempty" db:"primary_image_url"`
	IsActive        bool        `json:"is_active" db:"is_active"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

// HotelInput is the writable shape of a hotel, shared by create and update
type HotelInput struct {
	Name            string   `json:"name" binding:"required,max=200"`
	Description     *string  `json:"description"`
	Address         string   `json:"address" binding:"required"`
	City            string   `json:"city" binding:"required"`
	Country         string   `json:"country" binding:"required"`
	MaxGuests       int      `json:"max_guests"`
	Bedrooms        int      `json:"bedrooms" binding:"min=0"`
	Bathrooms       int      `json:"bathrooms" binding:"min=0"`
	PricePerNight   float64  `json:"price_per_night"`
	Amenities       []string `json:"amenities"`
	Images          []string `json:"images" binding:"dive,url"`
	PrimaryImageURL *string  `json:"primary_image_url"`
	IsActive        *bool    `json:"is_active"`
}

// Validate checks the hotel invariants: price and capacity must be positive,
// and the primary image, when set, must be one of the listed images
func (in *HotelInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewValidationError("name", "is required")
	}
	if in.PricePerNight <= 0 {
		return NewValidationError("price_per_night", "must be greater than 0")
	}
	if in.MaxGuests <= 0 {
		return NewValidationError("max_guests", "must be greater than 0")
	}
	if in.Bedrooms < 0 || in.Bathrooms < 0 {
		return NewValidationError("bedrooms", "room counts cannot be negative")
	}
	if in.PrimaryImageURL != nil && *in.PrimaryImageURL != "" {
		found := false
		for _, img := range in.Images {
			if img == *in.PrimaryImageURL {
				found = true
				break
			}
		}
		if !found {
			return NewValidationError("primary_image_url", "must be one of images")
		}
	}
	return nil
}

// ApplyTo copies the input onto a hotel row
func (in *HotelInput) ApplyTo(h *Hotel) {
	h.Name = strings.TrimSpace(in.Name)
	h.Description = in.Description
	h.Address = in.Address
	h.City = strings.TrimSpace(in.City)
	h.Country = in.Country
	h.MaxGuests = in.MaxGuests
	h.Bedrooms = in.Bedrooms
	h.Bathrooms = in.Bathrooms
	h.PricePerNight = in.PricePerNight
	h.Amenities = NormalizeTags(in.Amenities)
	h.Images = StringArray(append([]string{}, in.Images...))
	h.PrimaryImageURL = in.PrimaryImageURL
	if h.PrimaryImageURL != nil && *h.PrimaryImageURL == "" {
		h.PrimaryImageURL = nil
	}
	if h.PrimaryImageURL == nil && len(h.Images) > 0 {
		first := h.Images[0]
		h.PrimaryImageURL = &first
	}
	if in.IsActive != nil {
		h.IsActive = *in.IsActive
	}
}

// SetActiveRequest toggles a hotel's publish flag
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// HotelListing is the hotel listing projection: hotel plus host and live rating aggregates
type HotelListing struct {
	Hotel
	HostFirstName       string   `json:"host_first_name" db:"host_first_name"`
	HostLastName        string   `json:"host_last_name" db:"host_last_name"`
	HostProfilePhotoURL *string  `json:"host_profile_photo_url,omitempty" db:"host_profile_photo_url"`
	AverageRating       *float64 `json:"average_rating" db:"average_rating"`
	ReviewCount         int      `json:"review_count" db:"review_count"`
}

// HotelFilter narrows hotel listing reads
type HotelFilter struct {
	City   string
	HostID *int64
	// ActiveOnly restricts results to published hotels
	ActiveOnly bool
	Limit      int
	Offset     int
}
