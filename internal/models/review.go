package models

import (
	"math"
	"time"
)

// Review references exactly one completed booking
type Review struct {
	ReviewID  int64     `json:"review_id" db:"review_id"`
	BookingID int64     `json:"booking_id" db:"booking_id"`
	HotelID   int64     `json:"hotel_id" db:"hotel_id"`
	GuestID   int64     `json:"guest_id" db:"guest_id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   *string   `json:"comment,omitempty" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateReviewRequest represents a guest's review of a completed stay
type CreateReviewRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment" binding:"omitempty,max=2000"`
}

// Validate checks the rating range
func (r *CreateReviewRequest) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return NewValidationError("rating", "must be between 1 and 5")
	}
	return nil
}

// ReviewWithGuest is a review joined with the reviewer and hotel names
type ReviewWithGuest struct {
	Review
	GuestFirstName       string  `json:"guest_first_name" db:"guest_first_name"`
	GuestLastName        string  `json:"guest_last_name" db:"guest_last_name"`
	GuestProfilePhotoURL *string `json:"guest_profile_photo_url,omitempty" db:"guest_profile_photo_url"`
	HotelName            string  `json:"hotel_name" db:"hotel_name"`
}

// RatingSummary is the mean/count aggregate over a set of reviews.
// Average is nil when there are no reviews.
type RatingSummary struct {
	Average *float64 `json:"average_rating"`
	Count   int      `json:"review_count"`
}

// SummarizeRatings computes the average rating rounded to two decimals
func SummarizeRatings(ratings []int) RatingSummary {
	if len(ratings) == 0 {
		return RatingSummary{}
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	avg := math.Round(float64(sum)/float64(len(ratings))*100) / 100
	return RatingSummary{Average: &avg, Count: len(ratings)}
}
