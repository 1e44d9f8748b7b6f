package models

import "time"

// WishlistEntry associates a guest with a hotel; unique per pair
type WishlistEntry struct {
	WishlistID int64     `json:"wishlist_id" db:"wishlist_id"`
	GuestID    int64     `json:"guest_id" db:"guest_id"`
	HotelID    int64     `json:"hotel_id" db:"hotel_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// WishlistItem is a wishlist entry with its hotel listing
type WishlistItem struct {
	WishlistID int64     `json:"wishlist_id" db:"wishlist_id"`
	AddedAt    time.Time `json:"added_at" db:"added_at"`
	HotelListing
}

// AddWishlistRequest adds a hotel to the caller's wishlist
type AddWishlistRequest struct {
	HotelID int64 `json:"hotel_id" binding:"required,gt=0"`
}
