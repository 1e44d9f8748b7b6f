package models

import "sort"

// FamousPlace is a global catalog entry that hotels can link to
type FamousPlace struct {
	PlaceID         int64       `json:"place_id" db:"place_id"`
	Name            string      `json:"name" db:"name"`
	City            string      `json:"city" db:"city"`
	Country         string      `json:"country" db:"country"`
	Address         *string     `json:"address,omitempty" db:"address"`
	Category        *string     `json:"category,omitempty" db:"category"`
	Description     *string     `json:"description,omitempty" db:"description"`
	Images          StringArray `json:"images" db:"images"`
	PrimaryImageURL *string     `json:"primary_image_url,omitempty" db:"primary_image_url"`
}

// NearbyPlace is a famous place linked to a hotel with its distance
type NearbyPlace struct {
	HotelID int64 `json:"hotel_id" db:"hotel_id"`
	FamousPlace
	DistanceM *int `json:"distance_m" db:"distance_m"`
}

// LinkPlaceRequest links a catalog place to a hotel or updates its distance
type LinkPlaceRequest struct {
	PlaceID   int64 `json:"place_id" binding:"required,gt=0"`
	DistanceM *int  `json:"distance_m" binding:"omitempty,gte=0"`
}

// UpdateDistanceRequest changes the distance of an existing link
type UpdateDistanceRequest struct {
	DistanceM *int `json:"distance_m" binding:"omitempty,gte=0"`
}

// SortNearbyPlaces orders places by distance ascending with unknown
// distances last; ties break on name, then place id
func SortNearbyPlaces(places []NearbyPlace) {
	sort.SliceStable(places, func(i, j int) bool {
		a, b := places[i], places[j]
		switch {
		case a.DistanceM == nil && b.DistanceM != nil:
			return false
		case a.DistanceM != nil && b.DistanceM == nil:
			return true
		case a.DistanceM != nil && b.DistanceM != nil && *a.DistanceM != *b.DistanceM:
			return *a.DistanceM < *b.DistanceM
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.PlaceID < b.PlaceID
	})
}
