package lifecycle

import (
	"math"

	"github.com/staynest/booking-backend/internal/models"
)

// CalculatePrice returns price_per_night × nights for the stay. The product
// is taken in integer cents so 3 × 149.00 is exactly 447.00.
func CalculatePrice(pricePerNight float64, stay models.StayRange) (float64, int, error) {
	if err := stay.Validate(); err != nil {
		return 0, 0, err
	}
	if pricePerNight <= 0 {
		return 0, 0, models.NewValidationError("price_per_night", "must be greater than 0")
	}

	nights := stay.Nights()
	cents := ToCents(pricePerNight) * int64(nights)
	return FromCents(cents), nights, nil
}

// ToCents converts an amount to integer cents, rounding half away from zero
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromCents converts integer cents back to an amount
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}
