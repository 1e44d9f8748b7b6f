package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHotelRepository_SearchAvailable(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewHotelRepository(db)

	stay := testStay()
	now := time.Now()

	mock.ExpectQuery(`b.status = ANY\(\$5::booking_status\[\]\)(.+)ORDER BY h.price_per_night ASC, h.hotel_id ASC`).
		WithArgs("Lisbon", 2, "2025-06-10", "2025-06-13", activeStatuses).
		WillReturnRows(sqlmock.NewRows(listingRowColumns).AddRow(
			int64(7), int64(1), "Casa Azul", nil, "Rua 1", "Lisbon", "Portugal",
			4, 2, 1, 89.0, "{}", "{}",
			nil, true, now, now,
			"Ana", "Silva", nil,
			nil, 0,
		))

	listings, err := repo.SearchAvailable(context.Background(), models.SearchQuery{
		City: "Lisbon", CheckIn: stay.CheckIn, CheckOut: stay.CheckOut, NumGuests: 2,
	})
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, int64(7), listings[0].HotelID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveStatuses(t *testing.T) {
	assert.Equal(t, []string{"pending", "confirmed", "completed"}, []string(activeStatuses))
}
