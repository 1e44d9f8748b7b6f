package services

import (
	"errors"

	"github.com/staynest/booking-backend/internal/database"
	"github.com/staynest/booking-backend/internal/models"
)

// translateError maps repository sentinels onto the error taxonomy.
// Anything unrecognized is returned unchanged and surfaces as an internal error.
func translateError(err error, resource string, id interface{}) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, database.ErrNotFound):
		return &models.NotFoundError{Resource: resource, ID: id}
	case errors.Is(err, database.ErrBookingOverlap):
		return &models.ConflictError{Message: "hotel is already booked for the requested dates"}
	case errors.Is(err, database.ErrDuplicate):
		return &models.ConflictError{Message: resource + " already exists"}
	case errors.Is(err, database.ErrInvalidReference):
		return models.NewValidationError(resource, "references a record that does not exist")
	}
	return err
}

func isNotFound(err error) bool {
	var nf *models.NotFoundError
	return errors.Is(err, database.ErrNotFound) || errors.As(err, &nf)
}
