package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when the addressed row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrBookingOverlap is returned when an active booking already occupies the dates
	ErrBookingOverlap = errors.New("hotel already booked for these dates")
	// ErrDuplicate is returned on unique constraint violations
	ErrDuplicate = errors.New("duplicate record")
	// ErrStaleStatus is returned when a booking's status changed under a write
	ErrStaleStatus = errors.New("booking status changed concurrently")
	// ErrInvalidReference is returned on foreign key violations
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// PostgreSQL error codes
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqExclusionViolation  = "23P01"
)

// mapError translates driver errors into repository sentinels.
// Unrecognized errors are returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqExclusionViolation:
			return ErrBookingOverlap
		case pqUniqueViolation:
			return ErrDuplicate
		case pqForeignKeyViolation:
			return ErrInvalidReference
		}
	}
	return err
}

// isSentinel reports whether err is one of the repository sentinels,
// which callers get unwrapped
func isSentinel(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrBookingOverlap) ||
		errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrStaleStatus) ||
		errors.Is(err, ErrInvalidReference)
}

// wrapError maps err to a sentinel when possible and otherwise wraps it with
// "failed to <action>"
func wrapError(err error, action string) error {
	if mapped := mapError(err); isSentinel(mapped) {
		return mapped
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
