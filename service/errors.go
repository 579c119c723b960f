package service

import (
	"github.com/cockroachdb/errors"

	"movie-ticket-cli/model"
)

var (
	// ErrInvalidSelection is shared with the model so callers need a single check.
	ErrInvalidSelection     = model.ErrInvalidSelection
	ErrNoActiveBookings     = errors.New("no active bookings")
	ErrPersistence          = errors.New("persistence failure")
	ErrEmptyCustomerName    = errors.New("customer name is required")
	ErrInvalidSeatCount     = errors.New("ticket count must be at least 1")
	ErrInsufficientCapacity = errors.New("not enough seats available")
	ErrSelectionAborted     = errors.New("seat selection aborted")
	ErrTooManyAttempts      = errors.New("too many invalid seat choices")
)

// IsPersistence reports whether err carries a failed load or save. The
// in-memory operation it accompanies has still been applied.
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}

func persistenceError(err error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrPersistence)
}
