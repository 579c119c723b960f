package service

import (
	"context"

	"github.com/cockroachdb/errors"

	"movie-ticket-cli/model"
)

// Gateway loads and saves the two persisted aggregates. LoadCatalog reports
// found=false when nothing has been stored yet.
type Gateway interface {
	LoadCatalog() (catalog *model.Catalog, found bool, err error)
	SaveCatalog(catalog *model.Catalog) error
	LoadLedger() (*model.Ledger, error)
	SaveLedger(ledger *model.Ledger) error
}

// SeatView is the read-only grid a SeatSelector chooses from.
type SeatView interface {
	Rows() int
	Cols() int
	IsAvailable(row, col int) bool
	IsBooked(row, col int) bool
}

// SeatSelector supplies seat candidates. ordinal is the 0-based ticket being
// chosen; it is asked again for the same ordinal after a rejected candidate.
type SeatSelector interface {
	SelectSeat(ctx context.Context, seats SeatView, ordinal int) (model.Seat, error)
}

// SeatRejectionNotifier is implemented by selectors that want to hear why a
// candidate was refused before being asked again.
type SeatRejectionNotifier interface {
	SeatRejected(seat model.Seat, ordinal int)
}

type SeatSelectorFunc func(ctx context.Context, seats SeatView, ordinal int) (model.Seat, error)

func (f SeatSelectorFunc) SelectSeat(ctx context.Context, seats SeatView, ordinal int) (model.Seat, error) {
	return f(ctx, seats, ordinal)
}

// QueuedSeats hands out the given seats in order and aborts once they run
// out. Front ends that validate seats up front use it.
func QueuedSeats(seats ...model.Seat) SeatSelector {
	next := 0
	return SeatSelectorFunc(func(ctx context.Context, _ SeatView, _ int) (model.Seat, error) {
		if next >= len(seats) {
			return model.Seat{}, errors.Wrap(ErrSelectionAborted, "no more queued seats")
		}
		seat := seats[next]
		next++
		return seat, nil
	})
}

// BookingSelector picks one of the customer's active bookings by index.
type BookingSelector interface {
	SelectBooking(ctx context.Context, candidates []model.Booking) (int, error)
}

type BookingSelectorFunc func(ctx context.Context, candidates []model.Booking) (int, error)

func (f BookingSelectorFunc) SelectBooking(ctx context.Context, candidates []model.Booking) (int, error) {
	return f(ctx, candidates)
}

// PickBooking always selects index i.
func PickBooking(i int) BookingSelector {
	return BookingSelectorFunc(func(context.Context, []model.Booking) (int, error) {
		return i, nil
	})
}
