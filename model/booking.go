package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateTimeLayout is how booking timestamps are shown.
const DateTimeLayout = "02-01-2006 15:04:05"

var ErrAlreadyCancelled = errors.New("booking already cancelled")

type Booking struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customer_name"`
	MovieID      string          `json:"movie_id"`
	MovieTitle   string          `json:"movie_title"`
	Seats        []Seat          `json:"booked_seats"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	CreatedAt    time.Time       `json:"created_at"`
	Cancelled    bool            `json:"cancelled"`
	CancelledAt  *time.Time      `json:"cancelled_at,omitempty"`
}

// NewBooking prices the seats at the movie's current ticket price.
func NewBooking(customerName string, movie *Movie, seats []Seat, now time.Time) *Booking {
	return &Booking{
		ID:           uuid.NewString(),
		CustomerName: customerName,
		MovieID:      movie.ID,
		MovieTitle:   movie.Title,
		Seats:        seats,
		TotalPrice:   movie.Price.Mul(decimal.NewFromInt(int64(len(seats)))),
		CreatedAt:    now,
	}
}

// Cancel flips the booking to cancelled. It never flips back.
func (b *Booking) Cancel(now time.Time) error {
	if b.Cancelled {
		return errors.Wrapf(ErrAlreadyCancelled, "booking %s", b.ID)
	}
	b.Cancelled = true
	b.CancelledAt = &now
	return nil
}

func (b *Booking) Status() string {
	if b.Cancelled {
		return "Cancelled"
	}
	return "Confirmed"
}

func (b *Booking) SeatLabels() string {
	labels := make([]string, len(b.Seats))
	for i, seat := range b.Seats {
		labels[i] = seat.String()
	}
	return strings.Join(labels, " ")
}

func (b *Booking) Clone() *Booking {
	clone := *b
	clone.Seats = append([]Seat(nil), b.Seats...)
	if b.CancelledAt != nil {
		at := *b.CancelledAt
		clone.CancelledAt = &at
	}
	return &clone
}

// Ledger is the append-only record of every booking ever made.
type Ledger struct {
	bookings []*Booking
}

func NewLedger(bookings ...*Booking) *Ledger {
	return &Ledger{bookings: bookings}
}

func (l *Ledger) Append(b *Booking) {
	l.bookings = append(l.bookings, b)
}

func (l *Ledger) All() []*Booking {
	return l.bookings
}

func (l *Ledger) Len() int {
	return len(l.bookings)
}

// ActiveFor returns the customer's uncancelled bookings in ledger order.
func (l *Ledger) ActiveFor(customerName string) []*Booking {
	var active []*Booking
	for _, b := range l.bookings {
		if !b.Cancelled && strings.EqualFold(b.CustomerName, customerName) {
			active = append(active, b)
		}
	}
	return active
}

func (l *Ledger) Clone() *Ledger {
	bookings := make([]*Booking, len(l.bookings))
	for i, b := range l.bookings {
		bookings[i] = b.Clone()
	}
	return &Ledger{bookings: bookings}
}

func (l *Ledger) MarshalJSON() ([]byte, error) {
	bookings := l.bookings
	if bookings == nil {
		bookings = []*Booking{}
	}
	return json.Marshal(bookings)
}

func (l *Ledger) UnmarshalJSON(data []byte) error {
	var bookings []*Booking
	if err := json.Unmarshal(data, &bookings); err != nil {
		return err
	}
	for i, b := range bookings {
		if b == nil {
			return errors.Newf("booking %d is empty", i+1)
		}
	}
	l.bookings = bookings
	return nil
}
