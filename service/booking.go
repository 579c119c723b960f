package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"movie-ticket-cli/model"
)

// refundRate is what the customer gets back; the rest is the 15%
// cancellation fee.
var refundRate = decimal.RequireFromString("0.85")

// Refund returns the amount paid back when a booking of total is cancelled.
func Refund(total decimal.Decimal) decimal.Decimal {
	return total.Mul(refundRate)
}

// Service owns the catalog and ledger and saves both after every change.
type Service struct {
	mu sync.Mutex

	gateway         Gateway
	log             *zap.Logger
	now             func() time.Time
	maxSeatAttempts int

	catalog *model.Catalog
	ledger  *model.Ledger
}

type Option func(*Service)

func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMaxSeatAttempts bounds how many candidates are tried per ticket.
// Zero keeps asking until an available seat is chosen.
func WithMaxSeatAttempts(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxSeatAttempts = n
		}
	}
}

// Cancellation is the outcome of CancelBooking.
type Cancellation struct {
	Booking       model.Booking
	Refund        decimal.Decimal
	SeatsReleased int
}

// Open hydrates the service from gateway. A missing catalog is replaced by
// the default one. Load and seed failures are returned marked with
// ErrPersistence next to a usable service.
func Open(gateway Gateway, opts ...Option) (*Service, error) {
	s := &Service{
		gateway: gateway,
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	var loadErr error
	catalog, found, err := gateway.LoadCatalog()
	if err != nil {
		s.log.Warn("could not load movie catalog", zap.Error(err))
		loadErr = errors.CombineErrors(loadErr, persistenceError(err, "load catalog"))
		found = false
	}
	if !found || catalog == nil {
		s.log.Info("initializing default movie catalog")
		catalog = model.DefaultCatalog()
		if err := gateway.SaveCatalog(catalog); err != nil {
			s.log.Error("could not save default movie catalog", zap.Error(err))
			loadErr = errors.CombineErrors(loadErr, persistenceError(err, "save catalog"))
		}
	}
	s.catalog = catalog

	ledger, err := gateway.LoadLedger()
	if err != nil {
		s.log.Warn("could not load bookings, starting empty", zap.Error(err))
		loadErr = errors.CombineErrors(loadErr, persistenceError(err, "load ledger"))
		ledger = nil
	}
	if ledger == nil {
		ledger = model.NewLedger()
	}
	s.ledger = ledger

	s.log.Info("booking service ready",
		zap.Int("movies", s.catalog.Len()),
		zap.Int("bookings", s.ledger.Len()),
	)
	return s, loadErr
}

// CreateBooking reserves count seats on the movie at movieIndex, asking
// selector for each seat until an available one is given. If selection
// stops early the seats taken so far are released and nothing is booked.
//
// A non-nil booking with an ErrPersistence error means the booking exists
// in memory but could not be saved.
func (s *Service) CreateBooking(ctx context.Context, customerName string, movieIndex int, count int, selector SeatSelector) (*model.Booking, error) {
	name := strings.TrimSpace(customerName)
	if name == "" {
		return nil, ErrEmptyCustomerName
	}
	if count <= 0 {
		return nil, errors.Wrapf(ErrInvalidSeatCount, "got %d", count)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	movie, err := s.catalog.At(movieIndex)
	if err != nil {
		return nil, err
	}
	if available := movie.Seats.AvailableCount(); count > available {
		return nil, errors.Wrapf(ErrInsufficientCapacity, "%d requested, %d available for %s", count, available, movie.Title)
	}

	seats, err := s.reserveSeats(ctx, movie, count, selector)
	if err != nil {
		return nil, err
	}

	booking := model.NewBooking(name, movie, seats, s.now())
	s.ledger.Append(booking)
	s.log.Info("booking confirmed",
		zap.String("booking_id", booking.ID),
		zap.String("customer", booking.CustomerName),
		zap.String("movie", booking.MovieTitle),
		zap.Int("seats", len(booking.Seats)),
		zap.Stringer("total", booking.TotalPrice),
	)
	return booking.Clone(), s.persist()
}

func (s *Service) reserveSeats(ctx context.Context, movie *model.Movie, count int, selector SeatSelector) ([]model.Seat, error) {
	seats := make([]model.Seat, 0, count)
	for ordinal := 0; ordinal < count; ordinal++ {
		seat, err := s.nextSeat(ctx, movie, ordinal, selector)
		if err != nil {
			for _, held := range seats {
				movie.Seats.Release(held.Row, held.Col)
			}
			s.log.Info("seat selection stopped, released held seats",
				zap.String("movie", movie.Title),
				zap.Int("released", len(seats)),
				zap.Error(err),
			)
			return nil, err
		}
		movie.Seats.Book(seat.Row, seat.Col)
		seats = append(seats, seat)
	}
	return seats, nil
}

func (s *Service) nextSeat(ctx context.Context, movie *model.Movie, ordinal int, selector SeatSelector) (model.Seat, error) {
	notifier, _ := selector.(SeatRejectionNotifier)
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return model.Seat{}, errors.Mark(errors.Wrapf(err, "seat %d", ordinal+1), ErrSelectionAborted)
		}
		seat, err := selector.SelectSeat(ctx, movie.Seats.Clone(), ordinal)
		if err != nil {
			return model.Seat{}, errors.Mark(errors.Wrapf(err, "seat %d", ordinal+1), ErrSelectionAborted)
		}
		if movie.Seats.IsAvailable(seat.Row, seat.Col) {
			return seat, nil
		}

		s.log.Debug("seat unavailable or invalid",
			zap.String("movie", movie.Title),
			zap.Stringer("seat", seat),
			zap.Int("attempt", attempt),
		)
		if notifier != nil {
			notifier.SeatRejected(seat, ordinal)
		}
		if s.maxSeatAttempts > 0 && attempt >= s.maxSeatAttempts {
			return model.Seat{}, errors.Wrapf(ErrTooManyAttempts, "seat %d after %d attempts", ordinal+1, attempt)
		}
	}
}

// ActiveBookings lists the customer's uncancelled bookings in ledger order.
func (s *Service) ActiveBookings(customerName string) ([]model.Booking, error) {
	name := strings.TrimSpace(customerName)
	if name == "" {
		return nil, ErrEmptyCustomerName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.ledger.ActiveFor(name)
	if len(active) == 0 {
		return nil, errors.Wrapf(ErrNoActiveBookings, "for %s", name)
	}
	return snapshot(active), nil
}

// CancelBooking cancels the active booking picked by selector, frees its
// seats and reports the refund.
func (s *Service) CancelBooking(ctx context.Context, customerName string, selector BookingSelector) (*Cancellation, error) {
	name := strings.TrimSpace(customerName)
	if name == "" {
		return nil, ErrEmptyCustomerName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	candidates := s.ledger.ActiveFor(name)
	if len(candidates) == 0 {
		return nil, errors.Wrapf(ErrNoActiveBookings, "for %s", name)
	}

	index, err := selector.SelectBooking(ctx, snapshot(candidates))
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "select booking"), ErrSelectionAborted)
	}
	if index < 0 || index >= len(candidates) {
		return nil, errors.Wrapf(ErrInvalidSelection, "booking %d", index+1)
	}

	booking := candidates[index]
	if err := booking.Cancel(s.now()); err != nil {
		return nil, err
	}
	refund := Refund(booking.TotalPrice)
	released := s.releaseSeats(booking)

	s.log.Info("booking cancelled",
		zap.String("booking_id", booking.ID),
		zap.String("customer", booking.CustomerName),
		zap.String("movie", booking.MovieTitle),
		zap.Int("seats_released", released),
		zap.Stringer("refund", refund),
	)

	result := &Cancellation{
		Booking:       *booking.Clone(),
		Refund:        refund,
		SeatsReleased: released,
	}
	return result, s.persist()
}

// releaseSeats frees the booking's seats on its movie, found by id and then
// by title. A booking whose movie is gone releases nothing.
func (s *Service) releaseSeats(booking *model.Booking) int {
	movie, err := s.catalog.FindByID(booking.MovieID)
	if err != nil {
		movie, err = s.catalog.FindByTitle(booking.MovieTitle)
	}
	if err != nil {
		s.log.Warn("movie for booking not in catalog, no seats released",
			zap.String("booking_id", booking.ID),
			zap.String("movie", booking.MovieTitle),
		)
		return 0
	}
	for _, seat := range booking.Seats {
		movie.Seats.Release(seat.Row, seat.Col)
	}
	return len(booking.Seats)
}

// Save writes both aggregates again.
func (s *Service) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist()
}

func (s *Service) persist() error {
	var errs error
	if err := s.gateway.SaveCatalog(s.catalog); err != nil {
		s.log.Error("error saving movie data", zap.Error(err))
		errs = errors.CombineErrors(errs, persistenceError(err, "save catalog"))
	}
	if err := s.gateway.SaveLedger(s.ledger); err != nil {
		s.log.Error("error saving booking data", zap.Error(err))
		errs = errors.CombineErrors(errs, persistenceError(err, "save ledger"))
	}
	return errs
}

// Catalog returns a deep copy of the current catalog.
func (s *Service) Catalog() *model.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Clone()
}

func (s *Service) Movie(index int) (*model.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	movie, err := s.catalog.At(index)
	if err != nil {
		return nil, err
	}
	return movie.Clone(), nil
}

// Ledger returns a deep copy of every booking made so far.
func (s *Service) Ledger() *model.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Clone()
}

func snapshot(bookings []*model.Booking) []model.Booking {
	out := make([]model.Booking, len(bookings))
	for i, b := range bookings {
		out[i] = *b.Clone()
	}
	return out
}
