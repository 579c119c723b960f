package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"movie-ticket-cli/model"
	"movie-ticket-cli/service"
	"movie-ticket-cli/store"
)

func newBookCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "book",
		Short: "Book tickets with interactive prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBook(cmd.Context(), cmd.OutOrStdout(), s.svc)
		},
	}
}

func newCancelCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Cancel an active booking with interactive prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCancel(cmd.Context(), cmd.OutOrStdout(), s.svc)
		},
	}
}

func runBook(ctx context.Context, out io.Writer, svc *service.Service) error {
	catalog := svc.Catalog()
	labels := make([]string, 0, catalog.Len())
	for _, movie := range catalog.List() {
		labels = append(labels, fmt.Sprintf("%s (%s, %d seats left)", movie.Title, store.FormatPrice(movie.Price), movie.Seats.AvailableCount()))
	}

	movieSelect := promptui.Select{
		Label: "Select Movie",
		Items: labels,
	}
	index, _, err := movieSelect.Run()
	if err != nil {
		return promptError(err)
	}

	name, err := promptText("Enter your name", validateName)
	if err != nil {
		return err
	}
	countText, err := promptText("Enter number of tickets", validateCount)
	if err != nil {
		return err
	}
	count, _ := strconv.Atoi(countText)

	movie, err := svc.Movie(index)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	renderSeats(out, movie.Seats)
	fmt.Fprintln(out)

	booking, err := svc.CreateBooking(ctx, name, index, count, &promptSeatSelector{out: out})
	if booking == nil {
		return err
	}

	fmt.Fprintln(out, "\nBooking Summary")
	fmt.Fprintf(out, "Customer: %s\n", booking.CustomerName)
	fmt.Fprintf(out, "Movie: %s\n", booking.MovieTitle)
	fmt.Fprintf(out, "Seats: %s\n", booking.SeatLabels())
	fmt.Fprintf(out, "Total Price: %s\n", store.FormatPrice(booking.TotalPrice))
	fmt.Fprintf(out, "Date & Time: %s\n", booking.CreatedAt.Format(model.DateTimeLayout))
	fmt.Fprintln(out, "Booking Confirmed!")
	return err
}

func runCancel(ctx context.Context, out io.Writer, svc *service.Service) error {
	name, err := promptText("Enter your name for cancellation", validateName)
	if err != nil {
		return err
	}

	result, err := svc.CancelBooking(ctx, name, service.BookingSelectorFunc(selectBooking))
	if result == nil {
		if errors.Is(err, service.ErrNoActiveBookings) {
			fmt.Fprintf(out, "No active bookings found for %s.\n", name)
			return nil
		}
		return err
	}

	fmt.Fprintln(out, "Booking cancelled successfully!")
	fmt.Fprintf(out, "Seats: %s\n", result.Booking.SeatLabels())
	fmt.Fprintf(out, "Refund Amount: %s\n", store.FormatPrice(result.Refund))
	return err
}

func selectBooking(_ context.Context, candidates []model.Booking) (int, error) {
	labels := make([]string, 0, len(candidates))
	for _, b := range candidates {
		labels = append(labels, bookingLabel(b))
	}
	bookingSelect := promptui.Select{
		Label: "Your Active Bookings",
		Items: labels,
	}
	index, _, err := bookingSelect.Run()
	if err != nil {
		return 0, promptError(err)
	}
	return index, nil
}

func bookingLabel(b model.Booking) string {
	return fmt.Sprintf("%s - Seats: %s - %s", b.MovieTitle, b.SeatLabels(), store.FormatPrice(b.TotalPrice))
}

// promptSeatSelector asks for a 1-based row and column per ticket.
type promptSeatSelector struct {
	out io.Writer
}

func (p *promptSeatSelector) SelectSeat(_ context.Context, seats service.SeatView, ordinal int) (model.Seat, error) {
	row, err := promptText(fmt.Sprintf("Ticket %d row (1-%d)", ordinal+1, seats.Rows()), validateInt)
	if err != nil {
		return model.Seat{}, err
	}
	col, err := promptText(fmt.Sprintf("Ticket %d column (1-%d)", ordinal+1, seats.Cols()), validateInt)
	if err != nil {
		return model.Seat{}, err
	}
	return parseSeat(row, col)
}

func (p *promptSeatSelector) SeatRejected(seat model.Seat, _ int) {
	fmt.Fprintf(p.out, "Seat %s unavailable or invalid. Please try again.\n", seat)
}

func parseSeat(row, col string) (model.Seat, error) {
	r, err := strconv.Atoi(strings.TrimSpace(row))
	if err != nil {
		return model.Seat{}, errors.Wrapf(err, "row %q", row)
	}
	c, err := strconv.Atoi(strings.TrimSpace(col))
	if err != nil {
		return model.Seat{}, errors.Wrapf(err, "column %q", col)
	}
	return model.Seat{Row: r - 1, Col: c - 1}, nil
}

func promptText(label string, validate promptui.ValidateFunc) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Validate: validate,
	}
	value, err := prompt.Run()
	if err != nil {
		return "", promptError(err)
	}
	return strings.TrimSpace(value), nil
}

func promptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort) {
		return errors.Mark(errors.Wrap(err, "prompt closed"), service.ErrSelectionAborted)
	}
	return errors.Wrap(err, "prompt")
}

func validateName(input string) error {
	if strings.TrimSpace(input) == "" {
		return service.ErrEmptyCustomerName
	}
	return nil
}

func validateCount(input string) error {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 {
		return service.ErrInvalidSeatCount
	}
	return nil
}

func validateInt(input string) error {
	if _, err := strconv.Atoi(strings.TrimSpace(input)); err != nil {
		return errors.New("enter a number")
	}
	return nil
}
