package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"movie-ticket-cli/model"
	"movie-ticket-cli/service"
	"movie-ticket-cli/store"
)

func newMoviesCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "movies",
		Short: "List the movies playing",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			renderMovies(cmd.OutOrStdout(), s.svc.Catalog())
		},
	}
}

func newSeatsCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "seats <movie number>",
		Short: "Show the seat layout of a movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.Wrapf(service.ErrInvalidSelection, "movie %q", args[0])
			}
			movie, err := s.svc.Movie(n - 1)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s per ticket)\n\n", movie.Title, store.FormatPrice(movie.Price))
			renderSeats(cmd.OutOrStdout(), movie.Seats)
			return nil
		},
	}
}

func newHistoryCmd(s *session) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show every booking, cancelled ones included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if raw {
				history, ok, err := s.store.ReadHistory()
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "No booking history found.")
					return nil
				}
				fmt.Fprint(out, history)
				return nil
			}
			ledger := s.svc.Ledger()
			if ledger.Len() == 0 {
				fmt.Fprintln(out, "No booking history found.")
				return nil
			}
			renderHistory(out, ledger)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the booking history file as saved")
	return cmd
}

func renderMovies(out io.Writer, catalog *model.Catalog) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"#", "Movie", "Price", "Available", "Total"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 30},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	for i, movie := range catalog.List() {
		t.AppendRow(table.Row{
			i + 1,
			movie.Title,
			store.FormatPrice(movie.Price),
			movie.Seats.AvailableCount(),
			movie.Seats.Rows() * movie.Seats.Cols(),
		})
	}
	t.Render()
}

// renderSeats prints the grid with 1-based row and column labels, O for
// available and X for booked.
func renderSeats(out io.Writer, grid *model.SeatGrid) {
	width := len(strconv.Itoa(max(grid.Rows(), grid.Cols())))

	header := []string{strings.Repeat(" ", width)}
	for c := 1; c <= grid.Cols(); c++ {
		header = append(header, fmt.Sprintf("%*d", width, c))
	}
	fmt.Fprintln(out, strings.Join(header, " "))

	r := 0
	for row := range grid.Render() {
		r++
		cells := []string{fmt.Sprintf("%*d", width, r)}
		for _, state := range row {
			cells = append(cells, fmt.Sprintf("%*s", width, state.Symbol()))
		}
		fmt.Fprintln(out, strings.Join(cells, " "))
	}
}

func renderHistory(out io.Writer, ledger *model.Ledger) {
	rowConfigAutoMerge := table.RowConfig{AutoMerge: true}
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Customer", "Movie", "Seats", "Total Price", "Date & Time", "Status"}, rowConfigAutoMerge)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
		{Number: 2, WidthMax: 24},
		{Number: 4, Align: text.AlignRight},
	})
	t.Style().Options.SeparateRows = true

	for _, booking := range ledger.All() {
		t.AppendRow(table.Row{
			booking.CustomerName,
			booking.MovieTitle,
			booking.SeatLabels(),
			store.FormatPrice(booking.TotalPrice),
			booking.CreatedAt.Local().Format(model.DateTimeLayout),
			booking.Status(),
		}, rowConfigAutoMerge)
	}
	t.Render()
}
