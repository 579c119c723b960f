package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"movie-ticket-cli/model"
	"movie-ticket-cli/store"
)

type menuAction int

const (
	actionBook menuAction = iota
	actionCancel
	actionHistory
	actionQuit
)

type menuItem struct {
	title       string
	description string
	action      menuAction
}

func (m menuItem) Title() string       { return m.title }
func (m menuItem) Description() string { return m.description }
func (m menuItem) FilterValue() string { return strings.ToLower(m.title) }

func buildMenuItems() []list.Item {
	return []list.Item{
		menuItem{title: "Book Tickets", description: "Pick a movie and choose your seats", action: actionBook},
		menuItem{title: "Cancel Booking", description: "Cancel an active booking for an 85% refund", action: actionCancel},
		menuItem{title: "View Booking History", description: "Every booking made, cancelled ones included", action: actionHistory},
		menuItem{title: "Exit", description: "Save and quit", action: actionQuit},
	}
}

type movieItem struct {
	index int
	movie *model.Movie
}

func (m movieItem) Title() string {
	return m.movie.Title
}

func (m movieItem) Description() string {
	seats := m.movie.Seats
	parts := []string{store.FormatPrice(m.movie.Price) + " per ticket"}
	total := seats.Rows() * seats.Cols()
	parts = append(parts, fmt.Sprintf("%d/%d seats available", seats.AvailableCount(), total))
	if seats.AvailableCount() == 0 {
		parts = append(parts, "Sold out")
	}
	return strings.Join(parts, " • ")
}

func (m movieItem) FilterValue() string {
	return strings.ToLower(m.movie.Title)
}

func buildMovieItems(catalog *model.Catalog) []list.Item {
	movies := catalog.List()
	items := make([]list.Item, 0, len(movies))
	for i, movie := range movies {
		items = append(items, movieItem{index: i, movie: movie})
	}
	return items
}

type bookingItem struct {
	index   int
	booking model.Booking
}

func (b bookingItem) Title() string {
	return b.booking.MovieTitle
}

func (b bookingItem) Description() string {
	parts := []string{
		"Seats: " + b.booking.SeatLabels(),
		store.FormatPrice(b.booking.TotalPrice),
		b.booking.CreatedAt.Format(model.DateTimeLayout),
	}
	return strings.Join(parts, " • ")
}

func (b bookingItem) FilterValue() string {
	return strings.ToLower(b.booking.MovieTitle)
}

func buildBookingItems(bookings []model.Booking) []list.Item {
	items := make([]list.Item, 0, len(bookings))
	for i, booking := range bookings {
		items = append(items, bookingItem{index: i, booking: booking})
	}
	return items
}
