package store

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"movie-ticket-cli/model"
)

const historySeparator = "---------------------------"

// RenderHistory formats every booking in ledger order, cancelled ones
// included.
func RenderHistory(ledger *model.Ledger) string {
	var b strings.Builder
	for _, booking := range ledger.All() {
		writeBooking(&b, booking)
	}
	return b.String()
}

func writeBooking(b *strings.Builder, booking *model.Booking) {
	fmt.Fprintf(b, "Customer: %s\n", booking.CustomerName)
	fmt.Fprintf(b, "Movie: %s\n", booking.MovieTitle)
	fmt.Fprintf(b, "Seats: %s\n", booking.SeatLabels())
	fmt.Fprintf(b, "Total Price: %s\n", FormatPrice(booking.TotalPrice))
	fmt.Fprintf(b, "Date & Time: %s\n", booking.CreatedAt.Local().Format(model.DateTimeLayout))
	fmt.Fprintf(b, "Status: %s\n", booking.Status())
	b.WriteString(historySeparator + "\n")
}

// FormatPrice prefixes an amount with the rupee sign.
func FormatPrice(amount decimal.Decimal) string {
	return "₹" + amount.StringFixed(2)
}
