package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"movie-ticket-cli/model"
)

const (
	tokenAvailable = "[]"
	tokenBooked    = "XX"
	tokenPicked    = "**"
)

func (m appModel) renderSeatPicker() string {
	grid := m.movie.Seats
	if grid.Rows() == 0 || grid.Cols() == 0 {
		return "No seats in this auditorium."
	}

	picked := make(map[model.Seat]bool, len(m.picked))
	for _, seat := range m.picked {
		picked[seat] = true
	}

	rowWidth := len(fmt.Sprintf("%d", grid.Rows()))
	cellWidth := max(2, len(fmt.Sprintf("%d", grid.Cols())))

	seatStyleAvailable := lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	seatStyleBooked := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	seatStylePicked := lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", rowWidth+1))
	for c := 0; c < grid.Cols(); c++ {
		b.WriteString(hint(padCell(fmt.Sprintf("%d", c+1), cellWidth)))
		if c < grid.Cols()-1 {
			b.WriteString(" ")
		}
	}
	b.WriteString("\n")

	r := 0
	for row := range grid.Render() {
		label := fmt.Sprintf("%d", r+1)
		b.WriteString(fmt.Sprintf("%*s ", rowWidth, label))
		for c, state := range row {
			seat := model.Seat{Row: r, Col: c}
			token := tokenAvailable
			style := seatStyleAvailable
			switch {
			case picked[seat]:
				token, style = tokenPicked, seatStylePicked
			case state == model.SeatBooked:
				token, style = tokenBooked, seatStyleBooked
			}
			if seat == m.cursor {
				style = style.Reverse(true)
			}
			b.WriteString(style.Render(padCell(token, cellWidth)))
			if c < len(row)-1 {
				b.WriteString(" ")
			}
		}
		b.WriteString(fmt.Sprintf(" %*s\n", rowWidth, label))
		r++
	}

	gridWidth := grid.Cols()*(cellWidth+1) - 1
	screenStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("214"))
	screenBorderStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Background(lipgloss.Color("236"))

	screenBar := screenBarBlock(gridWidth, "SCREEN")

	b.WriteString("\n")
	b.WriteString(strings.Repeat(" ", rowWidth+1))
	b.WriteString(screenBorderStyle.Render(screenBar.top))
	b.WriteString("\n")
	b.WriteString(strings.Repeat(" ", rowWidth+1))
	b.WriteString(screenStyle.Render(screenBar.mid))
	b.WriteString("\n")
	b.WriteString(strings.Repeat(" ", rowWidth+1))
	b.WriteString(screenBorderStyle.Render(screenBar.bot))
	b.WriteString("\n\n")

	legend := "Legend: [] available • XX booked • ** your pick"
	counts := fmt.Sprintf("Cursor: %s • Available: %d • Booked: %d • Picked: %d/%d",
		m.cursor, grid.AvailableCount(), grid.BookedCount(), len(m.picked), m.ticketCount)
	out := b.String() + hint(legend) + "\n" + hint(counts)
	if m.seatNotice != "" {
		out += "\n\n" + m.seatNotice
	}
	return out
}

// firstAvailableSeat scans row-major; it falls back to the origin on a full
// grid.
func firstAvailableSeat(grid *model.SeatGrid) model.Seat {
	for r := 0; r < grid.Rows(); r++ {
		for c := 0; c < grid.Cols(); c++ {
			if grid.IsAvailable(r, c) {
				return model.Seat{Row: r, Col: c}
			}
		}
	}
	return model.Seat{}
}

func padCell(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if text == "" {
		return strings.Repeat(" ", width)
	}
	if len(text) >= width {
		return text[:width]
	}
	padding := width - len(text)
	left := padding / 2
	right := padding - left
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", right)
}

type screenBlock struct {
	top string
	mid string
	bot string
}

func screenBarBlock(width int, label string) screenBlock {
	if width < len(label)+4 {
		width = len(label) + 4
	}
	if width < 10 {
		width = 10
	}

	border := "╭" + strings.Repeat("─", width-2) + "╮"
	bottom := "╰" + strings.Repeat("─", width-2) + "╯"

	labelText := " " + label + " "
	padding := width - len(labelText) - 2
	left := padding / 2
	right := padding - left
	mid := "│" + strings.Repeat(" ", left) + labelText + strings.Repeat(" ", right) + "│"
	return screenBlock{top: border, mid: mid, bot: bottom}
}
