package model

import (
	"encoding/json"
	"fmt"
	"iter"

	"github.com/cockroachdb/errors"
)

// Seat is a 0-indexed coordinate inside a SeatGrid.
type Seat struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// String renders the seat 1-indexed, the way it is shown to customers.
func (s Seat) String() string {
	return fmt.Sprintf("[%d,%d]", s.Row+1, s.Col+1)
}

type SeatState int

const (
	SeatAvailable SeatState = iota
	SeatBooked
)

func (s SeatState) Symbol() string {
	if s == SeatBooked {
		return "X"
	}
	return "O"
}

// SeatGrid tracks occupancy for one movie. Dimensions are fixed at
// construction.
type SeatGrid struct {
	rows   int
	cols   int
	booked [][]bool
}

func NewSeatGrid(rows, cols int) *SeatGrid {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	booked := make([][]bool, rows)
	for i := range booked {
		booked[i] = make([]bool, cols)
	}
	return &SeatGrid{rows: rows, cols: cols, booked: booked}
}

func (g *SeatGrid) Rows() int { return g.rows }
func (g *SeatGrid) Cols() int { return g.cols }

func (g *SeatGrid) inRange(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// IsAvailable reports whether the seat exists and is free. Out-of-range
// coordinates are never available.
func (g *SeatGrid) IsAvailable(row, col int) bool {
	return g.inRange(row, col) && !g.booked[row][col]
}

func (g *SeatGrid) IsBooked(row, col int) bool {
	return g.inRange(row, col) && g.booked[row][col]
}

// Book marks the seat as taken. Callers check IsAvailable first.
func (g *SeatGrid) Book(row, col int) {
	if !g.inRange(row, col) {
		return
	}
	g.booked[row][col] = true
}

// Release frees the seat. Releasing a free seat is a no-op.
func (g *SeatGrid) Release(row, col int) {
	if !g.inRange(row, col) {
		return
	}
	g.booked[row][col] = false
}

func (g *SeatGrid) BookedCount() int {
	count := 0
	for _, row := range g.booked {
		for _, taken := range row {
			if taken {
				count++
			}
		}
	}
	return count
}

func (g *SeatGrid) AvailableCount() int {
	return g.rows*g.cols - g.BookedCount()
}

// Render yields one slice of seat states per row, front row first.
func (g *SeatGrid) Render() iter.Seq[[]SeatState] {
	return func(yield func([]SeatState) bool) {
		for _, row := range g.booked {
			states := make([]SeatState, len(row))
			for c, taken := range row {
				if taken {
					states[c] = SeatBooked
				}
			}
			if !yield(states) {
				return
			}
		}
	}
}

func (g *SeatGrid) Clone() *SeatGrid {
	clone := NewSeatGrid(g.rows, g.cols)
	for r, row := range g.booked {
		copy(clone.booked[r], row)
	}
	return clone
}

func (g *SeatGrid) Equal(other *SeatGrid) bool {
	if g == nil || other == nil {
		return g == other
	}
	if g.rows != other.rows || g.cols != other.cols {
		return false
	}
	for r := range g.booked {
		for c := range g.booked[r] {
			if g.booked[r][c] != other.booked[r][c] {
				return false
			}
		}
	}
	return true
}

type seatGridJSON struct {
	Rows   int      `json:"rows"`
	Cols   int      `json:"cols"`
	Booked [][]bool `json:"booked"`
}

func (g *SeatGrid) MarshalJSON() ([]byte, error) {
	return json.Marshal(seatGridJSON{Rows: g.rows, Cols: g.cols, Booked: g.booked})
}

func (g *SeatGrid) UnmarshalJSON(data []byte) error {
	var raw seatGridJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Rows < 0 || raw.Cols < 0 {
		return errors.Newf("invalid seat grid size %dx%d", raw.Rows, raw.Cols)
	}
	if len(raw.Booked) != raw.Rows {
		return errors.Newf("seat grid has %d rows, expected %d", len(raw.Booked), raw.Rows)
	}
	for i, row := range raw.Booked {
		if len(row) != raw.Cols {
			return errors.Newf("seat grid row %d has %d seats, expected %d", i+1, len(row), raw.Cols)
		}
	}
	g.rows = raw.Rows
	g.cols = raw.Cols
	g.booked = raw.Booked
	return nil
}
