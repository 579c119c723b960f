package model

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidSelection = errors.New("invalid selection")
	ErrMovieNotFound    = errors.New("movie not found")
)

type Movie struct {
	ID    string          `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price_per_ticket"`
	Seats *SeatGrid       `json:"seats"`
}

func NewMovie(title string, price decimal.Decimal, rows, cols int) *Movie {
	return &Movie{
		ID:    uuid.NewString(),
		Title: title,
		Price: price,
		Seats: NewSeatGrid(rows, cols),
	}
}

func (m *Movie) Clone() *Movie {
	clone := *m
	if m.Seats != nil {
		clone.Seats = m.Seats.Clone()
	}
	return &clone
}

// Catalog is the fixed, ordered set of bookable movies.
type Catalog struct {
	movies []*Movie
}

func NewCatalog(movies ...*Movie) *Catalog {
	return &Catalog{movies: movies}
}

// DefaultCatalog is seeded when nothing has been persisted yet.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		NewMovie("Avengers: Endgame", decimal.NewFromInt(250), 5, 5),
		NewMovie("Inception", decimal.NewFromInt(200), 5, 5),
		NewMovie("Interstellar", decimal.NewFromInt(220), 5, 5),
	)
}

func (c *Catalog) List() []*Movie {
	return c.movies
}

func (c *Catalog) Len() int {
	return len(c.movies)
}

func (c *Catalog) At(index int) (*Movie, error) {
	if index < 0 || index >= len(c.movies) {
		return nil, errors.Wrapf(ErrInvalidSelection, "movie %d", index+1)
	}
	return c.movies[index], nil
}

// FindByTitle matches titles case-insensitively and returns the first hit.
func (c *Catalog) FindByTitle(title string) (*Movie, error) {
	for _, movie := range c.movies {
		if strings.EqualFold(movie.Title, title) {
			return movie, nil
		}
	}
	return nil, errors.Wrapf(ErrMovieNotFound, "title %q", title)
}

func (c *Catalog) FindByID(id string) (*Movie, error) {
	if id != "" {
		for _, movie := range c.movies {
			if movie.ID == id {
				return movie, nil
			}
		}
	}
	return nil, errors.Wrapf(ErrMovieNotFound, "id %q", id)
}

func (c *Catalog) Clone() *Catalog {
	movies := make([]*Movie, len(c.movies))
	for i, movie := range c.movies {
		movies[i] = movie.Clone()
	}
	return &Catalog{movies: movies}
}

func (c *Catalog) MarshalJSON() ([]byte, error) {
	movies := c.movies
	if movies == nil {
		movies = []*Movie{}
	}
	return json.Marshal(movies)
}

func (c *Catalog) UnmarshalJSON(data []byte) error {
	var movies []*Movie
	if err := json.Unmarshal(data, &movies); err != nil {
		return err
	}
	for i, movie := range movies {
		if movie == nil || movie.Seats == nil {
			return errors.Newf("movie %d has no seat grid", i+1)
		}
		if movie.ID == "" {
			movie.ID = uuid.NewString()
		}
	}
	c.movies = movies
	return nil
}
