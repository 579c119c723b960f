package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"movie-ticket-cli/model"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "data"))
}

func TestLoadCatalog_Absent(t *testing.T) {
	s := newTestStore(t)

	catalog, found, err := s.LoadCatalog()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if found || catalog != nil {
		t.Fatalf("expected no catalog, got %+v", catalog)
	}
}

func TestLoadLedger_Absent(t *testing.T) {
	s := newTestStore(t)

	ledger, err := s.LoadLedger()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if ledger == nil || ledger.Len() != 0 {
		t.Fatalf("expected empty ledger, got %+v", ledger)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	catalog := model.NewCatalog(
		model.NewMovie("Test", decimal.NewFromInt(100), 2, 2),
		model.NewMovie("Other", decimal.RequireFromString("120.5"), 3, 1),
	)
	movie := catalog.List()[0]
	movie.Seats.Book(0, 0)
	movie.Seats.Book(0, 1)

	created := time.Date(2024, 1, 7, 19, 0, 0, 0, time.UTC)
	first := model.NewBooking("Alice", movie, []model.Seat{{Row: 0, Col: 0}, {Row: 0, Col: 1}}, created)
	second := model.NewBooking("Bob", catalog.List()[1], []model.Seat{{Row: 2, Col: 0}}, created)
	if err := second.Cancel(created.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	ledger := model.NewLedger(first, second)

	if err := s.SaveCatalog(catalog); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := s.SaveLedger(ledger); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	loadedCatalog, found, err := s.LoadCatalog()
	if err != nil || !found {
		t.Fatalf("expected catalog, got found=%v err=%v", found, err)
	}
	if loadedCatalog.Len() != 2 {
		t.Fatalf("expected 2 movies, got %d", loadedCatalog.Len())
	}
	for i, want := range catalog.List() {
		got := loadedCatalog.List()[i]
		if got.ID != want.ID || got.Title != want.Title || !got.Price.Equal(want.Price) {
			t.Fatalf("movie %d mismatch: got %+v want %+v", i, got, want)
		}
		if !got.Seats.Equal(want.Seats) {
			t.Fatalf("movie %d seat grid mismatch", i)
		}
	}

	loadedLedger, err := s.LoadLedger()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if loadedLedger.Len() != 2 {
		t.Fatalf("expected 2 bookings, got %d", loadedLedger.Len())
	}
	for i, want := range ledger.All() {
		got := loadedLedger.All()[i]
		if got.ID != want.ID || got.CustomerName != want.CustomerName || got.MovieID != want.MovieID || got.MovieTitle != want.MovieTitle {
			t.Fatalf("booking %d mismatch: got %+v want %+v", i, got, want)
		}
		if !got.TotalPrice.Equal(want.TotalPrice) || got.Cancelled != want.Cancelled || !got.CreatedAt.Equal(want.CreatedAt) {
			t.Fatalf("booking %d mismatch: got %+v want %+v", i, got, want)
		}
		if len(got.Seats) != len(want.Seats) {
			t.Fatalf("booking %d seats mismatch: got %v want %v", i, got.Seats, want.Seats)
		}
		for j := range want.Seats {
			if got.Seats[j] != want.Seats[j] {
				t.Fatalf("booking %d seat %d mismatch: got %v want %v", i, j, got.Seats[j], want.Seats[j])
			}
		}
	}
	if loadedLedger.All()[1].CancelledAt == nil {
		t.Fatal("expected cancellation time to survive")
	}
}

func TestLoadLedger_CorruptReturnsEmpty(t *testing.T) {
	s := newTestStore(t)
	if err := os.MkdirAll(s.Dir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir(), ledgerFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	ledger, err := s.LoadLedger()
	if err == nil {
		t.Fatal("expected decode error")
	}
	if ledger == nil || ledger.Len() != 0 {
		t.Fatalf("expected empty ledger, got %+v", ledger)
	}
}

func TestLoadCatalog_CorruptIsAbsent(t *testing.T) {
	s := newTestStore(t)
	if err := os.MkdirAll(s.Dir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir(), catalogFile), []byte(`{"data":[{"title":"x"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	catalog, found, err := s.LoadCatalog()
	if err == nil {
		t.Fatal("expected decode error")
	}
	if found || catalog != nil {
		t.Fatalf("expected no catalog, got %+v", catalog)
	}
}

func TestSaveLedger_RegeneratesHistory(t *testing.T) {
	s := newTestStore(t)

	if _, ok, err := s.ReadHistory(); err != nil || ok {
		t.Fatalf("expected no history yet, got ok=%v err=%v", ok, err)
	}

	movie := model.NewMovie("Test", decimal.NewFromInt(100), 2, 2)
	booking := model.NewBooking("Alice", movie, []model.Seat{{Row: 0, Col: 0}, {Row: 0, Col: 1}}, time.Now())
	ledger := model.NewLedger(booking)
	if err := s.SaveLedger(ledger); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	history, ok, err := s.ReadHistory()
	if err != nil || !ok {
		t.Fatalf("expected history, got ok=%v err=%v", ok, err)
	}
	for _, want := range []string{"Customer: Alice", "Movie: Test", "Seats: [1,1] [1,2]", "Total Price: ₹200.00", "Status: Confirmed"} {
		if !strings.Contains(history, want) {
			t.Fatalf("expected history to contain %q, got:\n%s", want, history)
		}
	}

	if err := booking.Cancel(time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveLedger(ledger); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	history, _, _ = s.ReadHistory()
	if strings.Contains(history, "Status: Confirmed") || !strings.Contains(history, "Status: Cancelled") {
		t.Fatalf("expected history to be rewritten, got:\n%s", history)
	}
	if strings.Count(history, historySeparator) != 1 {
		t.Fatalf("expected one entry, got:\n%s", history)
	}
}

func TestRenderHistory_Empty(t *testing.T) {
	if got := RenderHistory(model.NewLedger()); got != "" {
		t.Fatalf("expected empty history, got %q", got)
	}
}
