package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"movie-ticket-cli/model"
)

const (
	catalogFile = "movies.json"
	ledgerFile  = "bookings.json"
	historyFile = "booking_history.txt"
)

type envelope[T any] struct {
	UpdatedAt time.Time `json:"updated_at"`
	Data      T         `json:"data"`
}

// FileStore persists the catalog and ledger as JSON files in one directory
// and keeps a plain-text booking history next to them.
type FileStore struct {
	dir string
	now func() time.Time
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, now: time.Now}
}

func (s *FileStore) Dir() string {
	return s.dir
}

// LoadCatalog returns found=false when no catalog, or an empty one, has been
// saved.
func (s *FileStore) LoadCatalog() (*model.Catalog, bool, error) {
	var catalog model.Catalog
	found, err := loadFile(s.path(catalogFile), &catalog)
	if err != nil || !found || catalog.Len() == 0 {
		return nil, false, err
	}
	return &catalog, true, nil
}

func (s *FileStore) SaveCatalog(catalog *model.Catalog) error {
	return saveFile(s.path(catalogFile), catalog, s.now())
}

// LoadLedger returns an empty ledger when none exists. A file that cannot be
// decoded yields an empty ledger together with the decode error.
func (s *FileStore) LoadLedger() (*model.Ledger, error) {
	var ledger model.Ledger
	found, err := loadFile(s.path(ledgerFile), &ledger)
	if err != nil {
		return model.NewLedger(), err
	}
	if !found {
		return model.NewLedger(), nil
	}
	return &ledger, nil
}

// SaveLedger writes the ledger and regenerates the history file.
func (s *FileStore) SaveLedger(ledger *model.Ledger) error {
	if err := saveFile(s.path(ledgerFile), ledger, s.now()); err != nil {
		return err
	}
	if err := writeAtomic(s.path(historyFile), []byte(RenderHistory(ledger))); err != nil {
		return errors.Wrap(err, "write booking history")
	}
	return nil
}

// ReadHistory returns the history text; ok is false when there is none.
func (s *FileStore) ReadHistory() (string, bool, error) {
	data, err := os.ReadFile(s.path(historyFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, errors.Wrap(err, "read booking history")
	}
	if len(data) == 0 {
		return "", false, nil
	}
	return string(data), true, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

func loadFile[T any](path string, out *T) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "read %s", filepath.Base(path))
	}
	cache := envelope[*T]{Data: out}
	if err := json.Unmarshal(data, &cache); err != nil {
		return false, errors.Wrapf(err, "decode %s", filepath.Base(path))
	}
	return true, nil
}

func saveFile[T any](path string, data T, now time.Time) error {
	payload, err := json.MarshalIndent(envelope[T]{UpdatedAt: now, Data: data}, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode %s", filepath.Base(path))
	}
	return writeAtomic(path, payload)
}

func writeAtomic(path string, payload []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create data directory")
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write %s", filepath.Base(path))
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", filepath.Base(path))
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Wrapf(err, "chmod %s", filepath.Base(path))
	}
	return errors.Wrapf(os.Rename(tmp.Name(), path), "replace %s", filepath.Base(path))
}
