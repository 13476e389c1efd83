package watchlist

import (
	"errors"
	"regexp"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrInvalidSymbol is returned when a code is not exactly six ASCII digits.
var ErrInvalidSymbol = errors.New("symbol must be 6 digits")

var symbolPattern = regexp.MustCompile(`^[0-9]{6}$`)

// ValidSymbol reports whether s is a 6-digit exchange code.
func ValidSymbol(s string) bool {
	return symbolPattern.MatchString(s)
}

// Store is the ordered, de-duplicated watch-list backed by a JSON file.
// Every mutation is written through to disk immediately.
type Store struct {
	mu       sync.Mutex
	symbols  []string
	filePath string
	log      logrus.FieldLogger
}

// NewStore creates a Store, loading the current list from filePath. An
// unreadable or corrupt file starts the store empty.
func NewStore(filePath string, log logrus.FieldLogger) *Store {
	s := &Store{filePath: filePath, log: log.WithField("file", filePath)}
	symbols, err := s.Load()
	if err != nil {
		s.log.WithError(err).Warn("load watchlist failed, starting empty")
		symbols = []string{}
	}
	s.symbols = symbols
	s.log.WithField("count", len(symbols)).Info("watchlist loaded")
	return s
}

// Load reads the list from disk without touching the in-memory copy.
func (s *Store) Load() ([]string, error) {
	return LoadFile(s.filePath)
}

// Save replaces the list and persists it.
func (s *Store) Save(symbols []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.symbols = slices.Clone(symbols)
	return SaveFile(s.filePath, s.symbols)
}

// Add appends symbol. It reports false, without writing, when the symbol is
// already present.
func (s *Store) Add(symbol string) (bool, error) {
	if !ValidSymbol(symbol) {
		return false, ErrInvalidSymbol
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.symbols, symbol) {
		return false, nil
	}
	s.symbols = append(s.symbols, symbol)
	s.persist()
	return true, nil
}

// Remove deletes symbol. It reports false, without writing, when the symbol
// is not present.
func (s *Store) Remove(symbol string) (bool, error) {
	if !ValidSymbol(symbol) {
		return false, ErrInvalidSymbol
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.Index(s.symbols, symbol)
	if i < 0 {
		return false, nil
	}
	s.symbols = slices.Delete(s.symbols, i, i+1)
	s.persist()
	return true, nil
}

// List returns a copy of the current list in insertion order.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.symbols)
}

// Reload replaces the in-memory list with the file contents. If the file
// cannot be read the previous list is kept.
func (s *Store) Reload() []string {
	symbols, err := s.Load()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.WithError(err).Warn("reload watchlist failed, keeping previous list")
		return slices.Clone(s.symbols)
	}
	s.symbols = symbols
	s.log.WithField("count", len(symbols)).Debug("watchlist reloaded")
	return slices.Clone(s.symbols)
}

// persist must be called with mu held. Failures are logged; the in-memory
// list stays authoritative.
func (s *Store) persist() {
	if err := SaveFile(s.filePath, s.symbols); err != nil {
		s.log.WithError(err).Error("save watchlist failed")
		return
	}
	s.log.WithField("count", len(s.symbols)).Info("watchlist saved")
}
