package patterns

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/botifyai2-sketch/buildmon/internal/log"
	"github.com/botifyai2-sketch/buildmon/internal/store"
)

// LedgerFileName is the ledger document inside the monitoring directory
const LedgerFileName = "patterns.json"

// Ledger remembers when each pattern was first observed
type Ledger struct {
	Patterns map[string]LedgerEntry `json:"patterns"`
}

// LedgerEntry is the persisted state of one pattern
type LedgerEntry struct {
	Pattern   string    `json:"pattern"`
	FirstSeen time.Time `json:"firstSeen"`
	LastSeen  time.Time `json:"lastSeen"`
}

// NewLedger returns an empty ledger
func NewLedger() *Ledger {
	return &Ledger{Patterns: map[string]LedgerEntry{}}
}

// Observe records a sighting of pattern at now and returns when it was
// first seen
func (l *Ledger) Observe(id, pattern string, now time.Time) time.Time {
	if l.Patterns == nil {
		l.Patterns = map[string]LedgerEntry{}
	}
	entry, ok := l.Patterns[id]
	if !ok || now.Before(entry.FirstSeen) {
		entry.FirstSeen = now
	}
	entry.Pattern = pattern
	entry.LastSeen = now
	l.Patterns[id] = entry
	return entry.FirstSeen
}

// LedgerStore persists the ledger
type LedgerStore struct {
	backend store.Store[Ledger]
	logger  *log.Logger
}

// NewLedgerStore wraps backend
func NewLedgerStore(backend store.Store[Ledger], logger *log.Logger) *LedgerStore {
	return &LedgerStore{backend: backend, logger: log.OrDefault(logger).WithComponent("patterns")}
}

// NewLedgerFileStore keeps the ledger in patterns.json under dir
func NewLedgerFileStore(dir string, logger *log.Logger) *LedgerStore {
	return NewLedgerStore(store.NewJSONFile[Ledger](filepath.Join(dir, LedgerFileName)), logger)
}

// Load returns the stored ledger, or an empty one when it is missing or
// unreadable
func (s *LedgerStore) Load(ctx context.Context) *Ledger {
	l, err := s.backend.Load(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.WithError(err).Warn("could not load pattern ledger, starting fresh")
		}
		return NewLedger()
	}
	if l.Patterns == nil {
		l.Patterns = map[string]LedgerEntry{}
	}
	return &l
}

// Save writes the ledger
func (s *LedgerStore) Save(ctx context.Context, l *Ledger) error {
	return s.backend.Save(ctx, *l)
}
