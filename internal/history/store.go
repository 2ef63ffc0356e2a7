package history

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/botifyai2-sketch/buildmon/internal/domain"
	bmerrors "github.com/botifyai2-sketch/buildmon/internal/errors"
	"github.com/botifyai2-sketch/buildmon/internal/log"
	"github.com/botifyai2-sketch/buildmon/internal/store"
)

// FileName is the history document inside the monitoring directory
const FileName = "build-history.json"

// Store loads, appends to and saves the build history
type Store struct {
	backend   store.Store[History]
	logger    *log.Logger
	maxBuilds int
}

// NewStore wraps backend. A nil logger uses the process default.
func NewStore(backend store.Store[History], logger *log.Logger) *Store {
	return &Store{
		backend:   backend,
		logger:    log.OrDefault(logger).WithComponent("history"),
		maxBuilds: MaxBuilds,
	}
}

// NewFileStore keeps the history in build-history.json under dir
func NewFileStore(dir string, logger *log.Logger) *Store {
	return NewStore(store.NewJSONFile[History](filepath.Join(dir, FileName)), logger)
}

// WithMaxBuilds overrides the retention cap; values <= 0 are ignored
func (s *Store) WithMaxBuilds(n int) *Store {
	if n > 0 {
		s.maxBuilds = n
	}
	return s
}

// Load returns the persisted history. A missing or unreadable document
// yields a fresh empty history. Individual builds that cannot be decoded
// are dropped with a warning and the rest are kept.
func (s *Store) Load(ctx context.Context) *History {
	h, err := s.backend.Load(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Debug("no build history yet, starting fresh")
		} else {
			s.logger.WithError(err).Warn("could not load build history, starting fresh")
		}
		return New()
	}
	for _, skipErr := range h.Skipped() {
		s.logger.WithError(skipErr).Warn("dropped unreadable build history entry")
	}
	h.skipped = nil
	if h.Builds == nil {
		h.Builds = []domain.BuildRecord{}
	}
	if h.Statistics.Phases == nil {
		h.Statistics.Phases = map[domain.Phase]int{}
	}
	return &h
}

// Save persists h as-is; LastUpdated is not touched
func (s *Store) Save(ctx context.Context, h *History) error {
	if h == nil {
		h = New()
	}
	if err := s.backend.Save(ctx, *h); err != nil {
		return bmerrors.Wrap(bmerrors.ErrCodeHistorySave, "failed to save build history", err)
	}
	return nil
}

// Append adds record, evicts the oldest records beyond the cap and
// refreshes the statistics and LastUpdated
func (s *Store) Append(h *History, record domain.BuildRecord, now time.Time) {
	h.Builds = append(h.Builds, record)
	if excess := len(h.Builds) - s.maxBuilds; excess > 0 {
		kept := make([]domain.BuildRecord, s.maxBuilds)
		copy(kept, h.Builds[excess:])
		h.Builds = kept
	}
	h.Statistics = ComputeStatistics(h.Builds)
	h.LastUpdated = now.UTC()
}

// Record loads the history, appends record and saves it back
func (s *Store) Record(ctx context.Context, record domain.BuildRecord, now time.Time) (*History, error) {
	h := s.Load(ctx)
	s.Append(h, record, now)
	if err := s.Save(ctx, h); err != nil {
		return h, err
	}
	s.logger.Debug("recorded build", "success", record.Success, "builds", len(h.Builds))
	return h, nil
}
