package alert

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	bmerrors "github.com/botifyai2-sketch/buildmon/internal/errors"
	"github.com/botifyai2-sketch/buildmon/internal/log"
	"github.com/botifyai2-sketch/buildmon/internal/store"
)

// FileName is the alert document inside the monitoring directory
const FileName = "alerts.json"

// DefaultExpiry is how long an alert stays active
const DefaultExpiry = 7 * 24 * time.Hour

// Store loads and saves the alert document
type Store struct {
	backend store.Store[State]
	logger  *log.Logger
}

// NewStore wraps backend
func NewStore(backend store.Store[State], logger *log.Logger) *Store {
	return &Store{backend: backend, logger: log.OrDefault(logger).WithComponent("alerts")}
}

// NewFileStore keeps alerts in alerts.json under dir
func NewFileStore(dir string, logger *log.Logger) *Store {
	return NewStore(store.NewJSONFile[State](filepath.Join(dir, FileName)), logger)
}

// Load returns the alert document; missing or unreadable files yield an
// empty one. Alerts that cannot be decoded are dropped with a warning.
func (s *Store) Load(ctx context.Context) *State {
	st, err := s.backend.Load(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Debug("no alerts yet, starting fresh")
		} else {
			s.logger.WithError(err).Warn("could not load alerts, starting fresh")
		}
		return NewState()
	}
	for _, skipErr := range st.Skipped() {
		s.logger.WithError(skipErr).Warn("dropped unreadable alert")
	}
	st.skipped = nil
	if st.Active == nil {
		st.Active = []Alert{}
	}
	if st.Resolved == nil {
		st.Resolved = []Alert{}
	}
	return &st
}

// Save writes the alert document
func (s *Store) Save(ctx context.Context, st *State) error {
	if err := s.backend.Save(ctx, *st); err != nil {
		return bmerrors.Wrap(bmerrors.ErrCodeAlertsSave, "failed to save alerts", err)
	}
	return nil
}

// Resolve moves the active alert with id to the resolved list
func (s *Store) Resolve(ctx context.Context, id string, now time.Time) (Alert, error) {
	st := s.Load(ctx)
	for i, a := range st.Active {
		if a.ID != id {
			continue
		}
		resolvedAt := now.UTC()
		a.ResolvedAt = &resolvedAt
		st.Active = append(st.Active[:i], st.Active[i+1:]...)
		st.Resolved = append(st.Resolved, a)
		if err := s.Save(ctx, st); err != nil {
			return Alert{}, err
		}
		return a, nil
	}
	return Alert{}, bmerrors.NewAlertNotFoundError(id)
}

// Clear drops every active alert and returns how many were dropped
func (s *Store) Clear(ctx context.Context) (int, error) {
	st := s.Load(ctx)
	n := len(st.Active)
	if n == 0 {
		return 0, nil
	}
	st.Active = []Alert{}
	if err := s.Save(ctx, st); err != nil {
		return 0, err
	}
	return n, nil
}

// Expire drops active alerts whose timestamp is older than expiry
func Expire(active []Alert, now time.Time, expiry time.Duration) []Alert {
	cutoff := now.Add(-expiry)
	kept := make([]Alert, 0, len(active))
	for _, a := range active {
		if a.Timestamp.Before(cutoff) {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}
