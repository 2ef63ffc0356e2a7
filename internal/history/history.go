// Package history keeps the rolling log of build attempts.
package history

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/botifyai2-sketch/buildmon/internal/domain"
)

// MaxBuilds is the number of records kept; older records are evicted first
const MaxBuilds = 100

// History is the persisted build log
type History struct {
	Builds      []domain.BuildRecord `json:"builds"`
	Statistics  Statistics           `json:"statistics"`
	LastUpdated time.Time            `json:"lastUpdated"`

	skipped []error
}

// UnmarshalJSON decodes the document one build at a time. Builds that
// fail to decode are dropped and reported by Skipped; a malformed
// statistics block is recomputed from the surviving builds.
func (h *History) UnmarshalJSON(data []byte) error {
	var raw struct {
		Builds      []json.RawMessage `json:"builds"`
		Statistics  json.RawMessage   `json:"statistics"`
		LastUpdated json.RawMessage   `json:"lastUpdated"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*h = History{Builds: make([]domain.BuildRecord, 0, len(raw.Builds))}
	for i, item := range raw.Builds {
		var rec domain.BuildRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			h.skipped = append(h.skipped, fmt.Errorf("build %d: %w", i, err))
			continue
		}
		h.Builds = append(h.Builds, rec)
	}

	statsOK := len(raw.Statistics) == 0 || json.Unmarshal(raw.Statistics, &h.Statistics) == nil
	if !statsOK || len(h.skipped) > 0 {
		h.Statistics = ComputeStatistics(h.Builds)
	}
	if len(raw.LastUpdated) > 0 {
		if err := json.Unmarshal(raw.LastUpdated, &h.LastUpdated); err != nil {
			h.skipped = append(h.skipped, fmt.Errorf("lastUpdated: %w", err))
		}
	}
	return nil
}

// Skipped returns the decode errors of entries dropped while loading
func (h *History) Skipped() []error {
	if h == nil {
		return nil
	}
	return h.skipped
}

// Statistics summarizes the retained records
type Statistics struct {
	TotalBuilds         int                  `json:"totalBuilds"`
	SuccessfulBuilds    int                  `json:"successfulBuilds"`
	FailedBuilds        int                  `json:"failedBuilds"`
	SuccessRate         float64              `json:"successRate"`
	AverageDuration     float64              `json:"averageDuration"` // milliseconds
	LastSuccessfulBuild *time.Time           `json:"lastSuccessfulBuild"`
	LastFailedBuild     *time.Time           `json:"lastFailedBuild"`
	Phases              map[domain.Phase]int `json:"phases"`
}

// New returns an empty history
func New() *History {
	return &History{
		Builds:     []domain.BuildRecord{},
		Statistics: ComputeStatistics(nil),
	}
}

// Latest returns the most recent record
func (h *History) Latest() (domain.BuildRecord, bool) {
	if h == nil || len(h.Builds) == 0 {
		return domain.BuildRecord{}, false
	}
	return h.Builds[len(h.Builds)-1], true
}

// LastN returns up to n of the most recent records in chronological order
func (h *History) LastN(n int) []domain.BuildRecord {
	if h == nil || n <= 0 {
		return nil
	}
	if n >= len(h.Builds) {
		return h.Builds
	}
	return h.Builds[len(h.Builds)-n:]
}

// ComputeStatistics derives the summary for a list of records.
// The success rate is a fraction in [0,1]; the average duration covers
// records with a positive duration.
func ComputeStatistics(builds []domain.BuildRecord) Statistics {
	stats := Statistics{
		TotalBuilds: len(builds),
		Phases:      map[domain.Phase]int{},
	}

	var totalDuration int64
	var timed int
	for i := range builds {
		b := &builds[i]
		ts := b.Timestamp
		if b.Success {
			stats.SuccessfulBuilds++
			stats.LastSuccessfulBuild = &ts
		} else {
			stats.FailedBuilds++
			stats.LastFailedBuild = &ts
		}
		if b.Duration > 0 {
			totalDuration += b.Duration
			timed++
		}
		phase := b.Phase
		if phase == "" {
			phase = domain.PhaseUnknown
		}
		stats.Phases[phase]++
	}

	if stats.TotalBuilds > 0 {
		stats.SuccessRate = float64(stats.SuccessfulBuilds) / float64(stats.TotalBuilds)
	}
	if timed > 0 {
		stats.AverageDuration = float64(totalDuration) / float64(timed)
	}
	return stats
}
