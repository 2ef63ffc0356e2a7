// Package drift compares configuration fingerprints against the last
// known-good build.
package drift

import (
	"errors"
	"time"

	"github.com/botifyai2-sketch/buildmon/internal/domain"
)

// NoBaselineReason is reported when the history holds no successful build
const NoBaselineReason = "no previous successful build"

// ErrDriftDetected is returned by callers that treat drift as a failure
var ErrDriftDetected = errors.New("configuration drift detected")

// Change is one configuration artifact that differs from the baseline
type Change struct {
	File     string          `json:"file"`
	Severity domain.Severity `json:"severity"`
	Message  string          `json:"message"`
}

// Report is the outcome of a drift check
type Report struct {
	HasDrift bool            `json:"hasDrift"`
	Changes  []Change        `json:"changes"`
	Severity domain.Severity `json:"severity"`
	Reason   string          `json:"reason,omitempty"`
	// BaselineTimestamp is when the baseline snapshot was taken
	BaselineTimestamp *time.Time `json:"baselineTimestamp,omitempty"`
}

// Summary counts changes per severity
type Summary struct {
	TotalChanges int `json:"total_changes"`
	High         int `json:"high"`
	Medium       int `json:"medium"`
	Low          int `json:"low"`
}

// Summary returns per-severity counts
func (r *Report) Summary() Summary {
	s := Summary{TotalChanges: len(r.Changes)}
	for _, c := range r.Changes {
		switch c.Severity {
		case domain.SeverityHigh:
			s.High++
		case domain.SeverityMedium:
			s.Medium++
		case domain.SeverityLow:
			s.Low++
		}
	}
	return s
}

// HighImpactChanges returns the changes rated high
func (r *Report) HighImpactChanges() []Change {
	var out []Change
	for _, c := range r.Changes {
		if c.Severity == domain.SeverityHigh {
			out = append(out, c)
		}
	}
	return out
}
