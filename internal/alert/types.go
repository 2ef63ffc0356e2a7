// Package alert raises alerts from the build history and keeps them in
// an expiring store.
package alert

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/botifyai2-sketch/buildmon/internal/domain"
	"github.com/botifyai2-sketch/buildmon/internal/drift"
	"github.com/botifyai2-sketch/buildmon/internal/patterns"
)

// Kind identifies which heuristic raised an alert
type Kind string

// Alert kinds
const (
	KindConsecutiveFailures    Kind = "consecutive_failures"
	KindPerformanceDegradation Kind = "performance_degradation"
	KindConfigurationDrift     Kind = "configuration_drift"
	KindNewErrorPattern        Kind = "new_error_pattern"
)

// Kinds lists every alert kind
var Kinds = []Kind{
	KindConsecutiveFailures,
	KindPerformanceDegradation,
	KindConfigurationDrift,
	KindNewErrorPattern,
}

// Validate checks if the kind is known
func (k Kind) Validate() error {
	switch k {
	case KindConsecutiveFailures, KindPerformanceDegradation, KindConfigurationDrift, KindNewErrorPattern:
		return nil
	default:
		return fmt.Errorf("unknown alert type %q", string(k))
	}
}

// Payload is the kind-specific data attached to an alert
type Payload interface {
	Kind() Kind
}

// ConsecutiveFailures is raised when most of the recent builds failed
type ConsecutiveFailures struct {
	Failures int      `json:"failures"`
	Window   int      `json:"window"`
	Errors   []string `json:"errors"`
}

// PerformanceDegradation is raised when recent builds got much slower
type PerformanceDegradation struct {
	RecentAverage     float64 `json:"recentAverage"`     // milliseconds
	HistoricalAverage float64 `json:"historicalAverage"` // milliseconds
	IncreasePercent   float64 `json:"increasePercent"`
}

// ConfigurationDrift is raised on high-impact drift
type ConfigurationDrift struct {
	Changes       []drift.Change  `json:"changes"`
	DriftSeverity domain.Severity `json:"driftSeverity"`
}

// NewErrorPattern is raised when a failed build shows a pattern first
// seen within the last day
type NewErrorPattern struct {
	Patterns []patterns.ErrorPattern `json:"patterns"`
}

// Kind implements Payload
func (ConsecutiveFailures) Kind() Kind { return KindConsecutiveFailures }

// Kind implements Payload
func (PerformanceDegradation) Kind() Kind { return KindPerformanceDegradation }

// Kind implements Payload
func (ConfigurationDrift) Kind() Kind { return KindConfigurationDrift }

// Kind implements Payload
func (NewErrorPattern) Kind() Kind { return KindNewErrorPattern }

// Alert is one raised alert
type Alert struct {
	ID         string          `json:"id"`
	Kind       Kind            `json:"type"`
	Severity   domain.Severity `json:"severity"`
	Message    string          `json:"message"`
	Timestamp  time.Time       `json:"timestamp"`
	Data       Payload         `json:"data"`
	ResolvedAt *time.Time      `json:"resolvedAt,omitempty"`
}

// UnmarshalJSON decodes the payload selected by the alert type
func (a *Alert) UnmarshalJSON(data []byte) error {
	type plain Alert
	var raw struct {
		plain
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	payload, err := decodePayload(raw.plain.Kind, raw.Data)
	if err != nil {
		return err
	}

	*a = Alert(raw.plain)
	a.Data = payload
	return nil
}

func decodePayload(kind Kind, data json.RawMessage) (Payload, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}

	var payload Payload
	var err error
	switch kind {
	case KindConsecutiveFailures:
		payload, err = decodeInto[ConsecutiveFailures](data)
	case KindPerformanceDegradation:
		payload, err = decodeInto[PerformanceDegradation](data)
	case KindConfigurationDrift:
		payload, err = decodeInto[ConfigurationDrift](data)
	case KindNewErrorPattern:
		payload, err = decodeInto[NewErrorPattern](data)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s alert data: %w", kind, err)
	}
	return payload, nil
}

func decodeInto[T Payload](data json.RawMessage) (Payload, error) {
	var v T
	if len(data) == 0 || string(data) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// State is the persisted alert document
type State struct {
	Active   []Alert `json:"active"`
	Resolved []Alert `json:"resolved"`

	skipped []error
}

// UnmarshalJSON decodes each alert separately; alerts that fail to
// decode are dropped and reported by Skipped
func (s *State) UnmarshalJSON(data []byte) error {
	var raw struct {
		Active   []json.RawMessage `json:"active"`
		Resolved []json.RawMessage `json:"resolved"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = State{}
	s.Active = s.decodeList("active", raw.Active)
	s.Resolved = s.decodeList("resolved", raw.Resolved)
	return nil
}

func (s *State) decodeList(list string, items []json.RawMessage) []Alert {
	out := make([]Alert, 0, len(items))
	for i, item := range items {
		var a Alert
		if err := json.Unmarshal(item, &a); err != nil {
			s.skipped = append(s.skipped, fmt.Errorf("%s alert %d: %w", list, i, err))
			continue
		}
		out = append(out, a)
	}
	return out
}

// Skipped returns the decode errors of alerts dropped while loading
func (s *State) Skipped() []error {
	if s == nil {
		return nil
	}
	return s.skipped
}

// NewState returns an empty alert document
func NewState() *State {
	return &State{Active: []Alert{}, Resolved: []Alert{}}
}

// CountBySeverity returns how many active alerts carry each severity
func (s *State) CountBySeverity() map[domain.Severity]int {
	counts := map[domain.Severity]int{}
	for _, a := range s.Active {
		counts[a.Severity]++
	}
	return counts
}

// HasActive reports whether any active alert is of the given kind
func (s *State) HasActive(kind Kind) bool {
	for _, a := range s.Active {
		if a.Kind == kind {
			return true
		}
	}
	return false
}
