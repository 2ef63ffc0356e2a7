package domain

import "fmt"

// Severity is an ordered severity level shared by drift changes and alerts.
// The zero value is SeverityLow.
type Severity int

// Severity levels in ascending order
const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
)

// ParseSeverity parses the lowercase string form of a severity
func ParseSeverity(value string) (Severity, error) {
	switch value {
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	default:
		return SeverityLow, fmt.Errorf("invalid severity %q: must be low, medium, or high", value)
	}
}

// String returns the string representation
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Validate checks if the severity is one of the defined levels
func (s Severity) Validate() error {
	if s < SeverityLow || s > SeverityHigh {
		return fmt.Errorf("invalid severity %d", int(s))
	}
	return nil
}

// IsHigherThan checks if this severity is higher than another
func (s Severity) IsHigherThan(other Severity) bool {
	return s > other
}

// Compare returns -1, 0 or 1 as s is lower than, equal to or higher than other
func (s Severity) Compare(other Severity) int {
	switch {
	case s < other:
		return -1
	case s > other:
		return 1
	default:
		return 0
	}
}

// Max returns the higher of two severities
func (s Severity) Max(other Severity) Severity {
	if other > s {
		return other
	}
	return s
}

// MaxSeverity returns the highest severity in the list, or SeverityLow when empty
func MaxSeverity(levels ...Severity) Severity {
	max := SeverityLow
	for _, s := range levels {
		max = max.Max(s)
	}
	return max
}

// MarshalText implements encoding.TextMarshaler
func (s Severity) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
