package domain

import "fmt"

// Phase is the deployment mode a build ran in.
type Phase string

// Deployment phases
const (
	PhaseSimple  Phase = "simple"  // no database or auth features
	PhaseFull    Phase = "full"    // all features enabled
	PhaseUnknown Phase = "unknown" // flags not set
)

// NewPhase creates a Phase with validation
func NewPhase(value string) (Phase, error) {
	p := Phase(value)
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

// Validate checks if the phase is valid
func (p Phase) Validate() error {
	switch p {
	case PhaseSimple, PhaseFull, PhaseUnknown:
		return nil
	default:
		return fmt.Errorf("invalid phase %q: must be simple, full, or unknown", string(p))
	}
}

// String returns the string representation
func (p Phase) String() string {
	return string(p)
}
