// Package health composes the project health report and probes the
// toolchain a build depends on (node, npm, git, tsc).
//
//	manager := health.NewManager().WithTimeout(cfg.Probes.Timeout)
//	for _, c := range health.DefaultCheckers(dir, runner) {
//		manager.AddChecker(c)
//	}
//	report := health.Compose(health.Input{Statistics: stats, Probes: manager.Probes(ctx)})
package health

import (
	"context"
	"time"
)

// Checker probes one toolchain dependency. Check must honour the context
// deadline.
type Checker interface {
	// Name is lowercase with hyphens, e.g. "node-binary"
	Name() string
	Check(ctx context.Context) *Result
}

// Status of a single probe
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"  // usable, but a build may hit problems
	StatusUnhealthy Status = "unhealthy" // builds will fail
)

func (s Status) String() string {
	return string(s)
}

// Result is what a Checker reports. Details carries the parsed version,
// the command that ran or the error output.
type Result struct {
	Status  Status         `json:"status"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Latency time.Duration  `json:"-"`
}

// NewResult returns a result with an empty detail map
func NewResult(status Status, message string) *Result {
	return &Result{Status: status, Message: message, Details: map[string]any{}}
}

// WithDetail sets one detail and returns r
func (r *Result) WithDetail(key string, value any) *Result {
	r.Details[key] = value
	return r
}

func Healthy(message string) *Result   { return NewResult(StatusHealthy, message) }
func Degraded(message string) *Result  { return NewResult(StatusDegraded, message) }
func Unhealthy(message string) *Result { return NewResult(StatusUnhealthy, message) }
