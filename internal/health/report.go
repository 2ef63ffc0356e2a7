package health

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/botifyai2-sketch/buildmon/internal/alert"
	"github.com/botifyai2-sketch/buildmon/internal/domain"
	"github.com/botifyai2-sketch/buildmon/internal/drift"
	"github.com/botifyai2-sketch/buildmon/internal/history"
	"github.com/botifyai2-sketch/buildmon/internal/ux"
)

// Score thresholds and penalties
const (
	HealthyThreshold = 90
	WarningThreshold = 70

	TargetSuccessRate  = 0.9
	MinimumSuccessRate = 0.8
	SlowBuildMS        = 5 * 60 * 1000

	HighAlertPenalty   = 15
	MediumAlertPenalty = 5
)

// Grade is the health tier derived from the score
type Grade string

// Health tiers
const (
	GradeHealthy  Grade = "healthy"
	GradeWarning  Grade = "warning"
	GradeCritical Grade = "critical"
)

// Advisory texts appended to a report, in this order
const (
	AdviceSuccessRate = "Build success rate is below 80%. Review recent failures with `buildmon patterns` " +
		"and run `buildmon validate` before pushing."
	AdviceDrift = "High-impact configuration drift detected since the last successful build. " +
		"Review changes to package.json and tsconfig.build.json, then save a new baseline once the build is green."
	AdviceSlowBuilds = "Average build time exceeds 5 minutes. Check tsconfig.build.json excludes test files " +
		"and enable skipLibCheck to speed up type checking."
	AdviceConsecutiveFailures = "Multiple consecutive build failures. Fix the most frequent error pattern first " +
		"and run `buildmon validate --auto-fix` to repair the TypeScript configuration."
)

// Input is everything the composer scores
type Input struct {
	Statistics   history.Statistics
	Drift        *drift.Report
	ActiveAlerts []alert.Alert
	Probes       []Probe
	Now          time.Time
}

// AlertSummary counts active alerts per severity
type AlertSummary struct {
	Active int `json:"active"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Report is the composed project health report
type Report struct {
	Timestamp       time.Time          `json:"timestamp"`
	Score           int                `json:"score"`
	Status          Grade              `json:"status"`
	Statistics      history.Statistics `json:"statistics"`
	Drift           *drift.Report      `json:"drift,omitempty"`
	Alerts          AlertSummary       `json:"alerts"`
	Recommendations []string           `json:"recommendations"`
	Probes          []Probe            `json:"probes,omitempty"`
}

// Compose scores the input. The success rate penalty applies only once
// at least one build has been recorded.
func Compose(in Input) *Report {
	r := &Report{
		Timestamp:       in.Now.UTC(),
		Statistics:      in.Statistics,
		Drift:           in.Drift,
		Recommendations: []string{},
		Probes:          in.Probes,
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}

	score := 100.0
	stats := in.Statistics
	if stats.TotalBuilds > 0 && stats.SuccessRate < TargetSuccessRate {
		score -= (TargetSuccessRate - stats.SuccessRate) * 100
	}

	if in.Drift != nil && in.Drift.HasDrift {
		score -= float64(DriftPenalty(in.Drift.Severity))
	}

	consecutive := false
	for _, a := range in.ActiveAlerts {
		r.Alerts.Active++
		switch a.Severity {
		case domain.SeverityHigh:
			r.Alerts.High++
			score -= HighAlertPenalty
		case domain.SeverityMedium:
			r.Alerts.Medium++
			score -= MediumAlertPenalty
		default:
			r.Alerts.Low++
		}
		if a.Kind == alert.KindConsecutiveFailures {
			consecutive = true
		}
	}

	r.Score = clamp(int(math.Round(score)), 0, 100)
	r.Status = GradeFor(r.Score)

	if stats.TotalBuilds > 0 && stats.SuccessRate < MinimumSuccessRate {
		r.Recommendations = append(r.Recommendations, AdviceSuccessRate)
	}
	if in.Drift != nil && in.Drift.HasDrift && len(in.Drift.HighImpactChanges()) > 0 {
		r.Recommendations = append(r.Recommendations, AdviceDrift)
	}
	if stats.AverageDuration > SlowBuildMS {
		r.Recommendations = append(r.Recommendations, AdviceSlowBuilds)
	}
	if consecutive {
		r.Recommendations = append(r.Recommendations, AdviceConsecutiveFailures)
	}

	return r
}

// DriftPenalty returns the score deduction for a drift severity
func DriftPenalty(sev domain.Severity) int {
	switch sev {
	case domain.SeverityHigh:
		return 20
	case domain.SeverityMedium:
		return 10
	default:
		return 5
	}
}

// GradeFor maps a score to its tier
func GradeFor(score int) Grade {
	switch {
	case score >= HealthyThreshold:
		return GradeHealthy
	case score >= WarningThreshold:
		return GradeWarning
	default:
		return GradeCritical
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RenderText writes the report for a terminal
func (r *Report) RenderText(w io.Writer, s *ux.Styles) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", s.Title.Render("Build Health Report"))
	fmt.Fprintf(&b, "%s %d/100 (%s)\n", s.Label.Render("Score:"), r.Score, s.Status(string(r.Status)))

	st := r.Statistics
	fmt.Fprintf(&b, "%s %d total, %d successful, %d failed (%.1f%%)\n",
		s.Label.Render("Builds:"), st.TotalBuilds, st.SuccessfulBuilds, st.FailedBuilds, st.SuccessRate*100)
	if st.AverageDuration > 0 {
		avg := time.Duration(st.AverageDuration) * time.Millisecond
		fmt.Fprintf(&b, "%s %s\n", s.Label.Render("Average duration:"), avg.Round(time.Second))
	}

	if r.Drift != nil {
		if r.Drift.HasDrift {
			fmt.Fprintf(&b, "%s %s\n", s.Label.Render("Drift:"), s.RenderSeverity(r.Drift.Severity))
			for _, c := range r.Drift.Changes {
				fmt.Fprintf(&b, "  - %s: %s\n", c.File, c.Message)
			}
		} else {
			reason := r.Drift.Reason
			if reason == "" {
				reason = "none"
			}
			fmt.Fprintf(&b, "%s %s\n", s.Label.Render("Drift:"), s.Muted.Render(reason))
		}
	}

	fmt.Fprintf(&b, "%s %d active (%d high, %d medium, %d low)\n",
		s.Label.Render("Alerts:"), r.Alerts.Active, r.Alerts.High, r.Alerts.Medium, r.Alerts.Low)

	if len(r.Probes) > 0 {
		fmt.Fprintf(&b, "\n%s\n", s.Header.Render("Toolchain"))
		for _, p := range r.Probes {
			marker := s.Success.Render("✓")
			if p.Status != StatusHealthy {
				marker = s.Failure.Render("✗")
			}
			fmt.Fprintf(&b, "  %s %s: %s\n", marker, p.Name, p.Message)
		}
	}

	if len(r.Recommendations) > 0 {
		fmt.Fprintf(&b, "\n%s\n", s.Header.Render("Recommendations"))
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "  • %s\n", rec)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
