package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/botifyai2-sketch/buildmon/internal/domain"
	"github.com/botifyai2-sketch/buildmon/internal/drift"
	"github.com/botifyai2-sketch/buildmon/internal/history"
	"github.com/botifyai2-sketch/buildmon/internal/log"
	"github.com/botifyai2-sketch/buildmon/internal/patterns"
)

// Heuristic thresholds
const (
	FailureWindow     = 5
	FailureThreshold  = 3
	MinTimedBuilds    = 5
	RecentWindow      = 3
	HistoricalWindow  = 7
	DegradationFactor = 1.5
	NewPatternWindow  = patterns.NewWindow
)

// DriftDetector compares the current snapshot against the history
type DriftDetector interface {
	Detect(builds []domain.BuildRecord, current domain.ConfigSnapshot) drift.Report
}

// PatternAnalyzer groups build errors into patterns
type PatternAnalyzer interface {
	Analyze(builds []domain.BuildRecord) []patterns.ErrorPattern
}

// Engine evaluates the alert heuristics after each recorded build
type Engine struct {
	Store    *Store
	Detector DriftDetector
	Analyzer PatternAnalyzer
	Notifier Notifier
	Now      func() time.Time
	NewID    func() string
	Expiry   time.Duration
	Logger   *log.Logger
}

// NewEngine creates an engine with the default detector, analyzer,
// console notifier and 7 day expiry
func NewEngine(st *Store, logger *log.Logger) *Engine {
	return &Engine{
		Store:    st,
		Detector: drift.NewDetector(),
		Analyzer: patterns.NewAnalyzer(),
		Notifier: NewConsoleNotifier(false),
		Now:      time.Now,
		NewID:    uuid.NewString,
		Expiry:   DefaultExpiry,
		Logger:   log.OrDefault(logger).WithComponent("alerts"),
	}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}

// CheckForAlerts runs every heuristic against h, appends the new alerts
// to the active list, drops expired ones and saves the store. New alerts
// are returned and passed to the notifier even when saving fails.
func (e *Engine) CheckForAlerts(ctx context.Context, h *history.History, current domain.ConfigSnapshot) ([]Alert, error) {
	now := e.now()
	raised := e.Evaluate(h, current)

	expiry := e.Expiry
	if expiry <= 0 {
		expiry = DefaultExpiry
	}

	var saveErr error
	if e.Store != nil {
		st := e.Store.Load(ctx)
		st.Active = Expire(append(st.Active, raised...), now, expiry)
		saveErr = e.Store.Save(ctx, st)
	}

	for _, a := range raised {
		if e.Notifier != nil {
			e.Notifier.Notify(a)
		}
		log.OrDefault(e.Logger).Info("alert raised", "id", a.ID, "type", string(a.Kind), "severity", a.Severity.String())
	}
	return raised, saveErr
}

// Evaluate runs the heuristics without touching the store
func (e *Engine) Evaluate(h *history.History, current domain.ConfigSnapshot) []Alert {
	if h == nil {
		return nil
	}
	now := e.now()

	var raised []Alert
	for _, kind := range Kinds {
		var payload Payload
		var ok bool
		switch kind {
		case KindConsecutiveFailures:
			payload, ok = checkConsecutiveFailures(h)
		case KindPerformanceDegradation:
			payload, ok = checkPerformance(h)
		case KindConfigurationDrift:
			payload, ok = e.checkDrift(h, current)
		case KindNewErrorPattern:
			payload, ok = e.checkNewPatterns(h, now)
		}
		if ok {
			raised = append(raised, e.newAlert(payload, now))
		}
	}
	return raised
}

func (e *Engine) newAlert(p Payload, now time.Time) Alert {
	newID := e.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return Alert{
		ID:        newID(),
		Kind:      p.Kind(),
		Severity:  severityOf(p),
		Message:   messageOf(p),
		Timestamp: now,
		Data:      p,
	}
}

// severityOf maps a payload to the alert severity. High drift raises a
// medium alert.
func severityOf(p Payload) domain.Severity {
	switch p.(type) {
	case ConsecutiveFailures:
		return domain.SeverityHigh
	case PerformanceDegradation, ConfigurationDrift, NewErrorPattern:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

func messageOf(p Payload) string {
	switch v := p.(type) {
	case ConsecutiveFailures:
		return fmt.Sprintf("%d of the last %d builds failed", v.Failures, v.Window)
	case PerformanceDegradation:
		return fmt.Sprintf("Build performance degraded by %.1f%% (%.0fms recent vs %.0fms historical)",
			v.IncreasePercent, v.RecentAverage, v.HistoricalAverage)
	case ConfigurationDrift:
		return fmt.Sprintf("High-impact configuration drift detected in %d file(s)", len(v.Changes))
	case NewErrorPattern:
		return fmt.Sprintf("%d new error pattern(s) detected", len(v.Patterns))
	default:
		return "unknown alert"
	}
}

func checkConsecutiveFailures(h *history.History) (Payload, bool) {
	recent := h.LastN(FailureWindow)
	failures := 0
	errs := []string{}
	for _, b := range recent {
		if b.Success {
			continue
		}
		failures++
		errs = append(errs, b.Errors...)
	}
	if failures < FailureThreshold {
		return nil, false
	}
	return ConsecutiveFailures{Failures: failures, Window: len(recent), Errors: errs}, true
}

func checkPerformance(h *history.History) (Payload, bool) {
	var timed []int64
	for _, b := range h.Builds {
		if b.Success && b.Duration > 0 {
			timed = append(timed, b.Duration)
		}
	}
	if len(timed) < MinTimedBuilds {
		return nil, false
	}

	n := len(timed)
	recent := timed[n-RecentWindow:]
	start := n - RecentWindow - HistoricalWindow
	if start < 0 {
		start = 0
	}
	historical := timed[start : n-RecentWindow]

	recentAvg := mean(recent)
	historicalAvg := mean(historical)
	if historicalAvg <= 0 || recentAvg <= historicalAvg*DegradationFactor {
		return nil, false
	}

	return PerformanceDegradation{
		RecentAverage:     recentAvg,
		HistoricalAverage: historicalAvg,
		IncreasePercent:   (recentAvg - historicalAvg) / historicalAvg * 100,
	}, true
}

func (e *Engine) checkDrift(h *history.History, current domain.ConfigSnapshot) (Payload, bool) {
	if e.Detector == nil {
		return nil, false
	}
	report := e.Detector.Detect(h.Builds, current)
	if !report.HasDrift || report.Severity != domain.SeverityHigh {
		return nil, false
	}
	return ConfigurationDrift{Changes: report.Changes, DriftSeverity: report.Severity}, true
}

func (e *Engine) checkNewPatterns(h *history.History, now time.Time) (Payload, bool) {
	if e.Analyzer == nil {
		return nil, false
	}
	latest, ok := h.Latest()
	if !ok || latest.Success || len(latest.Errors) == 0 {
		return nil, false
	}

	var fresh []patterns.ErrorPattern
	for _, p := range e.Analyzer.Analyze(h.Builds) {
		if now.Sub(p.FirstSeen) < NewPatternWindow {
			fresh = append(fresh, p)
		}
	}
	if len(fresh) == 0 {
		return nil, false
	}
	return NewErrorPattern{Patterns: fresh}, true
}

func mean(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum int64
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}
