// Package monitor records build attempts and answers status, drift,
// alert, pattern and health queries over the monitoring directory.
package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/botifyai2-sketch/buildmon/internal/alert"
	"github.com/botifyai2-sketch/buildmon/internal/config"
	"github.com/botifyai2-sketch/buildmon/internal/detect"
	"github.com/botifyai2-sketch/buildmon/internal/domain"
	"github.com/botifyai2-sketch/buildmon/internal/drift"
	bmerrors "github.com/botifyai2-sketch/buildmon/internal/errors"
	"github.com/botifyai2-sketch/buildmon/internal/exec"
	"github.com/botifyai2-sketch/buildmon/internal/health"
	"github.com/botifyai2-sketch/buildmon/internal/history"
	"github.com/botifyai2-sketch/buildmon/internal/log"
	"github.com/botifyai2-sketch/buildmon/internal/metrics"
	"github.com/botifyai2-sketch/buildmon/internal/patterns"
	"github.com/botifyai2-sketch/buildmon/internal/snapshot"
	"github.com/botifyai2-sketch/buildmon/internal/store"
	"github.com/botifyai2-sketch/buildmon/internal/ux"
)

// Options configure a Monitor
type Options struct {
	ProjectDir string
	Config     *config.Config
	Logger     *log.Logger
	NoColor    bool
	Runner     exec.Runner
	Now        func() time.Time
}

// Monitor wires the snapshot reader, stores, alert engine, pattern
// analyzer and metrics for one project
type Monitor struct {
	Paths    *ux.PathDefaults
	Config   *config.Config
	Reader   *snapshot.Reader
	Env      *detect.Detector
	History  *history.Store
	Alerts   *alert.Store
	Engine   *alert.Engine
	Analyzer *patterns.Analyzer
	Ledger   *patterns.LedgerStore
	Baseline store.Store[domain.ConfigSnapshot]
	Runner   exec.Runner
	Now      func() time.Time

	registry *prometheus.Registry
	metrics  *metrics.Metrics
	logger   *log.Logger
}

// New creates a monitor rooted at opts.ProjectDir
func New(opts Options) *Monitor {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	runner := opts.Runner
	if runner == nil {
		runner = exec.NewLocalRunner()
	}
	logger := log.OrDefault(opts.Logger).WithComponent("monitor")

	paths := ux.NewPathDefaults(opts.ProjectDir, cfg.Monitoring.Dir)

	reader := snapshot.NewReader(paths.ProjectDir)
	reader.Now = now

	analyzer := patterns.NewAnalyzer()
	analyzer.Now = now

	alerts := alert.NewFileStore(paths.MonitoringDir, opts.Logger)
	engine := alert.NewEngine(alerts, opts.Logger)
	engine.Analyzer = analyzer
	engine.Notifier = alert.NewConsoleNotifier(opts.NoColor)
	engine.Now = now
	engine.Expiry = cfg.Alerts.Expiry

	m := &Monitor{
		Paths:    paths,
		Config:   cfg,
		Reader:   reader,
		Env:      detect.NewDetector(),
		History:  history.NewFileStore(paths.MonitoringDir, opts.Logger).WithMaxBuilds(cfg.Monitoring.MaxHistory),
		Alerts:   alerts,
		Engine:   engine,
		Analyzer: analyzer,
		Ledger:   patterns.NewLedgerFileStore(paths.MonitoringDir, opts.Logger),
		Baseline: store.NewJSONFile[domain.ConfigSnapshot](paths.BaselineFile()),
		Runner:   runner,
		Now:      now,
		logger:   logger,
	}

	if cfg.Metrics.Enabled {
		m.registry, m.metrics = metrics.NewRegistry()
	}
	return m
}

// RecordResult is what RecordBuildAttempt stored and raised
type RecordResult struct {
	Record     domain.BuildRecord `json:"record"`
	Statistics history.Statistics `json:"statistics"`
	Alerts     []alert.Alert      `json:"alerts"`
}

// RecordBuildAttempt stamps the attempt with the environment and current
// configuration, appends it to the history, evaluates alerts and, when
// enabled, exports metrics. The record is returned even when a save fails.
func (m *Monitor) RecordBuildAttempt(ctx context.Context, attempt domain.BuildAttempt) (*RecordResult, error) {
	now := m.Now().UTC()

	phase := attempt.Phase
	if phase == "" {
		phase = m.Env.Phase()
	}
	if err := phase.Validate(); err != nil {
		return nil, bmerrors.NewInvalidArgumentError("phase", string(phase), "simple, full or unknown")
	}

	record := domain.BuildRecord{
		Timestamp:     now,
		Success:       attempt.Success,
		Duration:      attempt.Duration.Milliseconds(),
		Phase:         phase,
		Errors:        nonNil(attempt.Errors),
		Warnings:      nonNil(attempt.Warnings),
		Environment:   m.Env.Environment(),
		Configuration: m.Reader.Read(),
		Metrics:       domain.MetricValues(attempt.Metrics),
	}

	h, err := m.History.Record(ctx, record, now)
	result := &RecordResult{Record: record, Statistics: h.Statistics, Alerts: []alert.Alert{}}
	if err != nil {
		return result, err
	}

	ledger := m.attachLedger(ctx)
	raised, alertErr := m.Engine.CheckForAlerts(ctx, h, record.Configuration)
	result.Alerts = append(result.Alerts, raised...)
	m.saveLedger(ctx, ledger)

	if alertErr != nil {
		m.logger.WithError(alertErr).Warn("failed to save alerts")
	}

	m.exportMetrics(ctx, h, record, raised, alertErr)
	return result, nil
}

// Status summarizes the history
type Status struct {
	TotalBuilds  int                 `json:"totalBuilds"`
	Statistics   history.Statistics  `json:"statistics"`
	LastBuild    *domain.BuildRecord `json:"lastBuild,omitempty"`
	LastUpdated  time.Time           `json:"lastUpdated"`
	ActiveAlerts int                 `json:"activeAlerts"`
}

// Status loads the history and alert counts
func (m *Monitor) Status(ctx context.Context) *Status {
	h := m.History.Load(ctx)
	st := &Status{
		TotalBuilds:  len(h.Builds),
		Statistics:   h.Statistics,
		LastUpdated:  h.LastUpdated,
		ActiveAlerts: len(m.Alerts.Load(ctx).Active),
	}
	if latest, ok := h.Latest(); ok {
		st.LastBuild = &latest
	}
	return st
}

// Drift compares the current configuration against the last successful
// build, or against the saved baseline when fromBaseline is set.
func (m *Monitor) Drift(ctx context.Context, fromBaseline bool) (*drift.Report, error) {
	current := m.Reader.Read()

	if fromBaseline {
		baseline, err := m.LoadBaseline(ctx)
		if err != nil {
			return nil, err
		}
		r := drift.CompareSnapshots(baseline, current)
		return &r, nil
	}

	h := m.History.Load(ctx)
	r := drift.Detect(h.Builds, current)
	return &r, nil
}

// Report composes the health report. Toolchain probes run only when
// withProbes is set and never affect the score.
func (m *Monitor) Report(ctx context.Context, withProbes bool) *health.Report {
	h := m.History.Load(ctx)
	dr := drift.Detect(h.Builds, m.Reader.Read())

	in := health.Input{
		Statistics:   h.Statistics,
		Drift:        &dr,
		ActiveAlerts: m.Alerts.Load(ctx).Active,
		Now:          m.Now(),
	}
	if withProbes {
		in.Probes = m.probeManager().Probes(ctx)
	}
	return health.Compose(in)
}

// Probes runs the toolchain probes on their own
func (m *Monitor) Probes(ctx context.Context) []health.Probe {
	return m.probeManager().Probes(ctx)
}

func (m *Monitor) probeManager() *health.Manager {
	mgr := health.NewManager().
		WithTimeout(m.Config.Probes.Timeout).
		WithLogger(m.logger)
	for _, c := range health.DefaultCheckers(m.Paths.ProjectDir, m.Runner) {
		mgr.AddChecker(c)
	}
	return mgr
}

// SaveBaseline stores the current configuration snapshot as the baseline
func (m *Monitor) SaveBaseline(ctx context.Context) (domain.ConfigSnapshot, error) {
	snap := m.Reader.Read()
	if err := m.Baseline.Save(ctx, snap); err != nil {
		return snap, err
	}
	m.logger.Info("baseline saved", "path", m.Paths.BaselineFile())
	return snap, nil
}

// LoadBaseline returns the saved baseline snapshot
func (m *Monitor) LoadBaseline(ctx context.Context) (domain.ConfigSnapshot, error) {
	snap, err := m.Baseline.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return snap, bmerrors.NewBaselineMissingError(m.Paths.BaselineFile())
	}
	return snap, err
}

// ListAlerts returns the alert document with expired active alerts removed
func (m *Monitor) ListAlerts(ctx context.Context) *alert.State {
	st := m.Alerts.Load(ctx)
	st.Active = alert.Expire(st.Active, m.Now().UTC(), m.Config.Alerts.Expiry)
	return st
}

// ResolveAlert moves an active alert to the resolved list
func (m *Monitor) ResolveAlert(ctx context.Context, id string) (alert.Alert, error) {
	return m.Alerts.Resolve(ctx, id, m.Now())
}

// ClearAlerts drops every active alert
func (m *Monitor) ClearAlerts(ctx context.Context) (int, error) {
	return m.Alerts.Clear(ctx)
}

// PatternReport is the grouped error patterns of the whole history
type PatternReport struct {
	Patterns  []patterns.ErrorPattern `json:"patterns"`
	NewCount  int                     `json:"newCount"`
	Persisted bool                    `json:"persisted"`
}

// Patterns analyzes every error in the history
func (m *Monitor) Patterns(ctx context.Context) *PatternReport {
	h := m.History.Load(ctx)

	ledger := m.attachLedger(ctx)
	found := m.Analyzer.Analyze(h.Builds)
	m.saveLedger(ctx, ledger)

	return &PatternReport{
		Patterns:  found,
		NewCount:  len(patterns.NewPatterns(found)),
		Persisted: ledger != nil,
	}
}

// attachLedger loads the pattern ledger into the analyzer when
// persistence is enabled
func (m *Monitor) attachLedger(ctx context.Context) *patterns.Ledger {
	if !m.Config.Alerts.PersistPatterns {
		m.Analyzer.Ledger = nil
		return nil
	}
	ledger := m.Ledger.Load(ctx)
	m.Analyzer.Ledger = ledger
	return ledger
}

func (m *Monitor) saveLedger(ctx context.Context, ledger *patterns.Ledger) {
	if ledger == nil {
		return
	}
	if err := m.Ledger.Save(ctx, ledger); err != nil {
		m.logger.WithError(err).Warn("failed to save pattern ledger")
	}
}

func (m *Monitor) exportMetrics(ctx context.Context, h *history.History, record domain.BuildRecord, raised []alert.Alert, alertErr error) {
	if m.metrics == nil {
		return
	}

	var be *bmerrors.BuildmonError
	if errors.As(alertErr, &be) {
		m.metrics.ObserveError(string(be.Code))
	}

	m.metrics.ObserveBuild(record)
	m.metrics.ObserveHistory(h)
	for _, a := range raised {
		m.metrics.AlertRaised(string(a.Kind), a.Severity)
	}

	dr := drift.Detect(h.Builds, record.Configuration)
	m.metrics.ObserveDrift(&dr)

	alerts := m.Alerts.Load(ctx)
	m.metrics.ObserveAlerts(alerts.CountBySeverity())

	report := health.Compose(health.Input{
		Statistics:   h.Statistics,
		Drift:        &dr,
		ActiveAlerts: alerts.Active,
		Now:          m.Now(),
	})
	m.metrics.HealthScore.Set(float64(report.Score))

	if v, ok := record.Metric(MetricTypeCheckSeconds); ok {
		m.metrics.TypeCheckDuration.Observe(v)
	}
	if v, ok := record.Metric(MetricDiagnostics); ok {
		m.metrics.TypeCheckDiagnostics.Set(v)
	}

	if err := metrics.WriteTextfile(m.Paths.MetricsFile(), m.registry); err != nil {
		m.logger.WithError(err).Warn("failed to write metrics")
	}
}

// Keys of BuildRecord.Metrics written by the validation pipeline
const (
	MetricTypeCheckSeconds = "typecheckSeconds"
	MetricDiagnostics      = "diagnostics"
)

func nonNil(list []string) domain.Messages {
	if list == nil {
		return domain.Messages{}
	}
	return domain.Messages(list)
}
