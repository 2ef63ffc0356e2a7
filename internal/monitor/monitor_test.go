package monitor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botifyai2-sketch/buildmon/internal/alert"
	"github.com/botifyai2-sketch/buildmon/internal/config"
	"github.com/botifyai2-sketch/buildmon/internal/detect"
	"github.com/botifyai2-sketch/buildmon/internal/domain"
	bmerrors "github.com/botifyai2-sketch/buildmon/internal/errors"
	"github.com/botifyai2-sketch/buildmon/internal/health"
	"github.com/botifyai2-sketch/buildmon/internal/log"
	"github.com/botifyai2-sketch/buildmon/internal/ux"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestMonitor(t *testing.T, mutate func(*config.Config)) (*Monitor, *clock, string) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"name":"app","scripts":{"build":"next build","start":"next start"},"dependencies":{"next":"14.0.0"}}`)
	writeFile(t, dir, "tsconfig.json", `{"compilerOptions":{"strict":true}}`)
	writeFile(t, dir, "tsconfig.build.json", `{"extends":"./tsconfig.json"}`)

	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}

	c := &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := New(Options{ProjectDir: dir, Config: cfg, Logger: log.Discard(), NoColor: true, Now: c.Now})
	m.Engine.Notifier = alert.NopNotifier{}
	m.Env = &detect.Detector{Lookup: func(string) (string, bool) { return "", false }, GOOS: "linux"}
	m.Reader.Getenv = func(string) (string, bool) { return "", false }
	return m, c, dir
}

func success(d time.Duration) domain.BuildAttempt {
	return domain.BuildAttempt{Success: true, Duration: d, Phase: domain.PhaseSimple}
}

func failure() domain.BuildAttempt {
	return domain.BuildAttempt{Success: false, Duration: time.Second, Phase: domain.PhaseSimple}
}

func TestRecordBuildAttempt(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestMonitor(t, nil)

	res, err := m.RecordBuildAttempt(ctx, success(42*time.Second))
	require.NoError(t, err)

	assert.Equal(t, int64(42000), res.Record.Duration)
	assert.Equal(t, domain.PhaseSimple, res.Record.Phase)
	assert.Equal(t, "linux", res.Record.Environment.Platform)
	assert.NotNil(t, res.Record.Configuration.PackageJSONHash)
	assert.Nil(t, res.Record.Configuration.FrameworkConfigHash)
	assert.Equal(t, 1, res.Statistics.TotalBuilds)
	assert.Empty(t, res.Alerts)

	status := m.Status(ctx)
	assert.Equal(t, 1, status.TotalBuilds)
	require.NotNil(t, status.LastBuild)
	assert.True(t, status.LastBuild.Success)
	assert.FileExists(t, m.Paths.HistoryFile())
}

func TestRecordBuildAttempt_DefaultPhaseFromFlags(t *testing.T) {
	m, _, _ := newTestMonitor(t, nil)
	m.Env.Lookup = func(key string) (string, bool) {
		if key == detect.FlagCMS {
			return "true", true
		}
		return "", false
	}

	res, err := m.RecordBuildAttempt(context.Background(), domain.BuildAttempt{Success: true})
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseFull, res.Record.Phase)
}

func TestRecordBuildAttempt_InvalidPhase(t *testing.T) {
	m, _, _ := newTestMonitor(t, nil)

	_, err := m.RecordBuildAttempt(context.Background(), domain.BuildAttempt{Phase: "staging"})

	var be *bmerrors.BuildmonError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, bmerrors.ErrCodeInvalidArgument, be.Code)
}

func TestRecordBuildAttempt_ConsecutiveFailures(t *testing.T) {
	ctx := context.Background()
	m, c, _ := newTestMonitor(t, nil)

	var kinds []alert.Kind
	for i := 0; i < 4; i++ {
		c.Advance(time.Minute)
		res, err := m.RecordBuildAttempt(ctx, failure())
		require.NoError(t, err)
		for _, a := range res.Alerts {
			kinds = append(kinds, a.Kind)
		}
	}

	// third and fourth failures each raise one alert
	assert.Equal(t, []alert.Kind{alert.KindConsecutiveFailures, alert.KindConsecutiveFailures}, kinds)
	assert.Len(t, m.ListAlerts(ctx).Active, 2)
}

func TestDrift(t *testing.T) {
	ctx := context.Background()
	m, _, dir := newTestMonitor(t, nil)

	r, err := m.Drift(ctx, false)
	require.NoError(t, err)
	assert.False(t, r.HasDrift)
	assert.Equal(t, "no previous successful build", r.Reason)

	_, err = m.RecordBuildAttempt(ctx, success(time.Second))
	require.NoError(t, err)

	writeFile(t, dir, "tsconfig.build.json", `{"extends":"./tsconfig.json","exclude":["**/*.test.ts"]}`)

	r, err = m.Drift(ctx, false)
	require.NoError(t, err)
	assert.True(t, r.HasDrift)
	require.Len(t, r.Changes, 1)
	assert.Equal(t, "tsconfig.build.json", r.Changes[0].File)
	assert.Equal(t, domain.SeverityHigh, r.Severity)
}

func TestBaseline(t *testing.T) {
	ctx := context.Background()
	m, _, dir := newTestMonitor(t, nil)

	_, err := m.LoadBaseline(ctx)
	var be *bmerrors.BuildmonError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, bmerrors.ErrCodeBaselineMissing, be.Code)

	_, err = m.Drift(ctx, true)
	require.Error(t, err)

	saved, err := m.SaveBaseline(ctx)
	require.NoError(t, err)
	assert.FileExists(t, m.Paths.BaselineFile())

	loaded, err := m.LoadBaseline(ctx)
	require.NoError(t, err)
	assert.Equal(t, *saved.PackageJSONHash, *loaded.PackageJSONHash)

	r, err := m.Drift(ctx, true)
	require.NoError(t, err)
	assert.False(t, r.HasDrift)

	writeFile(t, dir, "package.json", `{"name":"app","dependencies":{"next":"15.0.0"}}`)
	r, err = m.Drift(ctx, true)
	require.NoError(t, err)
	assert.True(t, r.HasDrift)
	assert.Len(t, r.Changes, 2)
}

func TestReport(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestMonitor(t, nil)

	_, err := m.RecordBuildAttempt(ctx, success(time.Second))
	require.NoError(t, err)

	r := m.Report(ctx, false)
	assert.Equal(t, 100, r.Score)
	assert.Equal(t, health.GradeHealthy, r.Status)
	assert.Empty(t, r.Probes)
}

func TestAlertsResolveAndClear(t *testing.T) {
	ctx := context.Background()
	m, c, _ := newTestMonitor(t, nil)

	for i := 0; i < 3; i++ {
		c.Advance(time.Minute)
		_, err := m.RecordBuildAttempt(ctx, failure())
		require.NoError(t, err)
	}

	active := m.ListAlerts(ctx).Active
	require.Len(t, active, 1)

	_, err := m.ResolveAlert(ctx, "missing")
	var be *bmerrors.BuildmonError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, bmerrors.ErrCodeAlertNotFound, be.Code)

	resolved, err := m.ResolveAlert(ctx, active[0].ID)
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedAt)

	st := m.ListAlerts(ctx)
	assert.Empty(t, st.Active)
	assert.Len(t, st.Resolved, 1)

	c.Advance(time.Minute)
	_, err = m.RecordBuildAttempt(ctx, failure())
	require.NoError(t, err)

	n, err := m.ClearAlerts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, m.ListAlerts(ctx).Active)
}

func TestListAlerts_Expired(t *testing.T) {
	ctx := context.Background()
	m, c, _ := newTestMonitor(t, nil)

	for i := 0; i < 3; i++ {
		_, err := m.RecordBuildAttempt(ctx, failure())
		require.NoError(t, err)
	}
	require.Len(t, m.ListAlerts(ctx).Active, 1)

	c.Advance(8 * 24 * time.Hour)
	assert.Empty(t, m.ListAlerts(ctx).Active)
}

func TestPatterns(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestMonitor(t, nil)

	attempt := failure()
	attempt.Errors = []string{
		"src/a.ts(10,5): error TS2345: Type 'x' is not assignable",
		"src/b.ts(99,1): error TS2345: Type 'y' is not assignable",
	}
	res, err := m.RecordBuildAttempt(ctx, attempt)
	require.NoError(t, err)
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, alert.KindNewErrorPattern, res.Alerts[0].Kind)

	report := m.Patterns(ctx)
	require.Len(t, report.Patterns, 1)
	assert.Equal(t, 2, report.Patterns[0].Count)
	assert.Equal(t, 1, report.NewCount)
	assert.False(t, report.Persisted)
	assert.NoFileExists(t, m.Paths.PatternsFile())
}

func TestPatterns_PersistedLedger(t *testing.T) {
	ctx := context.Background()
	m, c, _ := newTestMonitor(t, func(cfg *config.Config) { cfg.Alerts.PersistPatterns = true })

	attempt := failure()
	attempt.Errors = []string{"Module not found: Can't resolve 'x'"}
	_, err := m.RecordBuildAttempt(ctx, attempt)
	require.NoError(t, err)
	assert.FileExists(t, m.Paths.PatternsFile())

	c.Advance(48 * time.Hour)
	report := m.Patterns(ctx)
	require.Len(t, report.Patterns, 1)
	assert.True(t, report.Persisted)
	assert.False(t, report.Patterns[0].IsNew)
	assert.Equal(t, 0, report.NewCount)
}

func TestMetricsTextfile(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestMonitor(t, func(cfg *config.Config) { cfg.Metrics.Enabled = true })

	attempt := success(30 * time.Second)
	attempt.Metrics = map[string]float64{MetricTypeCheckSeconds: 12, MetricDiagnostics: 0}
	_, err := m.RecordBuildAttempt(ctx, attempt)
	require.NoError(t, err)

	data, err := os.ReadFile(m.Paths.MetricsFile())
	require.NoError(t, err)
	body := string(data)
	assert.Contains(t, body, "buildmon_health_score 100")
	assert.Contains(t, body, `buildmon_build_attempts_total{phase="simple",success="true"} 1`)
	assert.Contains(t, body, "buildmon_typecheck_duration_seconds_count 1")
}

func TestMetricsDisabled(t *testing.T) {
	m, _, _ := newTestMonitor(t, nil)

	_, err := m.RecordBuildAttempt(context.Background(), success(time.Second))
	require.NoError(t, err)
	assert.NoFileExists(t, m.Paths.MetricsFile())
}

func TestRenderText(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestMonitor(t, nil)
	styles := ux.NewStyles(true)

	res, err := m.RecordBuildAttempt(ctx, success(1500*time.Millisecond))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, res.RenderText(&buf, styles))
	assert.Contains(t, buf.String(), "Recorded: success in 1.5s (simple phase)")

	buf.Reset()
	require.NoError(t, m.Status(ctx).RenderText(&buf, styles))
	assert.Contains(t, buf.String(), "Builds: 1 total, 1 successful, 0 failed")
	assert.Contains(t, buf.String(), "Success rate: 100.0%")

	buf.Reset()
	require.NoError(t, m.Patterns(ctx).RenderText(&buf, styles))
	assert.Contains(t, buf.String(), "no errors recorded")
}
