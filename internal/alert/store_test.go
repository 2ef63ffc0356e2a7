package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botifyai2-sketch/buildmon/internal/domain"
	"github.com/botifyai2-sketch/buildmon/internal/drift"
	bmerrors "github.com/botifyai2-sketch/buildmon/internal/errors"
	"github.com/botifyai2-sketch/buildmon/internal/log"
	"github.com/botifyai2-sketch/buildmon/internal/patterns"
)

func sampleState() *State {
	return &State{
		Active: []Alert{
			{ID: "1", Kind: KindConsecutiveFailures, Severity: domain.SeverityHigh, Timestamp: now,
				Data: ConsecutiveFailures{Failures: 3, Window: 5, Errors: []string{"boom"}}},
			{ID: "2", Kind: KindPerformanceDegradation, Severity: domain.SeverityMedium, Timestamp: now,
				Data: PerformanceDegradation{RecentAverage: 300, HistoricalAverage: 100, IncreasePercent: 200}},
			{ID: "3", Kind: KindConfigurationDrift, Severity: domain.SeverityMedium, Timestamp: now,
				Data: ConfigurationDrift{Changes: []drift.Change{{File: "package.json", Severity: domain.SeverityHigh}}, DriftSeverity: domain.SeverityHigh}},
			{ID: "4", Kind: KindNewErrorPattern, Severity: domain.SeverityMedium, Timestamp: now,
				Data: NewErrorPattern{Patterns: []patterns.ErrorPattern{{ID: "abc", Pattern: "boom", Count: 1, Examples: []string{"boom"}}}}},
		},
		Resolved: []Alert{},
	}
}

func TestFileStore_PreservesPayloadTypes(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewFileStore(dir, log.Discard())

	require.NoError(t, s.Save(ctx, sampleState()))
	loaded := s.Load(ctx)

	require.Len(t, loaded.Active, 4)
	assert.IsType(t, ConsecutiveFailures{}, loaded.Active[0].Data)
	assert.IsType(t, PerformanceDegradation{}, loaded.Active[1].Data)
	assert.IsType(t, ConfigurationDrift{}, loaded.Active[2].Data)
	assert.IsType(t, NewErrorPattern{}, loaded.Active[3].Data)
	assert.Equal(t, sampleState().Active[0].Data, loaded.Active[0].Data)
	assert.Equal(t, domain.SeverityHigh, loaded.Active[2].Data.(ConfigurationDrift).Changes[0].Severity)
}

func TestAlert_JSONShape(t *testing.T) {
	data, err := json.Marshal(sampleState().Active[0])
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "consecutive_failures", decoded["type"])
	assert.Equal(t, "high", decoded["severity"])
	assert.Equal(t, float64(3), decoded["data"].(map[string]any)["failures"])
	assert.NotContains(t, decoded, "resolvedAt")
}

func TestAlert_UnmarshalRejectsUnknownType(t *testing.T) {
	var a Alert
	err := json.Unmarshal([]byte(`{"id":"x","type":"disk_full","severity":"low","data":{}}`), &a)
	assert.Error(t, err)
}

func TestAlert_UnmarshalNullData(t *testing.T) {
	var a Alert
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","type":"new_error_pattern","severity":"medium","data":null}`), &a))
	assert.Equal(t, NewErrorPattern{}, a.Data)
}

func TestStore_LoadCorruptIsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{"active":[{"type":"bogus"}]}`), 0644))

	st := NewFileStore(dir, log.Discard()).Load(context.Background())
	assert.Empty(t, st.Active)
	assert.NotNil(t, st.Resolved)
}

const legacyAlerts = `{
  "active": [
    {"id": "keep-1", "type": "consecutive_failures", "severity": "high",
     "message": "3 consecutive build failures", "timestamp": "2026-04-19T09:00:00Z",
     "data": {"failures": 3, "window": 5, "errors": ["boom"]}},
    {"id": "legacy", "type": "consecutive_failures", "severity": "high",
     "message": "old shape", "timestamp": "2026-04-19T09:00:00Z",
     "data": {"failures": [{"message": "boom", "timestamp": "2026-04-19T08:00:00Z"}]}},
    {"id": "keep-2", "type": "performance_degradation", "severity": "medium",
     "message": "slower", "timestamp": "2026-04-19T10:00:00Z",
     "data": {"recentAverage": 300, "historicalAverage": 100, "increasePercent": 200}}
  ],
  "resolved": [
    {"id": "done", "type": "new_error_pattern", "severity": "medium",
     "message": "new pattern", "timestamp": "2026-04-18T09:00:00Z", "data": null}
  ]
}`

func TestStore_LoadSkipsOnlyUnreadableAlerts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(legacyAlerts), 0644))

	var buf bytes.Buffer
	cfg := log.DefaultConfig()
	cfg.Output = &buf
	st := NewFileStore(dir, log.New(cfg)).Load(context.Background())

	require.Len(t, st.Active, 2)
	assert.Equal(t, "keep-1", st.Active[0].ID)
	assert.Equal(t, "keep-2", st.Active[1].ID)
	require.Len(t, st.Resolved, 1)
	assert.Equal(t, "done", st.Resolved[0].ID)
	assert.Empty(t, st.Skipped())
	assert.Contains(t, buf.String(), "dropped unreadable alert")
	assert.Contains(t, buf.String(), "active alert 1")
}

func TestCheckForAlerts_KeepsReadableAlertsFromLegacyFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(legacyAlerts), 0644))

	e, _, _ := newTestEngine()
	e.Store = NewFileStore(dir, log.Discard())
	e.Analyzer = nil

	raised, err := e.CheckForAlerts(ctx, historyOf(fail("a"), fail("b"), fail("c")), domain.ConfigSnapshot{})
	require.NoError(t, err)
	require.Len(t, raised, 1)

	st := e.Store.Load(ctx)
	ids := make([]string, 0, len(st.Active))
	for _, a := range st.Active {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"keep-1", "keep-2", raised[0].ID}, ids)
	assert.Len(t, st.Resolved, 1)
}

func TestStore_Resolve(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir(), log.Discard())
	require.NoError(t, s.Save(ctx, sampleState()))

	resolvedAt := now.Add(time.Hour)
	a, err := s.Resolve(ctx, "2", resolvedAt)
	require.NoError(t, err)
	assert.Equal(t, "2", a.ID)
	require.NotNil(t, a.ResolvedAt)
	assert.Equal(t, resolvedAt, *a.ResolvedAt)

	st := s.Load(ctx)
	assert.Len(t, st.Active, 3)
	require.Len(t, st.Resolved, 1)
	assert.Equal(t, "2", st.Resolved[0].ID)

	_, err = s.Resolve(ctx, "missing", now)
	var bmErr *bmerrors.BuildmonError
	require.True(t, errors.As(err, &bmErr))
	assert.Equal(t, bmerrors.ErrCodeAlertNotFound, bmErr.Code)
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir(), log.Discard())

	n, err := s.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, s.Save(ctx, sampleState()))
	n, err = s.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Empty(t, s.Load(ctx).Active)
}

func TestExpire(t *testing.T) {
	active := []Alert{
		{ID: "fresh", Timestamp: now},
		{ID: "edge", Timestamp: now.Add(-DefaultExpiry)},
		{ID: "stale", Timestamp: now.Add(-DefaultExpiry - time.Second)},
	}

	kept := Expire(active, now, DefaultExpiry)
	require.Len(t, kept, 2)
	assert.Equal(t, "fresh", kept[0].ID)
	assert.Equal(t, "edge", kept[1].ID)
}

func TestState_Counts(t *testing.T) {
	st := sampleState()
	counts := st.CountBySeverity()
	assert.Equal(t, 1, counts[domain.SeverityHigh])
	assert.Equal(t, 3, counts[domain.SeverityMedium])
	assert.True(t, st.HasActive(KindConsecutiveFailures))
	assert.False(t, NewState().HasActive(KindConsecutiveFailures))
}
