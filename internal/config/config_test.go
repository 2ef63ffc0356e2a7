package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bmerrors "github.com/botifyai2-sketch/buildmon/internal/errors"
	"github.com/botifyai2-sketch/buildmon/internal/hooks"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	monDir := filepath.Join(dir, DefaultMonitoringDir)
	require.NoError(t, os.MkdirAll(monDir, 0o755))
	path := filepath.Join(monDir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Options{ProjectDir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, DefaultMonitoringDir, cfg.Monitoring.Dir)
	assert.Equal(t, 100, cfg.Monitoring.MaxHistory)
	assert.False(t, cfg.Monitoring.Enabled)
	assert.Equal(t, 7*24*time.Hour, cfg.Alerts.Expiry)
	assert.False(t, cfg.Alerts.PersistPatterns)
	assert.Equal(t, 5*time.Minute, cfg.Validation.TypecheckTimeout)
	assert.Equal(t, []string{"build", "start"}, cfg.Validation.RequiredScripts)
	assert.Equal(t, 5*time.Second, cfg.Probes.Timeout)
	assert.Equal(t, "warn", cfg.Log.Level)

	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
monitoring:
  max_history: 50
alerts:
  expiry: 48h
  persist_patterns: true
validation:
  required_scripts: [build]
metrics:
  enabled: true
`)

	cfg, err := Load(Options{ProjectDir: dir})
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Monitoring.MaxHistory)
	assert.Equal(t, 48*time.Hour, cfg.Alerts.Expiry)
	assert.True(t, cfg.Alerts.PersistPatterns)
	assert.Equal(t, []string{"build"}, cfg.Validation.RequiredScripts)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "monitoring:\n  max_history: 50\n")

	t.Setenv("BUILDMON_MONITORING_MAX_HISTORY", "20")
	t.Setenv("BUILDMON_LOG_LEVEL", "debug")

	cfg, err := Load(Options{ProjectDir: dir})
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Monitoring.MaxHistory)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_LegacyToggles(t *testing.T) {
	t.Setenv(EnvEnableMonitoring, "true")
	t.Setenv(EnvAutoFix, "true")

	cfg, err := Load(Options{ProjectDir: t.TempDir()})
	require.NoError(t, err)

	assert.True(t, cfg.Monitoring.Enabled)
	assert.True(t, cfg.Validation.AutoFix)
}

func TestLoad_PrefixedWinsOverLegacy(t *testing.T) {
	t.Setenv(EnvEnableMonitoring, "true")
	t.Setenv("BUILDMON_MONITORING_ENABLED", "false")

	cfg, err := Load(Options{ProjectDir: t.TempDir()})
	require.NoError(t, err)

	assert.False(t, cfg.Monitoring.Enabled)
}

func TestLoad_ExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("probes:\n  timeout: 2s\n"), 0o644))

	cfg, err := Load(Options{File: path})
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Probes.Timeout)

	_, err = Load(Options{File: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
}

func TestLoad_MonitoringDirOverride(t *testing.T) {
	dir := t.TempDir()
	monDir := filepath.Join(dir, "state")
	require.NoError(t, os.MkdirAll(monDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(monDir, "config.yaml"), []byte("metrics:\n  enabled: true\n"), 0o644))

	cfg, err := Load(Options{ProjectDir: dir, MonitoringDir: "state"})
	require.NoError(t, err)

	assert.Equal(t, "state", cfg.Monitoring.Dir)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "monitoring: [unclosed"},
		{"history too large", "monitoring:\n  max_history: 500\n"},
		{"history zero", "monitoring:\n  max_history: 0\n"},
		{"negative expiry", "alerts:\n  expiry: -1h\n"},
		{"hook without events", "hooks:\n  - name: x\n    type: webhook\n"},
		{"hook unknown event", "hooks:\n  - name: x\n    type: webhook\n    events: [on_deploy]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)

			_, err := Load(Options{ProjectDir: dir})
			require.Error(t, err)

			var be *bmerrors.BuildmonError
			require.ErrorAs(t, err, &be)
			assert.Equal(t, bmerrors.ErrCodeConfigInvalid, be.Code)
		})
	}
}

func TestLoad_Hooks(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `hooks:
  - name: team
    type: slack
    events: [alert_raised, drift_detected]
    timeout: 10s
    config:
      webhook_url: https://hooks.example.com/x
  - name: audit
    type: script
    enabled: false
    events: [build_failed]
    config:
      script: ./audit.sh
`)

	cfg, err := Load(Options{ProjectDir: dir})
	require.NoError(t, err)
	require.Len(t, cfg.Hooks, 2)

	team := cfg.Hooks[0]
	assert.Equal(t, "slack", team.Type)
	assert.Equal(t, []hooks.EventType{hooks.EventAlertRaised, hooks.EventDriftDetected}, team.Events)
	assert.Equal(t, 10*time.Second, team.Timeout)
	assert.True(t, team.IsEnabled())
	assert.Equal(t, "https://hooks.example.com/x", team.Config["webhook_url"])

	assert.False(t, cfg.Hooks[1].IsEnabled())
}
