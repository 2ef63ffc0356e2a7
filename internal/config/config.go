// Package config loads buildmon settings from defaults, an optional YAML
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	bmerrors "github.com/botifyai2-sketch/buildmon/internal/errors"
	"github.com/botifyai2-sketch/buildmon/internal/history"
	"github.com/botifyai2-sketch/buildmon/internal/hooks"
)

// EnvPrefix prefixes every environment override (BUILDMON_MONITORING_DIR, ...)
const EnvPrefix = "BUILDMON"

// Legacy toggles honoured alongside the prefixed keys
const (
	EnvEnableMonitoring = "ENABLE_BUILD_MONITORING"
	EnvAutoFix          = "AUTO_FIX_DEPLOYMENT"
)

// Config is the full buildmon configuration
type Config struct {
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Alerts     AlertsConfig     `mapstructure:"alerts"`
	Validation ValidationConfig `mapstructure:"validation"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Probes     ProbesConfig     `mapstructure:"probes"`
	Log        LogConfig        `mapstructure:"log"`
	Hooks      []hooks.Config   `mapstructure:"hooks"`
}

// MonitoringConfig controls the history store
type MonitoringConfig struct {
	Dir        string `mapstructure:"dir"`
	MaxHistory int    `mapstructure:"max_history"`
	Enabled    bool   `mapstructure:"enabled"`
}

// AlertsConfig controls alert retention and pattern tracking
type AlertsConfig struct {
	Expiry          time.Duration `mapstructure:"expiry"`
	PersistPatterns bool          `mapstructure:"persist_patterns"`
}

// ValidationConfig controls the pre-build validation pipeline
type ValidationConfig struct {
	AutoFix          bool          `mapstructure:"auto_fix"`
	TypecheckTimeout time.Duration `mapstructure:"typecheck_timeout"`
	RequiredScripts  []string      `mapstructure:"required_scripts"`
	SkipTypecheck    bool          `mapstructure:"skip_typecheck"`
}

// MetricsConfig controls the Prometheus textfile export
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// ProbesConfig controls toolchain probes in the health report
type ProbesConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// LogConfig selects the log level and format
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// Options locate the configuration file
type Options struct {
	// File is an explicit config path; it must exist when set
	File string
	// ProjectDir is searched for <monitoring dir>/config.yaml
	ProjectDir string
	// MonitoringDir overrides the directory searched under ProjectDir
	MonitoringDir string
}

// Load reads the configuration. A missing default config file is not an
// error; a missing explicit file is.
func Load(opts Options) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindLegacyEnv(v)

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		dir := opts.MonitoringDir
		if dir == "" {
			dir = DefaultMonitoringDir
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(opts.ProjectDir, dir)
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, bmerrors.Wrap(bmerrors.ErrCodeConfigInvalid, "failed to read config", err).
				WithSuggestion("Check the YAML syntax of the config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, bmerrors.Wrap(bmerrors.ErrCodeConfigInvalid, "failed to decode config", err)
	}

	if opts.MonitoringDir != "" {
		cfg.Monitoring.Dir = opts.MonitoringDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration with only defaults applied
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// Defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Monitoring.Dir == "" {
		return invalid("monitoring.dir must not be empty")
	}
	if c.Monitoring.MaxHistory < 1 || c.Monitoring.MaxHistory > history.MaxBuilds {
		return invalid(fmt.Sprintf("monitoring.max_history must be between 1 and %d", history.MaxBuilds))
	}
	if c.Alerts.Expiry <= 0 {
		return invalid("alerts.expiry must be positive")
	}
	if c.Validation.TypecheckTimeout <= 0 {
		return invalid("validation.typecheck_timeout must be positive")
	}
	if c.Probes.Timeout <= 0 {
		return invalid("probes.timeout must be positive")
	}
	for i := range c.Hooks {
		if err := c.Hooks[i].Validate(); err != nil {
			return invalid(err.Error())
		}
	}
	return nil
}

func invalid(msg string) error {
	return bmerrors.New(bmerrors.ErrCodeConfigInvalid, msg).
		WithSuggestion("Fix the value in .monitoring/config.yaml or the matching BUILDMON_ environment variable")
}

// DefaultMonitoringDir is where state and config live under the project
const DefaultMonitoringDir = ".monitoring"

func setDefaults(v *viper.Viper) {
	v.SetDefault("monitoring.dir", DefaultMonitoringDir)
	v.SetDefault("monitoring.max_history", history.MaxBuilds)
	v.SetDefault("monitoring.enabled", false)

	v.SetDefault("alerts.expiry", "168h")
	v.SetDefault("alerts.persist_patterns", false)

	v.SetDefault("validation.auto_fix", false)
	v.SetDefault("validation.typecheck_timeout", "5m")
	v.SetDefault("validation.required_scripts", []string{"build", "start"})
	v.SetDefault("validation.skip_typecheck", false)

	v.SetDefault("metrics.enabled", false)

	v.SetDefault("probes.timeout", "5s")

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
}

// bindLegacyEnv lets the original toggles drive the same keys; the
// prefixed variable wins when both are set.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("monitoring.enabled", EnvPrefix+"_MONITORING_ENABLED", EnvEnableMonitoring)
	_ = v.BindEnv("validation.auto_fix", EnvPrefix+"_VALIDATION_AUTO_FIX", EnvAutoFix)
}
