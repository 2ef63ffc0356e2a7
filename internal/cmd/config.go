package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/botifyai2-sketch/buildmon/internal/config"
	bmerrors "github.com/botifyai2-sketch/buildmon/internal/errors"
	"github.com/botifyai2-sketch/buildmon/internal/hooks"
	"github.com/botifyai2-sketch/buildmon/internal/ux"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or initialize buildmon configuration",
	Long: `Manage the project configuration stored at .monitoring/config.yaml

Settings are resolved from defaults, then the config file, then BUILDMON_*
environment variables (BUILDMON_MONITORING_MAX_HISTORY, ...). The legacy
ENABLE_BUILD_MONITORING and AUTO_FIX_DEPLOYMENT toggles are honoured too.

Examples:
  # View the effective configuration
  buildmon config view --format yaml

  # Get a specific value
  buildmon config get validation.typecheck_timeout

  # Write a config file with the defaults
  buildmon config init

  # Show configuration file path
  buildmon config path
`,
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Display the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigView,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  `Retrieve the value of a configuration key using dot notation (e.g., alerts.expiry).`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config file")

	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(configCmd)
}

// Settings is the printable form of config.Config; durations are
// rendered the way the config file accepts them
type Settings struct {
	Monitoring struct {
		Dir        string `json:"dir" yaml:"dir"`
		MaxHistory int    `json:"max_history" yaml:"max_history"`
		Enabled    bool   `json:"enabled" yaml:"enabled"`
	} `json:"monitoring" yaml:"monitoring"`
	Alerts struct {
		Expiry          string `json:"expiry" yaml:"expiry"`
		PersistPatterns bool   `json:"persist_patterns" yaml:"persist_patterns"`
	} `json:"alerts" yaml:"alerts"`
	Validation struct {
		AutoFix          bool     `json:"auto_fix" yaml:"auto_fix"`
		TypecheckTimeout string   `json:"typecheck_timeout" yaml:"typecheck_timeout"`
		RequiredScripts  []string `json:"required_scripts" yaml:"required_scripts"`
		SkipTypecheck    bool     `json:"skip_typecheck" yaml:"skip_typecheck"`
	} `json:"validation" yaml:"validation"`
	Metrics struct {
		Enabled bool `json:"enabled" yaml:"enabled"`
	} `json:"metrics" yaml:"metrics"`
	Probes struct {
		Timeout string `json:"timeout" yaml:"timeout"`
	} `json:"probes" yaml:"probes"`
	Log struct {
		Level  string `json:"level" yaml:"level"`
		Format string `json:"format" yaml:"format"`
	} `json:"log" yaml:"log"`
	Hooks []HookSetting `json:"hooks,omitempty" yaml:"hooks,omitempty"`
}

// HookSetting lists a configured hook; its options are left out since
// they usually carry webhook secrets
type HookSetting struct {
	Name    string   `json:"name" yaml:"name"`
	Type    string   `json:"type" yaml:"type"`
	Events  []string `json:"events" yaml:"events"`
	Enabled bool     `json:"enabled" yaml:"enabled"`
	Timeout string   `json:"timeout" yaml:"timeout"`
}

func settingsOf(cfg *config.Config) *Settings {
	s := &Settings{}
	s.Monitoring.Dir = cfg.Monitoring.Dir
	s.Monitoring.MaxHistory = cfg.Monitoring.MaxHistory
	s.Monitoring.Enabled = cfg.Monitoring.Enabled
	s.Alerts.Expiry = cfg.Alerts.Expiry.String()
	s.Alerts.PersistPatterns = cfg.Alerts.PersistPatterns
	s.Validation.AutoFix = cfg.Validation.AutoFix
	s.Validation.TypecheckTimeout = cfg.Validation.TypecheckTimeout.String()
	s.Validation.RequiredScripts = cfg.Validation.RequiredScripts
	s.Validation.SkipTypecheck = cfg.Validation.SkipTypecheck
	s.Metrics.Enabled = cfg.Metrics.Enabled
	s.Probes.Timeout = cfg.Probes.Timeout.String()
	s.Log.Level = cfg.Log.Level
	s.Log.Format = cfg.Log.Format
	for _, h := range cfg.Hooks {
		hs := HookSetting{Name: h.Name, Type: h.Type, Enabled: h.IsEnabled(), Timeout: hooks.DefaultTimeout.String()}
		if h.Timeout > 0 {
			hs.Timeout = h.Timeout.String()
		}
		for _, e := range h.Events {
			hs.Events = append(hs.Events, string(e))
		}
		s.Hooks = append(s.Hooks, hs)
	}
	return s
}

// RenderText writes the settings as YAML
func (s *Settings) RenderText(w io.Writer, _ *ux.Styles) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}

func runConfigView(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	return cc.Output(settingsOf(cc.Config))
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	value, err := lookupSetting(settingsOf(cc.Config), args[0])
	if err != nil {
		return err
	}

	switch v := value.(type) {
	case map[string]any, []any:
		return cc.Output(v)
	default:
		_, err = fmt.Fprintln(cc.Out, v)
		return err
	}
}

// lookupSetting resolves a dotted key against the settings tree
func lookupSetting(s *Settings, key string) (any, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}

	var current any = tree
	for _, part := range strings.Split(key, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, unknownKey(key)
		}
		current, ok = m[part]
		if !ok {
			return nil, unknownKey(key)
		}
	}
	return current, nil
}

func unknownKey(key string) error {
	return bmerrors.NewInvalidArgumentError("key", key, "a dotted key such as monitoring.max_history; see 'buildmon config view'")
}

func configFilePath(cc *CommandContext) string {
	if cc.ConfigFile != "" {
		return cc.ConfigFile
	}
	return cc.Paths().ConfigFile()
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	cc, err := flagsContext(cmd)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cc.Out, configFilePath(cc))
	return err
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cc, err := flagsContext(cmd)
	if err != nil {
		return err
	}

	path := configFilePath(cc)
	if _, err := os.Stat(path); err == nil && !configInitForce {
		return bmerrors.New(bmerrors.ErrCodeFileWriteFailed, fmt.Sprintf("config file already exists: %s", path)).
			WithSuggestion("Pass --force to overwrite it")
	}

	cfg := config.Default()
	if cc.MonitoringDir != "" {
		cfg.Monitoring.Dir = cc.MonitoringDir
	}
	data, err := yaml.Marshal(settingsOf(cfg))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return bmerrors.Wrap(bmerrors.ErrCodeDirectoryFailed, "failed to create config directory", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return bmerrors.Wrap(bmerrors.ErrCodeFileWriteFailed, "failed to write config file", err)
	}

	_, err = fmt.Fprintf(cc.Out, "Wrote %s\n", path)
	return err
}
