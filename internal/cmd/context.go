package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/botifyai2-sketch/buildmon/internal/alert"
	"github.com/botifyai2-sketch/buildmon/internal/config"
	bmerrors "github.com/botifyai2-sketch/buildmon/internal/errors"
	"github.com/botifyai2-sketch/buildmon/internal/hooks"
	"github.com/botifyai2-sketch/buildmon/internal/log"
	"github.com/botifyai2-sketch/buildmon/internal/monitor"
	"github.com/botifyai2-sketch/buildmon/internal/ux"
	"github.com/botifyai2-sketch/buildmon/internal/version"
)

// CommandContext holds the persistent flags and the configuration and
// logger derived from them. Commands build one in RunE:
//
//	func runCommand(cmd *cobra.Command, args []string) error {
//		cc, err := NewCommandContext(cmd)
//		if err != nil {
//			return err
//		}
//		// Use cc.Config, cc.Logger, cc.Output(...)
//	}
type CommandContext struct {
	// Project location
	Dir           string
	MonitoringDir string
	ConfigFile    string

	// Output control
	Format    string
	NoColor   bool
	LogLevel  string
	LogFormat string

	Config *config.Config
	Logger *log.Logger
	Hooks  *hooks.Registry
	Out    io.Writer
	Err    io.Writer

	ctx context.Context
}

// NewCommandContext reads the persistent flags, loads the configuration
// and installs the process logger
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cc, err := flagsContext(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(config.Options{
		File:          cc.ConfigFile,
		ProjectDir:    cc.Dir,
		MonitoringDir: cc.MonitoringDir,
	})
	if err != nil {
		return nil, err
	}
	cc.Config = cfg

	level, format := cfg.Log.Level, cfg.Log.Format
	if cc.LogLevel != "" {
		level = cc.LogLevel
	}
	if cc.LogFormat != "" {
		format = cc.LogFormat
	}
	lcfg := log.FromSettings(level, format, version.GetInfo().Version)
	lcfg.Output = cc.Err
	cc.Logger = log.New(lcfg)
	log.SetDefaultLogger(cc.Logger)

	cc.Hooks, err = hooks.FromConfig(cfg.Hooks, cc.Logger)
	if err != nil {
		return nil, bmerrors.Wrap(bmerrors.ErrCodeConfigInvalid, "failed to configure hooks", err).
			WithSuggestion("Check the hooks section of the config file")
	}

	return cc, nil
}

func flagsContext(cmd *cobra.Command) (*CommandContext, error) {
	flags := cmd.Flags()

	dir, err := flags.GetString("dir")
	if err != nil {
		return nil, err
	}
	monitoringDir, err := flags.GetString("monitoring-dir")
	if err != nil {
		return nil, err
	}
	configFile, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	format, err := flags.GetString("format")
	if err != nil {
		return nil, err
	}
	noColor, err := flags.GetBool("no-color")
	if err != nil {
		return nil, err
	}
	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return nil, err
	}
	logFormat, err := flags.GetString("log-format")
	if err != nil {
		return nil, err
	}

	if !flags.Changed("dir") {
		if root, err := ux.DiscoverProjectRoot(); err == nil {
			dir = root
		}
	}

	switch format {
	case "json", "yaml", "text":
	default:
		return nil, bmerrors.NewInvalidArgumentError("--format", format, "json, yaml or text")
	}

	return &CommandContext{
		Dir:           dir,
		MonitoringDir: monitoringDir,
		ConfigFile:    configFile,
		Format:        format,
		NoColor:       noColor,
		LogLevel:      logLevel,
		LogFormat:     logFormat,
		Out:           cmd.OutOrStdout(),
		Err:           cmd.ErrOrStderr(),
		ctx:           cmd.Context(),
	}, nil
}

// Paths resolves the monitoring files for the configured project
func (cc *CommandContext) Paths() *ux.PathDefaults {
	dir := cc.MonitoringDir
	if dir == "" && cc.Config != nil {
		dir = cc.Config.Monitoring.Dir
	}
	return ux.NewPathDefaults(cc.Dir, dir)
}

// Monitor opens the monitor for the configured project
func (cc *CommandContext) Monitor() *monitor.Monitor {
	m := monitor.New(monitor.Options{
		ProjectDir: cc.Dir,
		Config:     cc.Config,
		Logger:     cc.Logger,
		NoColor:    cc.NoColor,
	})
	var notifier alert.Notifier = &alert.ConsoleNotifier{Out: cc.Err, Styles: cc.Styles()}
	if cc.Hooks != nil && cc.Hooks.HasHooksFor(hooks.EventAlertRaised) {
		notifier = &hooks.AlertNotifier{
			Ctx:      cc.ctx,
			Next:     notifier,
			Registry: cc.Hooks,
			Project:  cc.project(),
		}
	}
	m.Engine.Notifier = notifier
	return m
}

// Trigger runs the hooks subscribed to eventType
func (cc *CommandContext) Trigger(eventType hooks.EventType, data map[string]any) {
	if cc.Hooks == nil || !cc.Hooks.HasHooksFor(eventType) {
		return
	}
	ctx := cc.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	results := cc.Hooks.Trigger(ctx, hooks.NewEvent(eventType, cc.project(), data))
	for _, r := range results {
		if !r.Success {
			fmt.Fprintf(cc.Err, "%s hook %s failed: %s\n", cc.Styles().Status("warning"), r.HookName, r.Error)
		}
	}
}

func (cc *CommandContext) project() string {
	abs, err := filepath.Abs(cc.Dir)
	if err != nil {
		return cc.Dir
	}
	return filepath.Base(abs)
}

// Output writes data to stdout in the selected format
func (cc *CommandContext) Output(data any) error {
	return cc.outputTo(cc.Out, data)
}

func (cc *CommandContext) outputTo(w io.Writer, data any) error {
	f, err := ux.NewFormatter(cc.Format, &ux.FormatterOptions{Writer: w, NoColor: cc.NoColor})
	if err != nil {
		return err
	}
	return f.Format(data)
}

// Styles returns the palette for stderr decorations
func (cc *CommandContext) Styles() *ux.Styles {
	return ux.NewStyles(cc.NoColor)
}
