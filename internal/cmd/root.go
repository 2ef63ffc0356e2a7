package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "buildmon",
	Short: "Build configuration drift and health monitor for Next.js projects",
	Long: `buildmon records build outcomes for a Next.js project, detects drift in the
build configuration files, raises alerts on failure streaks and slow builds,
and validates the TypeScript production config before deploying.

State lives in the .monitoring directory next to package.json. Every command
prints JSON by default; use --format text for a terminal view.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with a cancellable context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("dir", ".", "project directory containing package.json (default: nearest parent holding one)")
	flags.String("monitoring-dir", "", "state directory (default <dir>/.monitoring)")
	flags.String("config", "", "config file (default <monitoring-dir>/config.yaml)")
	flags.StringP("format", "f", "json", "output format: json, yaml or text")
	flags.String("log-level", "", "log level: debug, info, warn or error (overrides config)")
	flags.String("log-format", "", "log format: text or json (overrides config)")
	flags.Bool("no-color", false, "disable colored output")
}
