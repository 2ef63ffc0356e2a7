package cmd

import (
	"github.com/spf13/cobra"

	"github.com/botifyai2-sketch/buildmon/internal/hooks"
	"github.com/botifyai2-sketch/buildmon/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the build configuration before deploying",
	Long: `Run the pre-build checks:
  1. package.json defines the required scripts (build, start)
  2. tsconfig.build.json extends tsconfig.json and excludes test files
  3. npx tsc --noEmit -p tsconfig.build.json reports no errors

The deployment phase is inferred from the NEXT_PUBLIC_ENABLE_* flags. With
--monitor (or ENABLE_BUILD_MONITORING=true) the run is recorded as a build.
On failure a troubleshooting block is printed to stderr and the exit code
is non-zero.

Examples:
  buildmon validate
  buildmon validate --auto-fix --monitor
  AUTO_FIX_DEPLOYMENT=true buildmon validate --skip-typecheck
`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

var (
	validateAutoFix       bool
	validateMonitor       bool
	validateSkipTypecheck bool
)

func init() {
	validateCmd.Flags().BoolVar(&validateAutoFix, "auto-fix", false, "repair tsconfig.build.json before validating")
	validateCmd.Flags().BoolVar(&validateMonitor, "monitor", false, "record the run in the build history")
	validateCmd.Flags().BoolVar(&validateSkipTypecheck, "skip-typecheck", false, "skip the tsc type check")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	cfg := cc.Config
	if cmd.Flags().Changed("auto-fix") {
		cfg.Validation.AutoFix = validateAutoFix
	}
	if cmd.Flags().Changed("monitor") {
		cfg.Monitoring.Enabled = validateMonitor
	}
	if cmd.Flags().Changed("skip-typecheck") {
		cfg.Validation.SkipTypecheck = validateSkipTypecheck
	}

	mon := cc.Monitor()
	pipeline := &validate.Pipeline{
		Dir:    cc.Dir,
		Runner: mon.Runner,
		Config: cfg,
		Phase:  mon.Env.Phase,
		Logger: cc.Logger,
	}
	if cfg.Monitoring.Enabled {
		pipeline.Monitor = mon
	}

	outcome, runErr := pipeline.Run(cmd.Context())
	if outcome != nil {
		if err := cc.Output(outcome); err != nil {
			return err
		}
	}
	if runErr != nil {
		data := map[string]any{"error": runErr.Error()}
		if outcome != nil {
			data["errors"] = len(outcome.Validation.Errors)
			data["phase"] = outcome.Phase.String()
		}
		cc.Trigger(hooks.EventValidationFailed, data)
		if err := validate.WriteTroubleshooting(cc.Err, cc.Styles()); err != nil {
			cc.Logger.WithError(err).Warn("failed to write troubleshooting")
		}
		return runErr
	}
	return nil
}
