package cmd

import (
	"math"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/botifyai2-sketch/buildmon/internal/domain"
	bmerrors "github.com/botifyai2-sketch/buildmon/internal/errors"
	"github.com/botifyai2-sketch/buildmon/internal/hooks"
	"github.com/botifyai2-sketch/buildmon/internal/ux"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Record builds and inspect build health",
	Long: `Record build outcomes and query the build history kept in the monitoring
directory.

Examples:
  # Summary of recorded builds
  buildmon monitor status

  # Health score with recommendations and toolchain probes
  buildmon monitor report --probes --format text

  # Configuration drift since the last successful build
  buildmon monitor drift

  # Record a successful 42 second build in the full phase
  buildmon monitor record true 42000 full
`,
}

var monitorRecordCmd = &cobra.Command{
	Use:   "record <success> <duration> <phase>",
	Short: "Record a build outcome",
	Long: `Record one build outcome. <success> is true or false, <duration> is
milliseconds or a Go duration such as 1m30s, and <phase> is simple, full or
unknown. Alerts raised by the new record are printed to stderr.`,
	Args: cobra.ExactArgs(3),
	RunE: runMonitorRecord,
}

var monitorReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compose the health report",
	Long: `Compose a 0-100 health score from the success rate, drift and active
alerts, with recommendations. --probes also checks node, npm, git and tsc;
probe results are informational and never change the score.`,
	Args: cobra.NoArgs,
	RunE: runMonitorReport,
}

var (
	recordErrors   []string
	recordWarnings []string
	reportProbes   bool
)

func init() {
	monitorRecordCmd.Flags().StringArrayVar(&recordErrors, "error", nil, "error message to store with the build (repeatable)")
	monitorRecordCmd.Flags().StringArrayVar(&recordWarnings, "warning", nil, "warning message to store with the build (repeatable)")
	monitorReportCmd.Flags().BoolVar(&reportProbes, "probes", false, "run toolchain probes")

	monitorCmd.AddCommand(monitorRecordCmd)
	monitorCmd.AddCommand(monitorReportCmd)
	rootCmd.AddCommand(monitorCmd)
}

func runMonitorRecord(cmd *cobra.Command, args []string) error {
	attempt, err := parseRecordArgs(args)
	if err != nil {
		return err
	}
	attempt.Errors = recordErrors
	attempt.Warnings = recordWarnings

	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	result, err := cc.Monitor().RecordBuildAttempt(cmd.Context(), attempt)
	if err != nil {
		return ux.FormatError(err, "recording build")
	}
	if !attempt.Success {
		cc.Trigger(hooks.EventBuildFailed, map[string]any{
			"phase":      attempt.Phase.String(),
			"errors":     len(attempt.Errors),
			"durationMs": attempt.Duration.Milliseconds(),
		})
	}
	return cc.Output(result)
}

func runMonitorReport(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	return cc.Output(cc.Monitor().Report(cmd.Context(), reportProbes))
}

// parseRecordArgs converts the positional record arguments
func parseRecordArgs(args []string) (domain.BuildAttempt, error) {
	success, err := strconv.ParseBool(args[0])
	if err != nil {
		return domain.BuildAttempt{}, bmerrors.NewInvalidArgumentError("success", args[0], "true or false")
	}

	duration, err := parseDuration(args[1])
	if err != nil {
		return domain.BuildAttempt{}, bmerrors.NewInvalidArgumentError("duration", args[1], "milliseconds or a duration like 1m30s")
	}

	phase, err := domain.NewPhase(args[2])
	if err != nil {
		return domain.BuildAttempt{}, bmerrors.NewInvalidArgumentError("phase", args[2], "simple, full or unknown")
	}

	return domain.BuildAttempt{Success: success, Duration: duration, Phase: phase}, nil
}

func parseDuration(s string) (time.Duration, error) {
	if ms, err := strconv.ParseFloat(s, 64); err == nil {
		if ms < 0 || math.IsNaN(ms) || math.IsInf(ms, 0) {
			return 0, strconv.ErrRange
		}
		return time.Duration(ms * float64(time.Millisecond)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, strconv.ErrRange
	}
	return d, nil
}
