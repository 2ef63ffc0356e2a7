package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/botifyai2-sketch/buildmon/internal/drift"
	"github.com/botifyai2-sketch/buildmon/internal/hooks"
	"github.com/botifyai2-sketch/buildmon/internal/ux"
	"github.com/botifyai2-sketch/buildmon/internal/version"
)

var monitorDriftCmd = &cobra.Command{
	Use:   "drift",
	Short: "Detect configuration drift",
	Long: `Compare the current configuration fingerprints against the last successful
build, or against the saved baseline with --baseline.

Examples:
  # Drift since the last good build
  buildmon monitor drift

  # Drift since 'buildmon baseline save', failing CI on any change
  buildmon monitor drift --baseline --fail-on-drift

  # Also write a SARIF report for code scanning
  buildmon monitor drift --sarif drift.sarif
`,
	Args: cobra.NoArgs,
	RunE: runMonitorDrift,
}

var (
	driftFromBaseline bool
	driftSARIFPath    string
	driftFailOnDrift  bool
)

func init() {
	monitorDriftCmd.Flags().BoolVar(&driftFromBaseline, "baseline", false, "compare against the saved baseline instead of the last successful build")
	monitorDriftCmd.Flags().StringVar(&driftSARIFPath, "sarif", "", "write a SARIF 2.1.0 report to this path")
	monitorDriftCmd.Flags().BoolVar(&driftFailOnDrift, "fail-on-drift", false, "exit with code 4 when drift is found")

	monitorCmd.AddCommand(monitorDriftCmd)
}

func runMonitorDrift(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	report, err := cc.Monitor().Drift(cmd.Context(), driftFromBaseline)
	if err != nil {
		return ux.FormatError(err, "detecting drift")
	}

	if driftSARIFPath != "" {
		if err := drift.SaveSARIF(report.ToSARIF(version.GetInfo().Version), driftSARIFPath); err != nil {
			return ux.FormatError(err, "writing SARIF report")
		}
		cc.Logger.Info("SARIF report written", "path", driftSARIFPath)
	}

	if report.HasDrift {
		s := report.Summary()
		cc.Trigger(hooks.EventDriftDetected, map[string]any{
			"changes":  s.TotalChanges,
			"high":     s.High,
			"baseline": driftFromBaseline,
		})
	}

	if err := cc.Output(report); err != nil {
		return err
	}

	if driftFailOnDrift && report.HasDrift {
		s := report.Summary()
		return fmt.Errorf("%w: %d change(s), %d high", drift.ErrDriftDetected, s.TotalChanges, s.High)
	}
	return nil
}
