package cmd

import (
	"github.com/spf13/cobra"

	"github.com/botifyai2-sketch/buildmon/internal/ux"
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Save or show the configuration baseline",
	Long: `A baseline is a saved configuration snapshot that 'buildmon monitor drift
--baseline' compares against, independent of the build history.

Examples:
  buildmon baseline save
  buildmon baseline show --format yaml
`,
}

var baselineSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the current configuration as the baseline",
	Args:  cobra.NoArgs,
	RunE:  runBaselineSave,
}

var baselineShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved baseline",
	Args:  cobra.NoArgs,
	RunE:  runBaselineShow,
}

func init() {
	baselineCmd.AddCommand(baselineSaveCmd)
	baselineCmd.AddCommand(baselineShowCmd)
	rootCmd.AddCommand(baselineCmd)
}

func runBaselineSave(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	snap, err := cc.Monitor().SaveBaseline(cmd.Context())
	if err != nil {
		return ux.FormatError(err, "saving baseline")
	}
	return cc.Output(snap)
}

func runBaselineShow(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	snap, err := cc.Monitor().LoadBaseline(cmd.Context())
	if err != nil {
		return ux.FormatError(err, "loading baseline")
	}
	return cc.Output(snap)
}
