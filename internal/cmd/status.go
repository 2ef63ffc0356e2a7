package cmd

import (
	"github.com/spf13/cobra"
)

var monitorStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize recorded builds",
	Long: `Display build counts, success rate, average duration, the last build and
the number of active alerts.

Examples:
  buildmon monitor status
  buildmon monitor status --format text
`,
	Args: cobra.NoArgs,
	RunE: runMonitorStatus,
}

func init() {
	monitorCmd.AddCommand(monitorStatusCmd)
}

func runMonitorStatus(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	return cc.Output(cc.Monitor().Status(cmd.Context()))
}
