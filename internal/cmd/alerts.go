package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/botifyai2-sketch/buildmon/internal/ux"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List, resolve or clear alerts",
	Long: `Alerts are raised when a build is recorded: three consecutive failures,
a build 50% slower than recent average, high-severity configuration drift,
or new error patterns. Active alerts expire after alerts.expiry (7 days).

Examples:
  buildmon alerts list --format text
  buildmon alerts resolve 3f0c2a9e-...
  buildmon alerts clear --yes
`,
}

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active and resolved alerts",
	Args:  cobra.NoArgs,
	RunE:  runAlertsList,
}

var alertsResolveCmd = &cobra.Command{
	Use:   "resolve <id>",
	Short: "Resolve an active alert",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlertsResolve,
}

var alertsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every active alert",
	Args:  cobra.NoArgs,
	RunE:  runAlertsClear,
}

var alertsClearYes bool

func init() {
	alertsClearCmd.Flags().BoolVarP(&alertsClearYes, "yes", "y", false, "skip the confirmation prompt")

	alertsCmd.AddCommand(alertsListCmd)
	alertsCmd.AddCommand(alertsResolveCmd)
	alertsCmd.AddCommand(alertsClearCmd)
	rootCmd.AddCommand(alertsCmd)
}

func runAlertsList(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	return cc.Output(cc.Monitor().ListAlerts(cmd.Context()))
}

func runAlertsResolve(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	resolved, err := cc.Monitor().ResolveAlert(cmd.Context(), args[0])
	if err != nil {
		return ux.FormatError(err, "resolving alert")
	}
	return cc.Output(resolved)
}

// ClearResult reports how many alerts were dropped
type ClearResult struct {
	Cleared int `json:"cleared"`
}

func runAlertsClear(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	mon := cc.Monitor()
	if !alertsClearYes {
		active := len(mon.ListAlerts(cmd.Context()).Active)
		if active == 0 {
			return cc.Output(ClearResult{})
		}
		ok, err := ux.Confirm(fmt.Sprintf("Clear %d active alert(s)?", active), false)
		if err != nil {
			return err
		}
		if !ok {
			return cc.Output(ClearResult{})
		}
	}

	n, err := mon.ClearAlerts(cmd.Context())
	if err != nil {
		return ux.FormatError(err, "clearing alerts")
	}
	return cc.Output(ClearResult{Cleared: n})
}
