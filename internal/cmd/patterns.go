package cmd

import (
	"github.com/spf13/cobra"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Group recorded errors into recurring patterns",
	Long: `Normalize every error message in the build history (paths, line numbers,
quoted values and numbers are masked) and group them by pattern, most
frequent first. With alerts.persist_patterns enabled the first-seen time of
each pattern survives across runs in patterns.json.`,
	Args: cobra.NoArgs,
	RunE: runPatterns,
}

func init() {
	rootCmd.AddCommand(patternsCmd)
}

func runPatterns(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	return cc.Output(cc.Monitor().Patterns(cmd.Context()))
}
