package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/botifyai2-sketch/buildmon/internal/ux"
	"github.com/botifyai2-sketch/buildmon/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print version information including version number, git commit,
build date, Go version, and platform. Pass --format to get the full record
as JSON or YAML.`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

var versionVerbose bool

func init() {
	versionCmd.Flags().BoolVarP(&versionVerbose, "verbose", "v", false, "show detailed version information")

	rootCmd.AddCommand(versionCmd)
}

// versionInfo renders as one line in text mode
type versionInfo struct {
	version.Info
}

func (v versionInfo) RenderText(w io.Writer, _ *ux.Styles) error {
	_, err := fmt.Fprintln(w, v.Info.String())
	return err
}

func runVersion(cmd *cobra.Command, args []string) error {
	cc, err := flagsContext(cmd)
	if err != nil {
		return err
	}
	info := version.GetInfo()

	if cmd.Flags().Changed("format") {
		return cc.Output(versionInfo{info})
	}
	if versionVerbose {
		_, err = fmt.Fprintln(cc.Out, info.String())
		return err
	}
	_, err = fmt.Fprintf(cc.Out, "buildmon %s\n", info.Short())
	return err
}
