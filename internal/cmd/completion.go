package cmd

import (
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `To load completions:

Bash:
  $ source <(buildmon completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ buildmon completion bash > /etc/bash_completion.d/buildmon
  # macOS:
  $ buildmon completion bash > $(brew --prefix)/etc/bash_completion.d/buildmon

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it.  You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ buildmon completion zsh > "${fpath[1]}/_buildmon"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ buildmon completion fish | source

  # To load completions for each session, execute once:
  $ buildmon completion fish > ~/.config/fish/completions/buildmon.fish

PowerShell:
  PS> buildmon completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> buildmon completion powershell > buildmon.ps1
  # and source this file from your PowerShell profile.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE:                  runCompletion,
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(cmd *cobra.Command, args []string) error {
	switch args[0] {
	case "bash":
		return rootCmd.GenBashCompletionV2(cmd.OutOrStdout(), true)
	case "zsh":
		return rootCmd.GenZshCompletion(cmd.OutOrStdout())
	case "fish":
		return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
	case "powershell":
		return rootCmd.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
	}
	return nil
}
