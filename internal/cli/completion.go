package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/billmal071/bookfinder/internal/config"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for bookfinder.

To load completions:

Bash:
  $ source <(bookfinder completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ bookfinder completion bash > /etc/bash_completion.d/bookfinder
  # macOS:
  $ bookfinder completion bash > /usr/local/etc/bash_completion.d/bookfinder

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it.  You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ bookfinder completion zsh > "${fpath[1]}/_bookfinder"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ bookfinder completion fish | source

  # To load completions for each session, execute once:
  $ bookfinder completion fish > ~/.config/fish/completions/bookfinder.fish

PowerShell:
  PS> bookfinder completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> bookfinder completion powershell > bookfinder.ps1
  # and source this file from your PowerShell profile.`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

// completeConfigKeys completes the first argument with known config keys
func completeConfigKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return config.Keys(), cobra.ShellCompDirectiveNoFileComp
}
