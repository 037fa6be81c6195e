package cli

import (
	"github.com/spf13/cobra"

	"github.com/billmal071/bookfinder/internal/shell"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start a line-oriented search prompt",
	Long: `Start an interactive prompt that searches on every line you enter.

Commands inside the prompt:
  :show <n|id>   show details for a result
  :help          list commands
  :quit          exit (also ctrl+d)`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession()
		if err != nil {
			return err
		}
		return shell.Run(cmd.Context(), sess, cmd.OutOrStdout())
	},
}
