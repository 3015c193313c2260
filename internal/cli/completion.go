package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand creates the completion command. Scripts go to the
// command's stdout so they can be piped or redirected directly.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <bash|zsh|fish|powershell>",
		Short: "Generate a shell completion script",
		Long: `Generate a shell completion script for treeline.

The script is written to stdout. Load it in the current shell:

  bash:       source <(treeline completion bash)
  zsh:        treeline completion zsh > "${fpath[1]}/_treeline"
  fish:       treeline completion fish | source
  powershell: treeline completion powershell | Out-String | Invoke-Expression

For zsh, compinit must be enabled (autoload -U compinit; compinit in
~/.zshrc). To persist bash completions, redirect the script into your
distribution's bash_completion.d directory.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
