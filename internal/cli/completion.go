package cli

import (
	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/sankey/pkg/io"
)

// graphExtensions are the input file extensions offered by shell completion.
var graphExtensions = []string{"json", "yaml", "yml"}

func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for sankey.

Completions offer .json, .yaml and .yml files for layout and inspect, and the
known formats for --format.

  $ source <(sankey completion bash)
  $ sankey completion zsh > "${fpath[1]}/_sankey"
  $ sankey completion fish > ~/.config/fish/completions/sankey.fish
  PS> sankey completion powershell | Out-String | Invoke-Expression`,
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
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// completeGraphFiles offers graph input files for the first argument only.
func completeGraphFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return graphExtensions, cobra.ShellCompDirectiveFilterFileExt
}

// completeFormats offers the layout output formats.
func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{string(pkgio.FormatJSON), string(pkgio.FormatYAML)}, cobra.ShellCompDirectiveNoFileComp
}
