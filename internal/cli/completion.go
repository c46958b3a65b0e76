package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for lineage. Person IDs are completed
from the logged-in user's tree, with names as descriptions.

Bash:
  $ source <(lineage completion bash)

Zsh:
  $ lineage completion zsh > "${fpath[1]}/_lineage"

Fish:
  $ lineage completion fish > ~/.config/fish/completions/lineage.fish

PowerShell:
  PS> lineage completion powershell | Out-String | Invoke-Expression
`,
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

// completePersonIDs completes the first argument with person IDs. Names
// are shown as descriptions.
func (c *CLI) completePersonIDs(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	st, _, err := c.openStore(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer st.Close()

	t, err := st.Snapshot()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	prefix := strings.ToLower(toComplete)
	var out []cobra.Completion
	for _, p := range t.Sorted() {
		if strings.HasPrefix(strings.ToLower(p.ID), prefix) {
			out = append(out, cobra.CompletionWithDesc(p.ID, p.FullName()))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completePersonFlags completes relationship flags with person IDs.
func (c *CLI) completePersonFlags(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		_ = cmd.RegisterFlagCompletionFunc(name, func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
			return c.completePersonIDs(cmd, nil, toComplete)
		})
	}
}
