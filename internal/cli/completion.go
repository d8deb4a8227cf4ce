package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/breadthfirst/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for breadthfirst.

To load completions:

Bash:
  $ source <(breadthfirst completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ breadthfirst completion bash > /etc/bash_completion.d/breadthfirst
  # macOS:
  $ breadthfirst completion bash > $(brew --prefix)/etc/bash_completion.d/breadthfirst

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ breadthfirst completion zsh > "${fpath[1]}/_breadthfirst"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ breadthfirst completion fish | source

  # To load completions for each session, execute once:
  $ breadthfirst completion fish > ~/.config/fish/completions/breadthfirst.fish

PowerShell:
  PS> breadthfirst completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> breadthfirst completion powershell > breadthfirst.ps1
  # and source this file from your PowerShell profile.
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
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// registerLayoutCompletions completes the enumerated layout flags.
func registerLayoutCompletions(cmd *cobra.Command) {
	fixed := func(values ...string) cobra.CompletionFunc {
		return cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp)
	}
	_ = cmd.RegisterFlagCompletionFunc("adjustment", fixed(
		pipeline.AdjustmentOff, pipeline.AdjustmentDetectCycles, pipeline.AdjustmentAssumeDAG, pipeline.AdjustmentAuto))
	_ = cmd.RegisterFlagCompletionFunc("flow", fixed(
		pipeline.FlowTopDown, pipeline.FlowBottomUp, pipeline.FlowLeftRight, pipeline.FlowRightLeft))
	_ = cmd.RegisterFlagCompletionFunc("tie-break", fixed(pipeline.TieBreakID, pipeline.TieBreakLabel))
}
