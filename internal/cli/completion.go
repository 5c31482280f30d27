package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dynalayout/pkg/pipeline"
)

// completionCommand prints a shell completion script to stdout.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for dynalayout.

Completions cover subcommands, flags and the values of the layout flags
(--policy, --placement, --cooling, --mass, --initial, --format, --cache).

  bash:        source <(dynalayout completion bash)
  zsh:         dynalayout completion zsh > "${fpath[1]}/_dynalayout"
  fish:        dynalayout completion fish > ~/.config/fish/completions/dynalayout.fish
  powershell:  dynalayout completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}

// flagValues lists the fixed values a flag accepts, for completion.
var flagValues = map[string][]string{
	"policy":    pipeline.ValidPolicies,
	"mass":      pipeline.ValidMasses,
	"placement": pipeline.ValidPlacements,
	"cooling":   pipeline.ValidCoolings,
	"initial":   pipeline.ValidInitials,
	"format":    pipeline.ValidFormats,
	"cache":     {"file", "memory", "redis"},
}

// registerValueCompletions attaches value completion to every flag of cmd
// named in flagValues. --format takes a comma-separated list, so values
// already typed are kept as a prefix.
func registerValueCompletions(cmd *cobra.Command) {
	for name, values := range flagValues {
		if cmd.Flags().Lookup(name) == nil {
			continue
		}
		_ = cmd.RegisterFlagCompletionFunc(name, completeValues(name == "format", values))
	}
}

func completeValues(list bool, values []string) cobra.CompletionFunc {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		prefix := ""
		if i := strings.LastIndex(toComplete, ","); list && i >= 0 {
			prefix = toComplete[:i+1]
		}
		out := make([]string, 0, len(values))
		for _, v := range values {
			if strings.HasPrefix(prefix+v, toComplete) {
				out = append(out, prefix+v)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}
