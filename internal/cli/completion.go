package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacktree/pkg/pipeline"
	"github.com/matzehuels/stacktree/pkg/render/styles"
)

// completionCommand prints a shell completion script.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion bash|zsh|fish|powershell",
		Short: "Print a shell completion script",
		Long: `Print a completion script for stacktree. Besides commands and flags it
completes --style, --format and --type values.

  bash:        source <(stacktree completion bash)
  zsh:         stacktree completion zsh > "${fpath[1]}/_stacktree"
  fish:        stacktree completion fish > ~/.config/fish/completions/stacktree.fish
  powershell:  stacktree completion powershell | Out-String | Invoke-Expression`,
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
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// flagValues lists the fixed choices of value flags shared by several
// commands.
var flagValues = map[string][]string{
	"style":  styles.Names(),
	"format": pipeline.ValidFormats,
	"type":   pipeline.ValidVizTypes,
}

// registerValueCompletions walks the command tree and attaches value
// completion to every flag named in flagValues.
func registerValueCompletions(cmd *cobra.Command) {
	for name, values := range flagValues {
		if cmd.Flags().Lookup(name) == nil {
			continue
		}
		_ = cmd.RegisterFlagCompletionFunc(name, completeList(name, values))
	}
	for _, sub := range cmd.Commands() {
		registerValueCompletions(sub)
	}
}

// completeList completes one value. For --format, already typed
// comma-separated values are kept as a prefix.
func completeList(name string, values []string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		prefix := ""
		if name == "format" {
			if i := strings.LastIndex(toComplete, ","); i >= 0 {
				prefix = toComplete[:i+1]
			}
		}
		var out []string
		for _, v := range values {
			if strings.HasPrefix(prefix+v, toComplete) {
				out = append(out, prefix+v)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}
