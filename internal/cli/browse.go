package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stacktree/pkg/pipeline"
)

// browseCommand creates the browse command, an interactive view of the
// computed layout.
func (c *CLI) browseCommand() *cobra.Command {
	flags := newRenderFlags()

	cmd := &cobra.Command{
		Use:   "browse [tree.json|tree.toml]",
		Short: "Browse positioned nodes interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.resolve(cmd, c.ConfigPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			root, _, err := pipeline.Load(inputArg(args))
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			res, err := runner.Layout(ctx, root, opts)
			if err != nil {
				return fmt.Errorf("compute layout: %w", err)
			}

			p := tea.NewProgram(NewNodeListModel(res), tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	flags.registerLayout(cmd)

	return cmd
}
