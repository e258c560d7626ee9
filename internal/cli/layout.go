package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacktree/pkg/layout"
	"github.com/matzehuels/stacktree/pkg/pipeline"
)

// layoutCommand creates the layout command for computing layout documents.
func (c *CLI) layoutCommand() *cobra.Command {
	flags := newRenderFlags()

	cmd := &cobra.Command{
		Use:   "layout [tree.json|tree.toml]",
		Short: "Compute the tidy layout of a module tree",
		Long: `Compute the tidy layout of a module tree.

The layout command positions every node and writes a layout document
(<input>.layout.json, same format as 'render -f json'). The document can be
rendered later with 'visualize' without re-running the layout.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.resolve(cmd, c.ConfigPath)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), inputArg(args), opts, flags.output, flags.noCache)
		},
	}

	flags.registerOutput(cmd, "output file (default: <input>.layout.json)")
	flags.registerLayout(cmd)
	cmd.Flags().StringVar(&flags.opts.Style, "style", flags.opts.Style, "style recorded in the document: classic (default), dark")

	return cmd
}

// runLayout loads the tree, computes the layout and writes the document.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	root, source, err := pipeline.Load(input)
	if err != nil {
		return fmt.Errorf("load tree %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing layout of %s...", source))
	spinner.Start()

	p := newProgress(c.Logger)
	res, mismatches, cacheHit, err := runner.LayoutWithCacheInfo(ctx, root, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	p.done("Laid out %d nodes", len(res.Nodes))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", input) + ".layout.json"
	}

	doc := res.Export()
	doc.Width = opts.Canvas.Width
	doc.Height = opts.Canvas.Height
	doc.Style = opts.Style
	if err := layout.WriteFile(doc, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printMismatches(mismatches, maxListedMismatches)
	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(res.Nodes), len(res.Edges), cacheHit)
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}
