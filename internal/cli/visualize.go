package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacktree/pkg/errors"
	"github.com/matzehuels/stacktree/pkg/layout"
	"github.com/matzehuels/stacktree/pkg/pipeline"
)

// visualizeCommand creates the visualize command for rendering a layout
// document.
func (c *CLI) visualizeCommand() *cobra.Command {
	flags := newRenderFlags()

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Render a computed layout document",
		Long: `Render a computed layout document.

The visualize command takes a layout.json file (produced by 'layout' or
'render -f json') and renders it. The document holds every position, so
this step only draws.

The style recorded in the document is used unless --style is given.

Use 'render' as a shortcut to go directly from a tree file to visual output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.resolve(cmd, c.ConfigPath)
			if err != nil {
				return err
			}
			doc, err := layout.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "load layout %s", args[0])
			}
			if !cmd.Flags().Changed("style") && doc.Style != "" {
				opts.Style = doc.Style
			}
			if doc.Width > 0 && doc.Height > 0 {
				opts.Canvas.Width, opts.Canvas.Height = doc.Width, doc.Height
			}
			return c.runVisualize(cmd.Context(), args[0], doc, opts, flags.output, flags.noCache)
		},
	}

	flags.registerOutput(cmd, "output file (single format) or base path (multiple)")
	flags.registerRender(cmd)
	cmd.Flags().StringVarP(&flags.opts.VizType, "type", "t", flags.opts.VizType, "visualization type: tree (default), nodelink")

	return cmd
}

// runVisualize renders the document and writes the artifacts.
func (c *CLI) runVisualize(ctx context.Context, input string, doc layout.Document, opts pipeline.Options, output string, noCache bool) error {
	res, err := doc.Result()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "layout document %s", input)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", opts.VizType))
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, res, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()

	return writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		nodes:     len(res.Nodes),
		edges:     len(res.Edges),
		cacheHit:  cacheHit,
	})
}
