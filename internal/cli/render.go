package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	treeio "github.com/matzehuels/stacktree/pkg/io"
	"github.com/matzehuels/stacktree/pkg/pipeline"
)

// maxListedMismatches caps the parent mismatches echoed to the terminal.
const maxListedMismatches = 5

// renderCommand creates the render command: tree file to visual output in
// one step.
func (c *CLI) renderCommand() *cobra.Command {
	flags := newRenderFlags()

	cmd := &cobra.Command{
		Use:   "render [tree.json|tree.toml]",
		Short: "Lay out and render a module tree",
		Long: `Lay out and render a module tree.

The render command reads a tree document (JSON or TOML), computes the tidy
layout and writes every requested format next to the input, or to -o.
Without an argument the built-in router tree is rendered.

Formats:
  svg   the tree diagram (default)
  png   the same drawing rasterized
  json  the layout document, readable by 'visualize'
  dot   Graphviz source

Parent back-references that disagree with the tree structure are reported
and ignored; --strict-parents turns them into an error.

Results are cached; see 'stacktree cache'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.resolve(cmd, c.ConfigPath)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), inputArg(args), opts, flags.output, flags.noCache)
		},
	}

	flags.registerOutput(cmd, "output file (single format) or base path (multiple)")
	flags.registerLayout(cmd)
	flags.registerRender(cmd)

	return cmd
}

// runRender loads the tree, runs the pipeline and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	logger := loggerFromContext(ctx)

	root, source, err := pipeline.Load(input)
	if err != nil {
		return fmt.Errorf("load tree %s: %w", input, err)
	}
	logger.Debug("loaded tree", "source", source)

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", source))
	spinner.Start()

	p := newProgress(logger)
	result, err := runner.Execute(ctx, root, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	p.done("Rendered %d nodes as %s", result.Stats.NodeCount, strings.Join(opts.Formats, ","))

	if spinner.Cancelled() {
		return ctx.Err()
	}

	printMismatches(result.Mismatches, maxListedMismatches)
	if err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		nodes:     result.Stats.NodeCount,
		edges:     result.Stats.EdgeCount,
		cacheHit:  result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit,
	}); err != nil {
		return err
	}

	printNewline()
	printNextStep("Browse", commandFor("browse", input))
	return nil
}

// artifactWriteParams describes rendered output to write to disk.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	nodes     int
	edges     int
	cacheHit  bool
}

// writeArtifacts writes one file per format. A single format with an
// explicit output path is written there verbatim; otherwise files are named
// <base>.<format>.
func writeArtifacts(p artifactWriteParams) error {
	base := basePath(p.output, p.input)
	single := len(p.formats) == 1 && p.output != ""

	paths := make([]string, 0, len(p.formats))
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			return fmt.Errorf("no %s output was produced", format)
		}
		path := base + "." + format
		if single {
			path = p.output
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	printSuccess("Rendered %d file(s)", len(paths))
	for _, path := range paths {
		printFile(path)
	}
	printStats(p.nodes, p.edges, p.cacheHit)
	return nil
}

// commandFor builds a suggested command line for input.
func commandFor(sub, input string) string {
	if input == treeio.BuiltinName {
		return appName + " " + sub
	}
	return appName + " " + sub + " " + input
}
