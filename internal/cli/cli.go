// Package cli implements the stacktree command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stacktree/pkg/buildinfo"
	"github.com/matzehuels/stacktree/pkg/cache"
	treeio "github.com/matzehuels/stacktree/pkg/io"
	"github.com/matzehuels/stacktree/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "stacktree"

	// builtinBase names output files when no tree file is given.
	builtinBase = "router"
)

// Environment variables that select a shared cache backend.
const (
	envRedisURL = "STACKTREE_REDIS_URL"
	envMongoURI = "STACKTREE_MONGO_URI"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath points at a TOML options file (--config). Flags set on
	// the command line override its values.
	ConfigPath string

	// CacheLocation selects the cache backend (--cache); see cache.Open.
	CacheLocation string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Stacktree draws module/page trees as tidy horizontal diagrams",
		Long: `Stacktree lays out a module/page hierarchy with a tidy-tree algorithm and
renders it as SVG, PNG, a JSON layout document or a Graphviz node-link diagram.

Commands that take a tree file fall back to the built-in router tree when no
file is given.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "options file (TOML)")
	root.PersistentFlags().StringVar(&c.CacheLocation, "cache", "", "cache location: directory, redis://, mongodb:// or none")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	registerValueCompletions(root)

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("cache", "backend", cache.Describe(ch))
	return pipeline.NewRunner(ch, cacheKeyer(), c.Logger), nil
}

// cacheKeyer namespaces keys by release so builds sharing a Redis or Mongo
// backend never read each other's entries.
func cacheKeyer() cache.Keyer {
	return cache.NewScopedKeyer(nil, appName+":"+buildinfo.Version+":")
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, c.cacheLocation())
}

// cacheLocation resolves the cache backend: the --cache flag, then the
// Redis and Mongo environment variables, then the XDG cache directory.
func (c *CLI) cacheLocation() string {
	if c.CacheLocation != "" {
		return c.CacheLocation
	}
	if v := os.Getenv(envRedisURL); v != "" {
		return v
	}
	if v := os.Getenv(envMongoURI); v != "" {
		return v
	}
	dir, err := cacheDir()
	if err != nil {
		return ""
	}
	return dir
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/stacktree/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// inputArg returns the tree source named on the command line, or the
// built-in tree.
func inputArg(args []string) string {
	if len(args) == 0 {
		return treeio.BuiltinName
	}
	return args[0]
}

// basePath derives the output path without extension. An explicit output
// loses a known format extension; otherwise the input name is used with its
// extension (and a ".layout" infix) removed.
func basePath(output, input string) string {
	if output != "" {
		ext := filepath.Ext(output)
		if pipeline.ValidateFormat(strings.TrimPrefix(ext, ".")) == nil {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}
	if input == "" || input == treeio.BuiltinName {
		return builtinBase
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return strings.TrimSuffix(base, ".layout")
}

// =============================================================================
// Options Helpers
// =============================================================================

// renderFlags are the options shared by every command that renders.
type renderFlags struct {
	opts    pipeline.Options
	formats string
	output  string
	noCache bool
}

func newRenderFlags() *renderFlags {
	return &renderFlags{opts: pipeline.DefaultOptions()}
}

// registerLayout binds the layout flags.
func (f *renderFlags) registerLayout(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.opts.VizType, "type", "t", f.opts.VizType, "visualization type: tree (default), nodelink")
	cmd.Flags().BoolVar(&f.opts.StrictParents, "strict-parents", f.opts.StrictParents, "fail when parent back-references disagree with containment")
	cmd.Flags().Float64Var(&f.opts.Layout.LevelStride, "level-stride", f.opts.Layout.LevelStride, "horizontal pixels per tree level")
}

// registerRender binds the render flags.
func (f *renderFlags) registerRender(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, json, dot (comma-separated)")
	cmd.Flags().StringVar(&f.opts.Style, "style", f.opts.Style, "visual style: classic (default), dark")
	cmd.Flags().BoolVar(&f.opts.Fit, "fit", f.opts.Fit, "size the canvas to the drawing")
	cmd.Flags().Float64Var(&f.opts.Scale, "scale", f.opts.Scale, "PNG scale factor")
	cmd.Flags().StringVar(&f.opts.Title, "title", f.opts.Title, "SVG document title")
	cmd.Flags().BoolVar(&f.opts.Detailed, "detailed", f.opts.Detailed, "show node types (nodelink)")
}

// registerOutput binds the output and cache flags.
func (f *renderFlags) registerOutput(cmd *cobra.Command, usage string) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", usage)
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// flagOverrides maps flag names to the option they set.
var flagOverrides = map[string]func(dst *pipeline.Options, src pipeline.Options){
	"type":           func(d *pipeline.Options, s pipeline.Options) { d.VizType = s.VizType },
	"strict-parents": func(d *pipeline.Options, s pipeline.Options) { d.StrictParents = s.StrictParents },
	"level-stride":   func(d *pipeline.Options, s pipeline.Options) { d.Layout.LevelStride = s.Layout.LevelStride },
	"style":          func(d *pipeline.Options, s pipeline.Options) { d.Style = s.Style },
	"fit":            func(d *pipeline.Options, s pipeline.Options) { d.Fit = s.Fit },
	"scale":          func(d *pipeline.Options, s pipeline.Options) { d.Scale = s.Scale },
	"title":          func(d *pipeline.Options, s pipeline.Options) { d.Title = s.Title },
	"detailed":       func(d *pipeline.Options, s pipeline.Options) { d.Detailed = s.Detailed },
}

// resolve loads the --config file, if any, and applies the flags the user
// set on top of it. The result is validated.
func (f *renderFlags) resolve(cmd *cobra.Command, configPath string) (pipeline.Options, error) {
	opts := f.opts
	if configPath != "" {
		cfg, err := pipeline.LoadOptions(configPath)
		if err != nil {
			return pipeline.Options{}, err
		}
		for name, apply := range flagOverrides {
			if fl := cmd.Flags().Lookup(name); fl != nil && fl.Changed {
				apply(&cfg, f.opts)
			}
		}
		opts = cfg
	}
	if f.formats != "" || len(opts.Formats) == 0 {
		opts.Formats = parseFormats(f.formats)
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return parts
}
