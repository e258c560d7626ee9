// Package pipeline runs the load → layout → render pipeline for stacktree.
//
// The CLI and the render server both go through this package so that
// defaults, validation and caching behave the same everywhere.
//
// # Stages
//
//  1. Load: read a tree document, or the embedded router tree ([Load]).
//  2. Layout: validate the tree and compute the tidy layout ([ComputeLayout]).
//  3. Render: draw the layout and serialize it to the requested formats
//     ([RenderFromLayout]).
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.Formats = []string{pipeline.FormatSVG, pipeline.FormatPNG}
//	result, err := runner.Execute(ctx, root, opts)
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts[pipeline.FormatSVG]
//
// Options can also be read from a TOML file with [LoadOptions].
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stacktree/pkg/cache"
	"github.com/matzehuels/stacktree/pkg/errors"
	"github.com/matzehuels/stacktree/pkg/layout"
	"github.com/matzehuels/stacktree/pkg/render/scene"
	"github.com/matzehuels/stacktree/pkg/render/styles"
	"github.com/matzehuels/stacktree/pkg/tree"
)

// =============================================================================
// Default Values
// =============================================================================

// Visualization types.
const (
	VizTypeTree     = "tree"
	VizTypeNodelink = "nodelink"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

const (
	// DefaultVizType is the tidy-tree view.
	DefaultVizType = VizTypeTree

	// DefaultStyle is the classic white-on-steelblue look.
	DefaultStyle = styles.NameClassic

	// DefaultScale is the PNG pixel density.
	DefaultScale = 2.0

	// MaxScale bounds PNG density for untrusted requests.
	MaxScale = 8.0
)

// ValidFormats is the set of supported output formats.
var ValidFormats = []string{FormatSVG, FormatPNG, FormatJSON, FormatDOT}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = []string{VizTypeTree, VizTypeNodelink}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one pipeline run. It decodes from JSON (server requests)
// and TOML (config files).
type Options struct {
	// Layout options
	VizType string         `json:"viz_type,omitempty" toml:"viz_type"`
	Layout  layout.Options `json:"layout" toml:"layout"`

	// StrictParents rejects trees whose parent back-references disagree
	// with containment. By default mismatches are only logged.
	StrictParents bool `json:"strict_parents,omitempty" toml:"strict_parents"`

	// Render options
	Formats  []string       `json:"formats,omitempty" toml:"formats"`
	Style    string         `json:"style,omitempty" toml:"style"`
	Palette  styles.Palette `json:"palette,omitempty" toml:"palette"`
	Canvas   scene.Canvas   `json:"canvas" toml:"canvas"`
	Fit      bool           `json:"fit,omitempty" toml:"fit"`
	Scale    float64        `json:"scale,omitempty" toml:"scale"`
	Title    string         `json:"title,omitempty" toml:"title"`
	Detailed bool           `json:"detailed,omitempty" toml:"detailed"` // nodelink: show node types

	// Runtime options (not serialized)
	Refresh bool        `json:"-" toml:"-"` // skip cache reads
	Logger  *log.Logger `json:"-" toml:"-"`

	validated bool
}

// DefaultOptions returns options with every default filled in except the
// logger, which the runner supplies.
func DefaultOptions() Options {
	opts := Options{}
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()
	opts.Logger = nil
	return opts
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Tree is the input tree.
	Tree *tree.Node

	// TreeHash is the content hash of the tree document.
	TreeHash string

	// Layout is the positioned tree.
	Layout layout.Result

	// Mismatches lists parent back-references that disagree with containment.
	Mismatches []tree.Mismatch

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	Height     int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	LayoutHit bool // layout came from cache
	RenderHit bool // every artifact came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is supported. Formats are
// case-sensitive.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(ValidFormats, ", "))
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is registered.
func ValidateStyle(style string) error {
	if !slices.Contains(styles.Names(), style) {
		return errors.New(errors.ErrCodeInvalidStyle,
			"invalid style: %q (must be one of: %s)", style, strings.Join(styles.Names(), ", "))
	}
	return nil
}

// ValidateVizType checks that a visualization type is supported.
func ValidateVizType(vizType string) error {
	if !slices.Contains(ValidVizTypes, vizType) {
		return errors.New(errors.ErrCodeInvalidVizType,
			"invalid viz_type: %q (must be one of: %s)", vizType, strings.Join(ValidVizTypes, ", "))
	}
	return nil
}

// ValidateLayout rejects negative spacing.
func ValidateLayout(o layout.Options) error {
	fields := []struct {
		name string
		v    float64
	}{
		{"node_width", o.NodeWidth},
		{"node_height", o.NodeHeight},
		{"horizontal_separation", o.HorizontalSeparation},
		{"vertical_separation", o.VerticalSeparation},
		{"level_stride", o.LevelStride},
		{"sibling_separation", o.SiblingSeparation},
		{"cousin_separation", o.CousinSeparation},
	}
	for _, f := range fields {
		if f.v < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "layout.%s must not be negative (got %g)", f.name, f.v)
		}
	}
	return nil
}

// ValidateCanvas rejects canvases without a drawing area.
func ValidateCanvas(c scene.Canvas) error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "canvas must have a positive size (got %gx%g)", c.Width, c.Height)
	}
	m := c.Margin
	if m.Top < 0 || m.Right < 0 || m.Bottom < 0 || m.Left < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "canvas margins must not be negative")
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and validates everything. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation. A zero
// layout block becomes the stock configuration; a partial one keeps its
// LevelStride, where zero is meaningful.
func (o *Options) SetLayoutDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if o.Layout == (layout.Options{}) {
		o.Layout = layout.DefaultOptions()
	} else {
		o.Layout.SetDefaults()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	return ValidateLayout(o.Layout)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Canvas == (scene.Canvas{}) {
		o.Canvas = scene.DefaultCanvas()
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	o.Style = strings.ToLower(o.Style)
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateStyle(o.Style); err != nil {
		return err
	}
	if err := ValidateCanvas(o.Canvas); err != nil {
		return err
	}
	if o.Scale < 0 || o.Scale > MaxScale {
		return errors.New(errors.ErrCodeInvalidConfig, "scale must be in (0, %g] (got %g)", MaxScale, o.Scale)
	}
	return nil
}

// IsNodelink reports whether this is a Graphviz node-link visualization.
func (o *Options) IsNodelink() bool {
	return o.VizType == VizTypeNodelink
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		VizType:              o.VizType,
		NodeWidth:            o.Layout.NodeWidth,
		NodeHeight:           o.Layout.NodeHeight,
		HorizontalSeparation: o.Layout.HorizontalSeparation,
		VerticalSeparation:   o.Layout.VerticalSeparation,
		LevelStride:          o.Layout.LevelStride,
		SiblingSeparation:    o.Layout.SiblingSeparation,
		CousinSeparation:     o.Layout.CousinSeparation,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:  format,
		VizType: o.VizType,
		Style:   o.Style,
		Palette: fmt.Sprintf("%+v|title=%q|detailed=%t", o.Palette, o.Title, o.Detailed),
		Canvas:  fmt.Sprintf("%+v", o.Canvas),
		Fit:     o.Fit,
		Scale:   o.Scale,
	}
}
