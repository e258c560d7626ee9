package pipeline

import (
	"fmt"

	"github.com/matzehuels/stacktree/pkg/errors"
	"github.com/matzehuels/stacktree/pkg/layout"
	"github.com/matzehuels/stacktree/pkg/render"
	"github.com/matzehuels/stacktree/pkg/render/nodelink"
	"github.com/matzehuels/stacktree/pkg/render/scene"
	"github.com/matzehuels/stacktree/pkg/render/sink"
	"github.com/matzehuels/stacktree/pkg/render/styles"
)

// RenderFromLayout renders a layout to every format in opts.Formats.
//
// The tree view draws the layout onto a fresh surface. The node-link view
// hands the tree to Graphviz instead; its "json" output is still the tidy
// layout document.
func RenderFromLayout(res layout.Result, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	if res.Root() == nil {
		return nil, errors.New(errors.ErrCodeInvalidTree, "nothing to render: layout is empty")
	}
	style, err := styles.Lookup(opts.Style, opts.Palette)
	if err != nil {
		return nil, err
	}
	if opts.IsNodelink() {
		return renderNodelink(res, style, opts)
	}
	return renderTree(res, style, opts)
}

// renderTree generates tidy-tree outputs from one surface.
func renderTree(res layout.Result, style styles.Style, opts Options) (map[string][]byte, error) {
	surface := Draw(res, style, opts)
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(surface)
		case FormatPNG:
			data, err = sink.RenderPNG(surface, sink.WithScale(opts.Scale))
		case FormatJSON:
			data, err = sink.RenderJSON(res, surface.Canvas, sink.WithJSONStyle(style.Name()))
		case FormatDOT:
			data = []byte(toDOT(res, style, opts))
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported tree format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// renderNodelink generates Graphviz outputs.
func renderNodelink(res layout.Result, style styles.Style, opts Options) (map[string][]byte, error) {
	dot := toDOT(res, style, opts)
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = nodelink.RenderSVG(dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(dot, opts.Scale)
		case FormatDOT:
			data = []byte(dot)
		case FormatJSON:
			data, err = sink.RenderJSON(res, opts.Canvas, sink.WithJSONStyle(style.Name()))
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported nodelink format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// Draw renders a layout onto a new surface using the canvas, fit and title
// settings from opts.
func Draw(res layout.Result, style styles.Style, opts Options) *scene.Surface {
	opts.SetRenderDefaults()
	s := render.Draw(res, opts.Canvas, style, opts.Fit)
	s.Title = opts.Title
	return s
}

func toDOT(res layout.Result, style styles.Style, opts Options) string {
	return nodelink.ToDOT(res.Root().Node, nodelink.Options{
		Detailed: opts.Detailed,
		Palette:  style.Palette(),
	})
}

// RenderFromDocument renders a serialized layout, as written by the json
// format or `stacktree layout`. The document's style applies when opts
// leaves Style empty.
func RenderFromDocument(doc layout.Document, opts Options) (map[string][]byte, error) {
	res, err := doc.Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "layout document")
	}
	if opts.Style == "" {
		opts.Style = doc.Style
	}
	return RenderFromLayout(res, opts)
}
