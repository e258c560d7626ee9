package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stacktree/pkg/render/styles"
	"github.com/matzehuels/stacktree/pkg/tree"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the node type under each label.
	Detailed bool
	// Palette colors node outlines and edges. Zero fields use the classic
	// palette.
	Palette styles.Palette
}

// ToDOT converts a tree to Graphviz DOT format, laid out left to right like
// the tidy-tree view. Graphviz node IDs are assigned in pre-order ("n1",
// "n2", ...) because display names need not be unique.
func ToDOT(root *tree.Node, opts Options) string {
	p := styles.ClassicPalette.Merge(opts.Palette)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=false, fontsize=14, penwidth=3];\n")
	fmt.Fprintf(&buf, "  edge [arrowhead=none, penwidth=2, color=%q];\n", p.Link)
	buf.WriteString("  ranksep=1.2;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	if root == nil {
		buf.WriteString("}\n")
		return buf.String()
	}

	ids := make(map[*tree.Node]string)
	var edges []string
	tree.Walk(root, func(n *tree.Node, _ int) bool {
		id := "n" + strconv.Itoa(len(ids)+1)
		ids[n] = id
		fmt.Fprintf(&buf, "  %s [%s];\n", id, strings.Join(fmtAttrs(n, p, opts.Detailed), ", "))
		return true
	})
	tree.Walk(root, func(n *tree.Node, _ int) bool {
		for _, c := range n.Children {
			edges = append(edges, fmt.Sprintf("  %s -> %s;\n", ids[n], ids[c]))
		}
		return true
	})

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n *tree.Node, p styles.Palette, detailed bool) []string {
	label := n.Name
	if detailed && n.Type != "" {
		label += "\n" + n.Type
	}
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("color=%q", p.Stroke(n.Type)),
		fmt.Sprintf("fillcolor=%q", p.NodeFill),
	}
	if p.Label != "" {
		attrs = append(attrs, fmt.Sprintf("fontcolor=%q", p.Label))
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	out, err := render(dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz. A scale of 2.0
// doubles the default 72 DPI.
func RenderPNG(dot string, scale float64) ([]byte, error) {
	if scale > 0 && scale != 1 {
		dot = withDPI(dot, 72*scale)
	}
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// withDPI inserts a graph-level dpi attribute after the opening brace.
func withDPI(dot string, dpi float64) string {
	i := strings.Index(dot, "{")
	if i < 0 {
		return dot
	}
	return dot[:i+1] + fmt.Sprintf("\n  dpi=%s;", strconv.FormatFloat(dpi, 'f', -1, 64)) + dot[i+1:]
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
