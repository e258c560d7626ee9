package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/stacktree/pkg/render/scene"
)

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background string
	title      string
	ids        bool
}

// WithBackground paints a full-canvas rectangle behind the tree, overriding
// the surface's own background.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithTitle adds a <title> element.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// WithIDs tags every element with a data-id attribute carrying its identity.
func WithIDs() SVGOption { return func(r *svgRenderer) { r.ids = true } }

// RenderSVG serializes the surface in draw order.
func RenderSVG(s *scene.Surface, opts ...SVGOption) []byte {
	r := svgRenderer{background: s.Background, title: s.Title}
	for _, opt := range opts {
		opt(&r)
	}

	c := s.Canvas
	tx, ty := c.Translate()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s">`+"\n",
		scene.Num(c.Width), scene.Num(c.Height))
	if r.title != "" {
		buf.WriteString("  <title>")
		escape(&buf, r.title)
		buf.WriteString("</title>\n")
	}
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", attr(r.background))
	}
	fmt.Fprintf(&buf, `  <g transform="translate(%s, %s)">`+"\n", scene.Num(tx), scene.Num(ty))

	for _, el := range s.Elements() {
		switch e := el.(type) {
		case scene.Path:
			r.renderPath(&buf, e)
		case scene.Group:
			r.renderGroup(&buf, e)
		}
	}

	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

func (r svgRenderer) renderPath(buf *bytes.Buffer, p scene.Path) {
	fmt.Fprintf(buf, `    <path class="%s"%s d="%s" style="fill: %s; stroke: %s; stroke-width: %s;"/>`+"\n",
		scene.ClassLink, r.dataID(p.ID), p.D, attr(p.Fill), attr(p.Stroke), attr(p.StrokeWidth))
}

func (r svgRenderer) renderGroup(buf *bytes.Buffer, g scene.Group) {
	fmt.Fprintf(buf, `    <g class="%s"%s transform="%s">`+"\n", scene.ClassNode, r.dataID(g.ID), g.Transform())

	c := g.Circle
	fmt.Fprintf(buf, `      <circle r="%s" style="fill: %s; stroke: %s; stroke-width: %s;"/>`+"\n",
		scene.Num(c.R), attr(c.Fill), attr(c.Stroke), scene.Num(c.StrokeWidth))

	l := g.Label
	style := fmt.Sprintf("fill-opacity: %s;", scene.Num(l.FillOpacity))
	if l.Fill != "" {
		style = fmt.Sprintf("fill: %s; %s", attr(l.Fill), style)
	}
	fmt.Fprintf(buf, `      <text x="%s" dy="%s" text-anchor="%s" style="%s">`,
		scene.Num(l.X), attr(l.DY), attr(l.Anchor), style)
	escape(buf, l.Text)
	buf.WriteString("</text>\n    </g>\n")
}

func (r svgRenderer) dataID(id int) string {
	if !r.ids {
		return ""
	}
	return fmt.Sprintf(` data-id="%d"`, id)
}

func escape(buf *bytes.Buffer, s string) {
	xml.EscapeText(buf, []byte(s))
}

func attr(s string) string {
	var buf bytes.Buffer
	escape(&buf, s)
	return buf.String()
}
