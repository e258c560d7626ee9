package render

import (
	"github.com/matzehuels/stacktree/pkg/layout"
	"github.com/matzehuels/stacktree/pkg/render/scene"
	"github.com/matzehuels/stacktree/pkg/render/styles"
)

// Diff reports what one [Renderer.Render] call changed on the surface.
type Diff struct {
	Added   []scene.Key
	Updated []scene.Key
	Removed []scene.Key
}

// Empty reports whether the render left the surface untouched.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Updated) == 0 && len(d.Removed) == 0
}

// Renderer reconciles a persistent surface against layout results.
type Renderer struct {
	Surface *scene.Surface
	Style   styles.Style

	// Fit resizes the surface canvas to the layout bounds on every render.
	Fit bool
}

// New returns a renderer drawing onto surface. A nil style means
// [styles.Classic].
func New(surface *scene.Surface, style styles.Style) *Renderer {
	return &Renderer{Surface: surface, Style: style}
}

// Render brings the surface in line with res, keyed by identity.
//
// Afterwards the surface holds exactly one node group per positioned node and
// one link path per edge. New groups are drawn on top; new links are inserted
// below the first node group so nodes cover incoming links. Retained elements
// whose attributes changed are replaced in place and keep their draw order.
// Elements whose identity is no longer present are removed.
func (r *Renderer) Render(res layout.Result) Diff {
	style := r.Style
	if style == nil {
		style = styles.Classic{}
	}
	s := r.Surface
	if r.Fit && len(res.Nodes) > 0 {
		b := res.Bounds()
		s.Canvas = s.Canvas.Fit(b.MinX, b.MaxX, b.MinBreadth, b.MaxBreadth)
	}

	var diff Diff
	want := make(map[scene.Key]struct{}, len(res.Nodes)+len(res.Edges))

	place := func(el scene.Element, insert func(scene.Element) error) {
		k := el.Key()
		want[k] = struct{}{}
		old, ok := s.Lookup(k)
		switch {
		case !ok:
			if insert(el) == nil {
				diff.Added = append(diff.Added, k)
			}
		case old != el:
			if s.Replace(el) == nil {
				diff.Updated = append(diff.Updated, k)
			}
		}
	}

	for _, n := range res.Nodes {
		g := style.Node(styles.Node{
			ID:   n.ID,
			Name: n.Node.Name,
			Type: n.Node.Type,
			X:    n.X,
			Y:    n.Breadth,
		})
		place(g, s.Append)
	}
	for _, e := range res.Edges {
		p := style.Link(styles.Link{
			ID: e.ID,
			X0: e.Source.X, Y0: e.Source.Breadth,
			X1: e.Target.X, Y1: e.Target.Breadth,
		})
		place(p, func(el scene.Element) error { return s.InsertBefore(el, scene.ClassNode) })
	}

	for _, el := range s.Elements() {
		k := el.Key()
		if _, ok := want[k]; !ok {
			s.Remove(k)
			diff.Removed = append(diff.Removed, k)
		}
	}

	if bg := style.Palette().Background; bg != "" {
		s.Background = bg
	}
	return diff
}

// Draw renders res onto a fresh surface with the given canvas and style.
func Draw(res layout.Result, canvas scene.Canvas, style styles.Style, fit bool) *scene.Surface {
	r := &Renderer{Surface: scene.NewSurface(canvas), Style: style, Fit: fit}
	r.Render(res)
	return r.Surface
}
