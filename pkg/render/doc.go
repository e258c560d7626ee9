// Package render draws tree layouts onto a retained scene.
//
// # Overview
//
// Rendering is split in three layers:
//
//   - [scene]: the retained surface (canvas plus ordered elements)
//   - [styles]: node and link appearance (classic, dark)
//   - [sink]: output formats (SVG, PNG, JSON)
//
// A [Renderer] owns nothing but a pointer to a surface and a style. Each call
// to [Renderer.Render] diffs the layout result against what the surface
// already holds, keyed by node identity, and applies the minimal set of adds,
// in-place updates and removals:
//
//	eng := layout.NewEngine(layout.DefaultOptions())
//	r := render.New(scene.NewSurface(scene.DefaultCanvas()), styles.Classic{})
//	r.Render(eng.Layout(root))
//	svg := sink.RenderSVG(r.Surface)
//
// The engine and the surface should live together: identities are only
// stable within one engine.
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage renders the same tree through Graphviz instead of
// the tidy-tree layout.
//
// [scene]: github.com/matzehuels/stacktree/pkg/render/scene
// [styles]: github.com/matzehuels/stacktree/pkg/render/styles
// [sink]: github.com/matzehuels/stacktree/pkg/render/sink
// [nodelink]: github.com/matzehuels/stacktree/pkg/render/nodelink
package render
