// Package sink turns a rendered surface into output bytes.
//
// # Overview
//
// A "sink" serializes a [scene.Surface] (or, for JSON, the layout result
// behind it) into a final format:
//
//   - SVG: [RenderSVG], the surface in draw order
//   - PNG: [RenderPNG], a native rasterization using golang.org/x/image
//   - JSON: [RenderJSON], the positioned layout for external tools and the
//     visualize round trip
//
// # SVG Output
//
// The root group carries the canvas translation; links come first so node
// circles draw over them:
//
//	svg := sink.RenderSVG(surface, sink.WithTitle("router"), sink.WithIDs())
//
// # PNG Output
//
// [RenderPNG] needs no external tools. Shapes are filled with an
// anti-aliasing vector rasterizer and labels drawn with the embedded Go
// Regular font:
//
//	png, err := sink.RenderPNG(surface, sink.WithScale(2))
//
// Large canvases at high scale are refused rather than allocated.
//
// [scene.Surface]: github.com/matzehuels/stacktree/pkg/render/scene.Surface
package sink
