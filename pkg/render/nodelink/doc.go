// Package nodelink renders trees as Graphviz node-link diagrams.
//
// # Overview
//
// This is the alternative to the tidy-tree view: Graphviz's dot engine does
// the layout, left to right, and nodes keep the module/other outline colors
// of the active palette.
//
// # Usage
//
//	dot := nodelink.ToDOT(root, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(dot)
//	png, err := nodelink.RenderPNG(dot, 2.0) // 2x scale
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz], which runs Graphviz in
// process through WebAssembly; no system installation is needed.
package nodelink
