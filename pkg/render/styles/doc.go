// Package styles defines how tree nodes and links look.
//
// A [Style] maps a positioned node to a [scene.Group] and a parent-child link
// to a [scene.Path]. Geometry is fixed (radius 10 circles, labels one rem
// above the node, 2px links); styles differ only in color.
//
// Outline color is a two-way branch on the node type: "module" nodes use
// [Palette.Module], every other type, including empty or unknown ones, uses
// [Palette.Other].
//
//	style, err := styles.Lookup("dark", styles.Palette{Module: "teal"})
//
// [scene.Group]: github.com/matzehuels/stacktree/pkg/render/scene.Group
// [scene.Path]: github.com/matzehuels/stacktree/pkg/render/scene.Path
package styles
