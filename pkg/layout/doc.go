// Package layout computes tidy-tree positions for a [tree.Node] hierarchy.
//
// # Algorithm
//
// The engine implements the linear-time Reingold–Tilford variant described
// by Buchheim, Jünger and Leipert. Each level is one depth step; children
// keep their input order; a parent sits centered over its first and last
// child; and adjacent nodes on a contour are kept at least
// [Options.SiblingSeparation] units apart when they share a parent and
// [Options.CousinSeparation] units apart when they do not.
//
// # Coordinates
//
// The result is oriented left to right. Breadth (screen y) is the layout
// value times [Options.BreadthUnit], with the root at 0. The screen x of a
// node is depth × [Options.LevelStride], independent of breadth.
//
//	eng := layout.NewEngine(layout.DefaultOptions())
//	res := eng.Layout(root)
//	for _, n := range res.Nodes {
//	    fmt.Println(n.ID, n.Name(), n.X, n.Breadth)
//	}
//
// # Identity
//
// Every [PositionedNode] carries an ID that is stable across passes of the
// same [Engine]. Renderers reconcile retained visuals by that ID, so an
// engine should live as long as the surface it feeds.
//
// [tree.Node]: github.com/matzehuels/stacktree/pkg/tree.Node
package layout
