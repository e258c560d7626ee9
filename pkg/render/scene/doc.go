// Package scene is a small retained-mode scene graph.
//
// A [Surface] holds an ordered list of [Element] values keyed by class and
// layout identity. Elements are plain comparable structs ([Group] for nodes,
// [Path] for links), so callers can diff a desired element against the
// retained one with ==. Sinks in the sink package turn a surface into SVG,
// PNG or other formats.
package scene
