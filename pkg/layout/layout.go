package layout

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/stacktree/pkg/tree"
)

// PositionedNode is a tree node placed on the canvas.
//
// Parent and Children link into the same [Result]; they are rebuilt on every
// pass and never shared with earlier results.
type PositionedNode struct {
	ID      int     // stable identity assigned by the Engine
	Depth   int     // distance from the root
	Breadth float64 // position among siblings and cousins (screen y)
	X       float64 // depth remapped to pixels (screen x)

	Node     *tree.Node
	Parent   *PositionedNode
	Children []*PositionedNode
}

// Point returns the screen position: depth along x, breadth along y.
func (p *PositionedNode) Point() (x, y float64) { return p.X, p.Breadth }

// Name returns the display name of the underlying node.
func (p *PositionedNode) Name() string { return p.Node.Name }

// Type returns the category tag of the underlying node.
func (p *PositionedNode) Type() string { return p.Node.Type }

// Edge connects a parent to one of its children. Its ID is the child's ID.
type Edge struct {
	ID     int
	Source *PositionedNode
	Target *PositionedNode
}

// Result is the output of one layout pass.
type Result struct {
	// Nodes covers every input node exactly once, breadth-first, root first.
	Nodes []*PositionedNode
	// Edges has one entry per non-root node, in the order of Nodes.
	Edges []Edge
	// Options records the configuration the pass ran with.
	Options Options
}

// Root returns the root node, or nil for an empty result.
func (r Result) Root() *PositionedNode {
	if len(r.Nodes) == 0 {
		return nil
	}
	return r.Nodes[0]
}

// Node returns the positioned node with the given identity.
func (r Result) Node(id int) (*PositionedNode, bool) {
	for _, n := range r.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// Bounds is the extent of a result in screen coordinates.
type Bounds struct {
	MinX, MaxX             float64
	MinBreadth, MaxBreadth float64
}

// Width returns the horizontal (depth axis) extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical (breadth axis) extent.
func (b Bounds) Height() float64 { return b.MaxBreadth - b.MinBreadth }

// Bounds returns the bounding box of all node positions.
func (r Result) Bounds() Bounds {
	if len(r.Nodes) == 0 {
		return Bounds{}
	}
	b := Bounds{
		MinX: math.Inf(1), MaxX: math.Inf(-1),
		MinBreadth: math.Inf(1), MaxBreadth: math.Inf(-1),
	}
	for _, n := range r.Nodes {
		b.MinX = min(b.MinX, n.X)
		b.MaxX = max(b.MaxX, n.X)
		b.MinBreadth = min(b.MinBreadth, n.Breadth)
		b.MaxBreadth = max(b.MaxBreadth, n.Breadth)
	}
	return b
}

// Engine lays out trees and hands out identities.
//
// Identities come from a counter owned by the engine, starting at 1, and are
// keyed by a node's structural path: the names from the root down to it,
// each qualified by its ordinal among equally named siblings. Laying out the
// same tree again, or a structurally identical copy, yields the same
// identities. Independent engines never share counters.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	opts Options
	ids  map[string]int
	next int
}

// NewEngine creates an engine. Zero footprint and separation fields in opts
// are replaced by defaults.
func NewEngine(opts Options) *Engine {
	opts.SetDefaults()
	return &Engine{opts: opts, ids: make(map[string]int)}
}

// Options returns the engine's effective configuration.
func (e *Engine) Options() Options { return e.opts }

// Seen returns how many distinct identities the engine has assigned.
func (e *Engine) Seen() int { return e.next }

// Layout positions every node of root.
//
// root must be a well-formed tree: no cycles and no node reachable twice.
// Malformed input is not detected (see tree.Validate).
func (e *Engine) Layout(root *tree.Node) Result {
	res := Result{Options: e.opts}
	if root == nil {
		return res
	}

	t := tidy{sibling: e.opts.SiblingSeparation, cousin: e.opts.CousinSeparation}
	w := t.run(root)

	unit := e.opts.BreadthUnit()
	stride := e.opts.stride()

	type item struct {
		w      *wnode
		key    string
		parent *PositionedNode
	}
	queue := []item{{w: w, key: pathKey("", root.Name, 0)}}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]

		p := &PositionedNode{
			ID:      e.identity(it.key),
			Depth:   it.w.depth,
			Breadth: it.w.x * unit,
			X:       float64(it.w.depth) * stride,
			Node:    it.w.src,
			Parent:  it.parent,
		}
		res.Nodes = append(res.Nodes, p)
		if it.parent != nil {
			it.parent.Children = append(it.parent.Children, p)
			res.Edges = append(res.Edges, Edge{ID: p.ID, Source: it.parent, Target: p})
		}

		ordinals := make(map[string]int, len(it.w.children))
		for _, c := range it.w.children {
			name := c.src.Name
			queue = append(queue, item{w: c, key: pathKey(it.key, name, ordinals[name]), parent: p})
			ordinals[name]++
		}
	}
	return res
}

// identity returns the identity for key, assigning the next one on first sight.
func (e *Engine) identity(key string) int {
	if id, ok := e.ids[key]; ok {
		return id
	}
	e.next++
	e.ids[key] = e.next
	return e.next
}

// pathKey extends a parent path with one child segment. The unit separator
// keeps names containing "/" or "#" from colliding.
func pathKey(parent, name string, ordinal int) string {
	var b strings.Builder
	b.Grow(len(parent) + len(name) + 4)
	b.WriteString(parent)
	b.WriteByte('\x1f')
	b.WriteString(name)
	b.WriteByte('\x1e')
	b.WriteString(strconv.Itoa(ordinal))
	return b.String()
}

// Layout is a convenience wrapper that lays out root with a fresh engine.
func Layout(root *tree.Node, opts Options) Result {
	return NewEngine(opts).Layout(root)
}
