package tree

// Node types recognized by the renderers. The set is open: any other tag is
// accepted and drawn like a page.
const (
	TypeModule = "module"
	TypePage   = "page"
)

// Node is one entry of a rooted hierarchy.
//
// Containment in Children is the only source of truth for parentage. Parent
// is a by-name back-reference carried over from source documents; it is never
// consulted by the layout engine (see [CheckParents]).
type Node struct {
	Name     string  `json:"name" toml:"name"`
	Type     string  `json:"type,omitempty" toml:"type,omitempty"`
	Parent   string  `json:"parent,omitempty" toml:"parent,omitempty"`
	Children []*Node `json:"children,omitempty" toml:"children,omitempty"`
}

// New creates a node with the given children.
func New(name, typ string, children ...*Node) *Node {
	return &Node{Name: name, Type: typ, Children: children}
}

// Module creates a "module" node.
func Module(name string, children ...*Node) *Node { return New(name, TypeModule, children...) }

// Page creates a "page" leaf.
func Page(name string) *Node { return New(name, TypePage) }

// IsModule reports whether the node carries the "module" tag.
func (n *Node) IsModule() bool { return n.Type == TypeModule }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Walk visits n and its descendants in pre-order. fn receives each node and
// its distance from n. Returning false from fn skips that node's subtree.
func Walk(n *Node, fn func(n *Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		walk(c, depth+1, fn)
	}
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n *Node) int {
	count := 0
	Walk(n, func(*Node, int) bool { count++; return true })
	return count
}

// Height returns the largest depth below n (0 for a single node, -1 for nil).
func Height(n *Node) int {
	h := -1
	Walk(n, func(_ *Node, d int) bool { h = max(h, d); return true })
	return h
}

// Leaves returns the leaves of the tree in left-to-right order.
func Leaves(n *Node) []*Node {
	var out []*Node
	Walk(n, func(x *Node, _ int) bool {
		if x.IsLeaf() {
			out = append(out, x)
		}
		return true
	})
	return out
}

// CountByType tallies nodes per type tag. Untagged nodes count under "".
func CountByType(n *Node) map[string]int {
	out := make(map[string]int)
	Walk(n, func(x *Node, _ int) bool { out[x.Type]++; return true })
	return out
}
