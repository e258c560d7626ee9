package layout

import "github.com/matzehuels/stacktree/pkg/tree"

// wnode is the working record of the Buchheim/Walker tidy-tree pass.
// Field names follow the paper: prelim (z), mod (m), change (c), shift (s),
// thread (t) and ancestor (a).
type wnode struct {
	src      *tree.Node
	parent   *wnode
	children []*wnode
	index    int // position among siblings
	depth    int

	prelim, mod     float64
	change, shift   float64
	thread          *wnode
	ancestor        *wnode
	defaultAncestor *wnode // only meaningful on parents

	x float64 // final breadth in layout units
}

// tidy is one linear-time Reingold–Tilford pass with the given minimum gaps,
// in breadth units.
type tidy struct {
	sibling, cousin float64
}

// run lays out root and returns the working tree with x set, in units,
// relative to the root at 0.
func (t tidy) run(root *tree.Node) *wnode {
	r := build(root)
	// Synthetic parent so the root can be treated like any sibling.
	super := &wnode{children: []*wnode{r}}
	r.parent = super

	t.firstWalk(r)
	super.mod = -r.prelim
	secondWalk(r)
	return r
}

func build(root *tree.Node) *wnode {
	r := &wnode{src: root}
	r.ancestor = r
	stack := []*wnode{r}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(n.src.Children) == 0 {
			continue
		}
		n.children = make([]*wnode, len(n.src.Children))
		for i, c := range n.src.Children {
			w := &wnode{src: c, parent: n, index: i, depth: n.depth + 1}
			w.ancestor = w
			n.children[i] = w
			stack = append(stack, w)
		}
	}
	return r
}

func (t tidy) separation(a, b *wnode) float64 {
	if a.parent == b.parent {
		return t.sibling
	}
	return t.cousin
}

// firstWalk computes preliminary positions bottom-up, children left to right.
func (t tidy) firstWalk(v *wnode) {
	for _, c := range v.children {
		t.firstWalk(c)
	}

	siblings := v.parent.children
	var w *wnode
	if v.index > 0 {
		w = siblings[v.index-1]
	}

	if len(v.children) > 0 {
		executeShifts(v)
		mid := (v.children[0].prelim + v.children[len(v.children)-1].prelim) / 2
		if w != nil {
			v.prelim = w.prelim + t.separation(v, w)
			v.mod = v.prelim - mid
		} else {
			v.prelim = mid
		}
	} else if w != nil {
		v.prelim = w.prelim + t.separation(v, w)
	}

	anc := v.parent.defaultAncestor
	if anc == nil {
		anc = siblings[0]
	}
	v.parent.defaultAncestor = t.apportion(v, w, anc)
}

// apportion pushes the subtree of v away from the subtrees to its left until
// every pair of facing contour nodes respects the separation.
func (t tidy) apportion(v, w, ancestor *wnode) *wnode {
	if w == nil {
		return ancestor
	}

	vip, vop := v, v
	vim := w
	vom := v.parent.children[0]
	sip, sop := vip.mod, vop.mod
	sim, som := vim.mod, vom.mod

	for {
		vim = nextRight(vim)
		vip = nextLeft(vip)
		if vim == nil || vip == nil {
			break
		}
		vom = nextLeft(vom)
		vop = nextRight(vop)
		vop.ancestor = v

		shift := vim.prelim + sim - vip.prelim - sip + t.separation(vim, vip)
		if shift > 0 {
			moveSubtree(nextAncestor(vim, v, ancestor), v, shift)
			sip += shift
			sop += shift
		}
		sim += vim.mod
		sip += vip.mod
		som += vom.mod
		sop += vop.mod
	}

	if vim != nil && nextRight(vop) == nil {
		vop.thread = vim
		vop.mod += sim - sop
	}
	if vip != nil && nextLeft(vom) == nil {
		vom.thread = vip
		vom.mod += sip - som
		ancestor = v
	}
	return ancestor
}

// secondWalk resolves final positions top-down by summing modifiers.
func secondWalk(v *wnode) {
	v.x = v.prelim + v.parent.mod
	v.mod += v.parent.mod
	for _, c := range v.children {
		secondWalk(c)
	}
}

func nextLeft(v *wnode) *wnode {
	if len(v.children) > 0 {
		return v.children[0]
	}
	return v.thread
}

func nextRight(v *wnode) *wnode {
	if len(v.children) > 0 {
		return v.children[len(v.children)-1]
	}
	return v.thread
}

func nextAncestor(vim, v, ancestor *wnode) *wnode {
	if vim.ancestor.parent == v.parent {
		return vim.ancestor
	}
	return ancestor
}

func moveSubtree(wm, wp *wnode, shift float64) {
	change := shift / float64(wp.index-wm.index)
	wp.change -= change
	wp.shift += shift
	wm.change += change
	wp.prelim += shift
	wp.mod += shift
}

func executeShifts(v *wnode) {
	var shift, change float64
	for i := len(v.children) - 1; i >= 0; i-- {
		w := v.children[i]
		w.prelim += shift
		w.mod += shift
		change += w.change
		shift += w.shift + change
	}
}
