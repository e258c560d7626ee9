package pipeline

import (
	"github.com/matzehuels/stacktree/pkg/layout"
	"github.com/matzehuels/stacktree/pkg/tree"
)

// =============================================================================
// Layout Generation
// =============================================================================

// CheckTree validates the tree structure and returns its parent
// back-reference mismatches. Under opts.StrictParents a mismatch is an
// errors.ErrCodeParentMismatch error; otherwise the caller decides whether
// to warn.
func CheckTree(root *tree.Node, opts Options) ([]tree.Mismatch, error) {
	err := tree.Validate(root, tree.ValidateOptions{
		StrictParents: opts.StrictParents,
		Labels:        true,
	})
	if err != nil {
		return nil, err
	}
	return tree.CheckParents(root), nil
}

// ComputeLayout lays out a validated tree with a fresh engine, so identities
// depend only on the tree's structure.
//
// Both visualization types share the tidy layout: the node-link view is
// drawn by Graphviz, but its JSON export and cache entries still describe
// the tidy positions.
func ComputeLayout(root *tree.Node, opts Options) layout.Result {
	opts.SetLayoutDefaults()
	return layout.NewEngine(opts.Layout).Layout(root)
}
