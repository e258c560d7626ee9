package tree

import (
	"fmt"
	"strings"

	"github.com/matzehuels/stacktree/pkg/errors"
)

// Mismatch describes a node whose Parent back-reference names a different
// node than the one that contains it.
type Mismatch struct {
	Path     []string // names from the root down to the node
	Declared string   // value of Node.Parent
	Actual   string   // name of the containing node
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: parent %q, contained in %q", strings.Join(m.Path, " / "), m.Declared, m.Actual)
}

// CheckParents lists every node whose Parent field is set and disagrees with
// containment. A Parent set on the root is reported with an empty Actual.
func CheckParents(root *Node) []Mismatch {
	var out []Mismatch
	var visit func(n *Node, path []string, actual string)
	visit = func(n *Node, path []string, actual string) {
		path = append(path[:len(path):len(path)], n.Name)
		if n.Parent != "" && n.Parent != actual {
			out = append(out, Mismatch{Path: path, Declared: n.Parent, Actual: actual})
		}
		for _, c := range n.Children {
			visit(c, path, n.Name)
		}
	}
	if root != nil {
		visit(root, nil, "")
	}
	return out
}

// ValidateOptions controls [Validate].
type ValidateOptions struct {
	// StrictParents turns parent back-reference mismatches into errors.
	StrictParents bool

	// Labels checks every name and type tag with the label validators.
	Labels bool
}

// Validate checks that root is a well-formed rooted tree: non-nil, and no node
// reachable through more than one Children slot (which covers both cycles and
// shared subtrees). It fails fast on the first problem.
//
// The layout engine never calls Validate; callers that accept trees from
// untrusted sources should.
func Validate(root *Node, opts ValidateOptions) error {
	if root == nil {
		return errors.New(errors.ErrCodeInvalidTree, "tree has no root")
	}

	seen := make(map[*Node]bool)
	var visit func(n *Node, path []string) error
	visit = func(n *Node, path []string) error {
		if n == nil {
			return errors.New(errors.ErrCodeInvalidTree, "nil child under %s", strings.Join(path, " / "))
		}
		path = append(path[:len(path):len(path)], n.Name)
		if seen[n] {
			return errors.New(errors.ErrCodeInvalidTree, "node %s is reachable more than once", strings.Join(path, " / "))
		}
		seen[n] = true
		if opts.Labels {
			if err := errors.ValidateLabel(n.Name); err != nil {
				return err
			}
			if err := errors.ValidateNodeType(n.Type); err != nil {
				return err
			}
		}
		for _, c := range n.Children {
			if err := visit(c, path); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(root, nil); err != nil {
		return err
	}

	if opts.StrictParents {
		if mm := CheckParents(root); len(mm) > 0 {
			return errors.New(errors.ErrCodeParentMismatch, "%d parent mismatches, first: %s", len(mm), mm[0])
		}
	}
	return nil
}
