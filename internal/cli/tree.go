package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	lgtree "github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	treeio "github.com/matzehuels/stacktree/pkg/io"
	"github.com/matzehuels/stacktree/pkg/layout"
	"github.com/matzehuels/stacktree/pkg/pipeline"
	"github.com/matzehuels/stacktree/pkg/tree"
)

// treeCommand creates the tree command, which prints the hierarchy.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		maxDepth  int
		positions bool
		export    string
	)

	cmd := &cobra.Command{
		Use:   "tree [tree.json|tree.toml]",
		Short: "Print the module hierarchy",
		Long: `Print the module hierarchy.

Modules are shown in blue, pages in red. With --positions every node is
annotated with its layout identity and canvas position.

With --export the tree is also written to a document file; the extension
(.json or .toml) picks the encoding, so this converts between the two.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _, err := pipeline.Load(inputArg(args))
			if err != nil {
				return err
			}
			if export != "" {
				if err := treeio.Export(root, export); err != nil {
					return err
				}
				defer printFile(export)
			}
			var res *layout.Result
			if positions {
				r := pipeline.ComputeLayout(root, pipeline.DefaultOptions())
				res = &r
			}
			return printTree(cmd.OutOrStdout(), root, res, maxDepth)
		},
	}

	cmd.Flags().IntVarP(&maxDepth, "depth", "d", 0, "maximum depth to print (0 = all)")
	cmd.Flags().BoolVarP(&positions, "positions", "p", false, "annotate nodes with layout id and position")
	cmd.Flags().StringVar(&export, "export", "", "also write the tree document to this .json or .toml file")

	return cmd
}

// printTree writes the hierarchy of root to w. When res is non-nil each
// node is annotated with its positioned counterpart.
func printTree(w io.Writer, root *tree.Node, res *layout.Result, maxDepth int) error {
	var placed map[*tree.Node]*layout.PositionedNode
	if res != nil {
		placed = make(map[*tree.Node]*layout.PositionedNode, len(res.Nodes))
		for _, p := range res.Nodes {
			placed[p.Node] = p
		}
	}

	label := func(n *tree.Node) string {
		s := nodeStyle(n.Type).Render(n.Name)
		if n.Type != "" && n.Type != tree.TypeModule && n.Type != tree.TypePage {
			s += StyleDim.Render(" [" + n.Type + "]")
		}
		if p, ok := placed[n]; ok {
			s += StyleDim.Render(fmt.Sprintf("  #%d (%g, %g)", p.ID, p.X, p.Breadth))
		}
		return s
	}

	var build func(n *tree.Node, depth int) *lgtree.Tree
	build = func(n *tree.Node, depth int) *lgtree.Tree {
		t := lgtree.Root(label(n))
		if maxDepth > 0 && depth >= maxDepth {
			if len(n.Children) > 0 {
				t.Child(StyleDim.Render(fmt.Sprintf("… %d more", tree.Count(n)-1)))
			}
			return t
		}
		for _, c := range n.Children {
			if c.IsLeaf() {
				t.Child(label(c))
				continue
			}
			t.Child(build(c, depth+1))
		}
		return t
	}

	t := build(root, 0).
		Enumerator(lgtree.RoundedEnumerator).
		EnumeratorStyle(lipgloss.NewStyle().Foreground(colorDim).MarginRight(1))

	_, err := fmt.Fprintln(w, t.String())
	return err
}
