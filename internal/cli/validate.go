package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stacktree/pkg/errors"
	"github.com/matzehuels/stacktree/pkg/pipeline"
	"github.com/matzehuels/stacktree/pkg/tree"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate [tree.json|tree.toml]",
		Short: "Check a tree document",
		Long: `Check a tree document.

Validation rejects empty documents, nodes reachable twice, and names or type
tags that are empty, too long or contain control characters. Parent
back-references that disagree with containment are listed; with --strict
they fail the check.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := inputArg(args)
			root, source, err := pipeline.Load(input)
			if err != nil {
				return err
			}
			opts := pipeline.DefaultOptions()
			opts.StrictParents = strict

			mismatches, err := pipeline.CheckTree(root, opts)
			if err != nil && !errors.Is(err, errors.ErrCodeParentMismatch) {
				printError("%s is not a valid tree", source)
				return err
			}
			if errors.Is(err, errors.ErrCodeParentMismatch) {
				mismatches = tree.CheckParents(root)
			}

			writeSummary(cmd.OutOrStdout(), root, mismatches)
			if err != nil {
				return err
			}
			printSuccess("%s is valid", source)
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail on parent back-reference mismatches")

	return cmd
}

// writeSummary prints node counts per type and any parent mismatches.
func writeSummary(w io.Writer, root *tree.Node, mismatches []tree.Mismatch) {
	counts := tree.CountByType(root)
	types := make([]string, 0, len(counts))
	for typ := range counts {
		types = append(types, typ)
	}
	sort.Strings(types)

	rows := make([][]string, 0, len(types)+2)
	for _, typ := range types {
		name := typ
		if name == "" {
			name = "(untyped)"
		}
		rows = append(rows, []string{name, strconv.Itoa(counts[typ])})
	}
	rows = append(rows,
		[]string{"total", strconv.Itoa(tree.Count(root))},
		[]string{"height", strconv.Itoa(tree.Height(root))},
	)

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Type", "Nodes").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < len(types) && col == 0 {
				return cellStyle.Foreground(nodeStyle(types[row]).GetForeground())
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())

	if len(mismatches) == 0 {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d parent reference(s) disagree with containment:\n", len(mismatches))
	for _, m := range mismatches {
		b.WriteString("  " + m.String() + "\n")
	}
	fmt.Fprint(w, StyleWarning.Render(b.String()))
}
