package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/stacktree/pkg/layout"
	"github.com/matzehuels/stacktree/pkg/render/scene"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// NodeListModel - Interactive layout browser
// =============================================================================

// NodeListModel is the bubbletea model behind 'stacktree browse'. It lists
// positioned nodes in identity order and shows details for the one under
// the cursor.
type NodeListModel struct {
	Nodes  []*layout.PositionedNode
	Cursor int
	Height int
	Offset int
}

// NewNodeListModel creates a browser over res.
func NewNodeListModel(res layout.Result) NodeListModel {
	return NodeListModel{Nodes: res.Nodes, Height: 15}
}

func (m NodeListModel) Init() tea.Cmd {
	return nil
}

func (m NodeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m = m.move(m.Cursor - 1)
		case "down", "j":
			m = m.move(m.Cursor + 1)
		case "pgup":
			m = m.move(m.Cursor - m.Height)
		case "pgdown":
			m = m.move(m.Cursor + m.Height)
		case "home", "g":
			m = m.move(0)
		case "end", "G":
			m = m.move(len(m.Nodes) - 1)
		case "p":
			if n := m.current(); n != nil && n.Parent != nil {
				m = m.move(m.indexOf(n.Parent))
			}
		case "enter", "l":
			if n := m.current(); n != nil && len(n.Children) > 0 {
				m = m.move(m.indexOf(n.Children[0]))
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 12
		if m.Height < 5 {
			m.Height = 5
		}
		m = m.move(m.Cursor)
	}
	return m, nil
}

// move places the cursor at i, clamped, and scrolls it into view.
func (m NodeListModel) move(i int) NodeListModel {
	if i >= len(m.Nodes) {
		i = len(m.Nodes) - 1
	}
	if i < 0 {
		i = 0
	}
	m.Cursor = i
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m
}

func (m NodeListModel) current() *layout.PositionedNode {
	if m.Cursor < 0 || m.Cursor >= len(m.Nodes) {
		return nil
	}
	return m.Nodes[m.Cursor]
}

func (m NodeListModel) indexOf(n *layout.PositionedNode) int {
	for i, p := range m.Nodes {
		if p == n {
			return i
		}
	}
	return m.Cursor
}

func (m NodeListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Layout"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  p parent  ⏎ first child  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Nodes) {
		end = len(m.Nodes)
	}

	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		n := m.Nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			strconv.Itoa(n.ID),
			strings.Repeat("  ", n.Depth) + n.Name(),
			n.Type(),
			scene.Num(n.X),
			scene.Num(n.Breadth),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Name", "Type", "X", "Y").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Nodes) {
				return lipgloss.NewStyle()
			}
			if idx == m.Cursor {
				return listSelectedStyle
			}
			if col == 2 {
				return nodeStyle(m.Nodes[idx].Type())
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(m.detail())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Nodes))))

	return b.String()
}

// detail describes the node under the cursor.
func (m NodeListModel) detail() string {
	n := m.current()
	if n == nil {
		return listDimStyle.Render("  (empty layout)")
	}
	parent := "—"
	if n.Parent != nil {
		parent = fmt.Sprintf("%s (#%d)", n.Parent.Name(), n.Parent.ID)
	}
	declared := ""
	if n.Node.Parent != "" && n.Parent != nil && n.Node.Parent != n.Parent.Name() {
		declared = StyleWarning.Render(fmt.Sprintf("  declares parent %q", n.Node.Parent))
	}
	return fmt.Sprintf("  %s %s  %s %s  %s %d  %s %d%s",
		StyleDim.Render("node"), nodeStyle(n.Type()).Render(n.Name()),
		StyleDim.Render("parent"), StyleValue.Render(parent),
		StyleDim.Render("depth"), n.Depth,
		StyleDim.Render("children"), len(n.Children),
		declared)
}
