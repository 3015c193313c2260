package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/treeline-io/treeline/pkg/diagram"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// NodePickerModel - Interactive node selection
// =============================================================================

// nodeRow is one pickable entry: a node plus its depth in the forest, in
// depth-first order so children render under their parents.
type nodeRow struct {
	node     diagram.Node
	depth    int
	children int
}

// NodePickerModel is the bubbletea model for interactive node selection.
type NodePickerModel struct {
	Title    string
	Rows     []nodeRow
	Cursor   int
	Selected *diagram.Node
	Height   int
	Offset   int
}

// NewNodePickerModel builds a picker over the store's nodes in depth-first
// order.
func NewNodePickerModel(title string, store *diagram.Store) NodePickerModel {
	return NodePickerModel{
		Title:  title,
		Rows:   nodeRows(store.Nodes()),
		Height: 15,
	}
}

// nodeRows flattens the forest depth-first, keeping the stored order of
// roots and siblings.
func nodeRows(nodes []diagram.Node) []nodeRow {
	children := make(map[string][]diagram.Node)
	for _, n := range nodes {
		if n.ParentID != "" {
			children[n.ParentID] = append(children[n.ParentID], n)
		}
	}

	rows := make([]nodeRow, 0, len(nodes))
	var walk func(n diagram.Node, depth int)
	walk = func(n diagram.Node, depth int) {
		rows = append(rows, nodeRow{node: n, depth: depth, children: len(children[n.ID])})
		for _, child := range children[n.ID] {
			walk(child, depth+1)
		}
	}
	for _, n := range nodes {
		if n.ParentID == "" {
			walk(n, 0)
		}
	}
	return rows
}

func (m NodePickerModel) Init() tea.Cmd {
	return nil
}

func (m NodePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Rows) == 0 {
				return m, tea.Quit
			}
			node := m.Rows[m.Cursor].node
			m.Selected = &node
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m NodePickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Rows) {
		end = len(m.Rows)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Rows[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		title := strings.Repeat("  ", r.depth) + r.node.Title
		childCount := "—"
		if r.children > 0 {
			childCount = fmt.Sprintf("%d", r.children)
		}

		rows = append(rows, []string{cursor, title, r.node.ID, childCount})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Title", "ID", "Children").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Rows) {
				return lipgloss.NewStyle()
			}

			base := lipgloss.NewStyle()
			if col == 2 || col == 3 {
				base = base.Foreground(colorDim)
			}
			if actualIdx == m.Cursor {
				if col == 2 || col == 3 {
					return base.Bold(true)
				}
				return base.Foreground(colorCyan).Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// pickNode runs the interactive picker and returns the chosen node id.
// An empty id with a nil error means the user dismissed the picker.
func pickNode(title string, store *diagram.Store) (string, error) {
	if store.Len() == 0 {
		return "", fmt.Errorf("the diagram has no nodes")
	}

	m := NewNodePickerModel(title, store)
	p := tea.NewProgram(m)
	final, err := p.Run()
	if err != nil {
		return "", err
	}

	fm, ok := final.(NodePickerModel)
	if !ok || fm.Selected == nil {
		return "", nil
	}
	return fm.Selected.ID, nil
}
