package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/breadthfirst/pkg/graph"
)

var (
	previewHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	previewDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	previewCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
)

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "preview <layout.json>",
		Short: "Browse the levels of a computed layout",
		Long: `Browse a layout level by level in the terminal.

Level 0 holds the orphans: nodes not reachable from any root. With --plain
every level is printed as a table instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := graph.ReadLayoutFile(args[0])
			if err != nil {
				return fmt.Errorf("load layout %s: %w", args[0], err)
			}
			if plain {
				return writeLevels(cmd.OutOrStdout(), l)
			}
			_, err = tea.NewProgram(newPreviewModel(args[0], l), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print levels instead of starting the browser")
	return cmd
}

// previewModel is the bubbletea model of the level browser. Left and right
// switch levels, up and down move through the nodes of the current level.
type previewModel struct {
	Name   string
	Layout graph.Layout
	Level  int
	Cursor int
	Offset int
	Height int

	nodes map[string]graph.PositionedNode
}

func newPreviewModel(name string, l graph.Layout) previewModel {
	nodes := make(map[string]graph.PositionedNode, len(l.Nodes))
	for _, n := range l.Nodes {
		nodes[n.ID] = n
	}
	m := previewModel{Name: name, Layout: l, Height: 15, nodes: nodes}
	// Skip an empty orphan level on start.
	if len(l.Levels) > 1 && len(l.Levels[0]) == 0 {
		m.Level = 1
	}
	return m
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			if m.Level > 0 {
				m.Level--
				m.Cursor, m.Offset = 0, 0
			}
		case "right", "l":
			if m.Level < len(m.Layout.Levels)-1 {
				m.Level++
				m.Cursor, m.Offset = 0, 0
			}
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.current())-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(5, msg.Height-8)
	}
	return m, nil
}

// current returns the node IDs of the selected level.
func (m previewModel) current() []string {
	if m.Level >= len(m.Layout.Levels) {
		return nil
	}
	return m.Layout.Levels[m.Level]
}

func (m previewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Name))
	b.WriteString("\n")
	b.WriteString(previewDimStyle.Render("←/→ level  ↑/↓ node  q quit"))
	b.WriteString("\n\n")

	ids := m.current()
	title := fmt.Sprintf("Level %d of %d", m.Level, max(0, len(m.Layout.Levels)-1))
	if m.Level == 0 {
		title += " (orphans)"
	}
	b.WriteString(title)
	b.WriteString("\n")

	if len(ids) == 0 {
		b.WriteString(previewDimStyle.Render("  no nodes"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(ids))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, append([]string{cursor}, m.row(ids[i])...))
	}

	t := levelTable(rows).StyleFunc(func(row, col int) lipgloss.Style {
		if row == -1 {
			return previewHeaderStyle
		}
		if m.Offset+row == m.Cursor {
			return previewCursorStyle
		}
		return lipgloss.NewStyle()
	})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(previewDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(ids))))
	return b.String()
}

// row formats one node as table cells.
func (m previewModel) row(id string) []string {
	n, ok := m.nodes[id]
	if !ok {
		return []string{"", id, "", "", ""}
	}
	return []string{
		strconv.Itoa(n.Index),
		n.ID,
		n.Label,
		StyleNumber.Render(strconv.FormatFloat(n.X, 'f', 1, 64)),
		StyleNumber.Render(strconv.FormatFloat(n.Y, 'f', 1, 64)),
	}
}

func levelTable(rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Index", "ID", "Label", "X", "Y").
		Rows(rows...)
}

// writeLevels prints every level of l as a table.
func writeLevels(w io.Writer, l graph.Layout) error {
	m := newPreviewModel("", l)
	for d, ids := range l.Levels {
		name := fmt.Sprintf("Level %d", d)
		if d == 0 {
			name += " (orphans)"
		}
		if _, err := fmt.Fprintln(w, StyleTitle.Render(name)); err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Fprintln(w, previewDimStyle.Render("  no nodes"))
			continue
		}
		rows := make([][]string, len(ids))
		for i, id := range ids {
			rows[i] = append([]string{""}, m.row(id)...)
		}
		if _, err := fmt.Fprintln(w, levelTable(rows).Render()); err != nil {
			return err
		}
	}
	return nil
}
