package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Draaaaaaven/ecad/pkg/ecad"
	"github.com/Draaaaaaven/ecad/pkg/hierarchy"
)

func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <database>",
		Short: "Walk the cell hierarchy interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := c.loadOne(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p := tea.NewProgram(newBrowseModel(db), tea.WithContext(cmd.Context()), tea.WithOutput(c.out))
			_, err = p.Run()
			return err
		},
	}
}

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listLeafStyle     = lipgloss.NewStyle().Foreground(colorGray)
	panelStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// =============================================================================
// browseModel - hierarchy navigation
// =============================================================================

// browseModel lists the top cells first; entering a cell lists the cells it
// instantiates.
type browseModel struct {
	db     *ecad.Database
	graph  *hierarchy.Graph
	path   []string
	items  []string
	cursor int
	offset int
	height int
}

func newBrowseModel(db *ecad.Database) browseModel {
	g := db.Hierarchy()
	return browseModel{db: db, graph: g, items: g.Tops(), height: 15}
}

func (m browseModel) Init() tea.Cmd { return nil }

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.offset = min(m.offset, m.cursor)
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter", "right", "l":
			if len(m.items) == 0 {
				break
			}
			sel := m.items[m.cursor]
			if children := m.graph.Children(sel); len(children) > 0 {
				m.path = append(m.path, sel)
				m.items, m.cursor, m.offset = children, 0, 0
			}
		case "backspace", "left", "h":
			if n := len(m.path); n > 0 {
				last := m.path[n-1]
				m.path = m.path[:n-1]
				m.items = m.level()
				m.cursor = max(0, indexOf(m.items, last))
				m.offset = max(0, m.cursor-m.height+1)
			}
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
	}
	return m, nil
}

// level returns the cells listed at the current path.
func (m browseModel) level() []string {
	if len(m.path) == 0 {
		return m.graph.Tops()
	}
	return m.graph.Children(m.path[len(m.path)-1])
}

func (m browseModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(strings.Join(append([]string{m.db.Name()}, m.path...), " / ")))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ move  ⏎ enter  ⌫ back  q quit"))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(StyleDim.Render("no cells"))
		return b.String()
	}

	var list strings.Builder
	end := min(m.offset+m.height, len(m.items))
	for i := m.offset; i < end; i++ {
		name := m.items[i]
		marker := "  "
		if len(m.graph.Children(name)) > 0 {
			marker = "▸ "
		}
		line := marker + name
		switch {
		case i == m.cursor:
			list.WriteString(listSelectedStyle.Render(line))
		case marker == "  ":
			list.WriteString(listLeafStyle.Render(line))
		default:
			list.WriteString(listNormalStyle.Render(line))
		}
		list.WriteString("\n")
	}
	list.WriteString(StyleDim.Render(fmt.Sprintf("[%d/%d]", m.cursor+1, len(m.items))))

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list.String(), "  ", panelStyle.Render(m.details(m.items[m.cursor]))))
	return b.String()
}

// details describes one cell for the side panel.
func (m browseModel) details(name string) string {
	cell := m.db.FindCellByName(name)
	if cell == nil {
		return name
	}
	lv := cell.LayoutView()
	lines := []string{
		StyleTitle.Render(name),
		fmt.Sprintf("layers      %d", lv.LayerCollection().Size()),
		fmt.Sprintf("nets        %d", lv.NetCollection().Size()),
		fmt.Sprintf("primitives  %d", lv.PrimitiveCollection().Size()),
		fmt.Sprintf("padstacks   %d", lv.PadstackInstCollection().Size()),
		fmt.Sprintf("instances   %d", lv.CellInstCollection().Size()),
	}
	if b := lv.BBox(); b.IsValid() {
		lines = append(lines, fmt.Sprintf("bbox        %v %v", b.Min, b.Max))
	}
	if parents := m.graph.Parents(name); len(parents) > 0 {
		lines = append(lines, StyleDim.Render("used by "+strings.Join(parents, ", ")))
	}
	return strings.Join(lines, "\n")
}

func indexOf(items []string, s string) int {
	for i, it := range items {
		if it == s {
			return i
		}
	}
	return -1
}
