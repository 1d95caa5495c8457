package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/graphimg/pkg/pipeline"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ProfileListModel - Interactive profile selection
// =============================================================================

// ProfileListModel is the bubbletea model for choosing a config profile.
type ProfileListModel struct {
	Names    []string
	Profiles map[string]pipeline.Options
	Cursor   int
	Selected string
	Height   int
	Offset   int
}

// NewProfileListModel creates a picker over the profiles of cfg, sorted by name.
func NewProfileListModel(cfg *pipeline.Config) ProfileListModel {
	return ProfileListModel{
		Names:    cfg.ProfileNames(),
		Profiles: cfg.Profiles,
		Height:   15,
	}
}

func (m ProfileListModel) Init() tea.Cmd {
	return nil
}

func (m ProfileListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Names)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Names) == 0 {
				return m, tea.Quit
			}
			m.Selected = m.Names[m.Cursor]
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m ProfileListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Profile"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Names))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		name := m.Names[i]
		o := m.Profiles[name]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			name,
			orDash(o.Vertices),
			orDash(o.Edges),
			orDefault(o.Policy, "strict"),
			orDefault(o.Source, pipeline.SourceUniform),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Profile", "Vertices", "Edges", "Policy", "Source").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col >= 4 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Names))))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func orDash(n uint64) string {
	if n == 0 {
		return "—"
	}
	return fmt.Sprint(n)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
