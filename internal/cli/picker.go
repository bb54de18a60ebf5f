package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
)

// =============================================================================
// VersionListModel - Interactive version selection
// =============================================================================

// VersionListModel is the bubbletea model for picking one published version.
type VersionListModel struct {
	Title    string
	Versions []string
	Cursor   int
	Selected string
	Height   int
	Offset   int
}

// NewVersionListModel creates a list over versions in repository order.
func NewVersionListModel(title string, versions []string) VersionListModel {
	return VersionListModel{Title: title, Versions: versions, Height: 15}
}

func (m VersionListModel) Init() tea.Cmd {
	return nil
}

func (m VersionListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Versions)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Versions) == 0 {
				return m, tea.Quit
			}
			m.Selected = m.Versions[m.Cursor]
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(5, msg.Height-6)
		if m.Cursor >= m.Offset+m.Height {
			m.Offset = m.Cursor - m.Height + 1
		}
	}
	return m, nil
}

func (m VersionListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Versions))
	for i := m.Offset; i < end; i++ {
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render("▸ " + m.Versions[i]))
		} else {
			b.WriteString(listNormalStyle.Render("  " + m.Versions[i]))
		}
		b.WriteString("\n")
	}
	if len(m.Versions) > m.Height {
		b.WriteString(StyleDim.Render(fmt.Sprintf("\n%d/%d", m.Cursor+1, len(m.Versions))))
		b.WriteString("\n")
	}
	return b.String()
}

// pickVersion runs the picker on stderr, keeping stdout for the result. It
// returns "" when the user quit.
func pickVersion(title string, versions []string) (string, error) {
	final, err := tea.NewProgram(NewVersionListModel(title, versions), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return "", err
	}
	return final.(VersionListModel).Selected, nil
}
