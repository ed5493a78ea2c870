package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model and renders the scan-menu layout: a status
// bar, the scan list pane, and a command input bar.
func (m Model) View() string {
	if !m.ready {
		return "\n  burrow — starting menu...\n"
	}

	statusBar := m.renderStatusBar()
	listPane := listPaneActiveStyle.Width(m.width - 2).Render(m.list.View())
	inputBar := m.renderInputBar()

	return lipgloss.JoinVertical(lipgloss.Left, statusBar, listPane, inputBar)
}

// renderStatusBar renders the single-line header with scan counts.
func (m Model) renderStatusBar() string {
	title := lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Render("BURROW")

	scans := m.source.Scans()
	running, complete := 0, 0
	for _, s := range scans {
		switch s.Status {
		case "running":
			running++
		case "complete":
			complete++
		}
	}
	counts := fmt.Sprintf("%d scans, %d running, %d complete", len(scans), running, complete)

	hint := helpStyle.Render("[Enter] run command  [Esc] quit")

	left := title + "  " + counts
	gap := strings.Repeat(" ", maxInt(0, m.width-lipgloss.Width(left)-lipgloss.Width(hint)-2))

	return statusBarStyle.Width(m.width).Render(left + gap + hint)
}

// renderInputBar renders the command input bar plus the last status line.
func (m Model) renderInputBar() string {
	content := m.input.View()
	if m.status != "" {
		content += "\n" + helpStyle.Render(m.status)
	}
	return inputBarActiveStyle.Width(m.width - 2).Render(content)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
