package tui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// refreshMsg asks the model to re-pull Scans() from its Source, used
// after any mutating command so the list reflects the new state.
type refreshMsg struct{}

func refreshCmd() tea.Cmd {
	return func() tea.Msg { return refreshMsg{} }
}

// Update implements tea.Model and routes all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.list.SetSize(msg.Width-4, msg.Height-6)
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 10
		return m, nil

	case refreshMsg:
		m.list.SetItems(summariesToItems(m.source.Scans()))
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.runCommand(m.input.Value())
		}
	}

	var (
		cmd     tea.Cmd
		listCmd tea.Cmd
	)
	m.input, cmd = m.input.Update(msg)
	m.list, listCmd = m.list.Update(msg)
	return m, tea.Batch(cmd, listCmd)
}

// runCommand dispatches one line of menu input, matching the command set
// from spec.md §4.2: list/cancel/new-filter/remove-filter/resume.
func (m Model) runCommand(line string) (tea.Model, tea.Cmd) {
	m.input.SetValue("")
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return m, nil
	}

	switch fields[0] {
	case "list":
		m.status = "scans refreshed"
		return m, refreshCmd()

	case "cancel":
		indices, err := parseIndices(fields[1:])
		if err != nil {
			m.status = "cancel: " + err.Error()
			return m, nil
		}
		m.source.Cancel(indices)
		m.status = "cancelled"
		return m, refreshCmd()

	case "new-filter":
		if len(fields) < 2 {
			m.status = "new-filter: missing filter kind"
			return m, nil
		}
		if err := m.source.AddFilter(fields[1], fields[2:]); err != nil {
			m.status = "new-filter: " + err.Error()
			return m, nil
		}
		m.status = "filter added"
		return m, refreshCmd()

	case "remove-filter":
		indices, err := parseIndices(fields[1:])
		if err != nil {
			m.status = "remove-filter: " + err.Error()
			return m, nil
		}
		if err := m.source.RemoveFilters(indices); err != nil {
			m.status = "remove-filter: " + err.Error()
			return m, nil
		}
		m.status = "filter(s) removed"
		return m, refreshCmd()

	case "resume":
		m.source.Resume()
		m.status = "resumed"
		return m, refreshCmd()

	case "quit":
		return m, tea.Quit

	default:
		m.status = "unknown command: " + fields[0]
		return m, nil
	}
}

func parseIndices(raw []string) ([]int, error) {
	var out []int
	for _, r := range raw {
		n, err := strconv.Atoi(r)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
