// Package tui implements the Bubble Tea interactive menu (spec.md §4.2's
// pause(interactive?) surface): list scans, cancel one or more, add or
// remove a filter, or resume paused scanning.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ScanSummary is the read-only view of one scan the menu displays,
// decoupled from package scan's mutable FeroxScan so the TUI never
// touches scan-package internals directly.
type ScanSummary struct {
	ID       string
	URL      string
	Status   string
	Position int64
	Total    int64
}

// Source is what the menu reads from and issues commands to. cmd/burrow
// wires a concrete implementation backed by the live ScanManager and
// filters.Collection.
type Source interface {
	Scans() []ScanSummary
	Cancel(indices []int)
	Filters() []string
	AddFilter(kind string, args []string) error
	RemoveFilters(indices []int) error
	Resume()
}

// scanListItem adapts a ScanSummary to list.Item.
type scanListItem struct{ s ScanSummary }

func (i scanListItem) Title() string {
	pct := ""
	if i.s.Total > 0 {
		pct = fmt.Sprintf(" %d/%d", i.s.Position, i.s.Total)
	}
	return fmt.Sprintf("%s %s%s", statusStyle(i.s.Status).Render(i.s.Status), i.s.URL, pct)
}
func (i scanListItem) Description() string { return i.s.ID }
func (i scanListItem) FilterValue() string { return i.s.URL }

// Model is the root Bubble Tea model for the scan menu.
type Model struct {
	width, height int
	ready         bool

	source Source

	list     list.Model
	viewport viewport.Model
	input    textinput.Model

	status string // transient feedback line (last command's result)
}

// New builds a menu Model reading from source.
func New(source Source) Model {
	items := summariesToItems(source.Scans())

	d := list.NewDefaultDelegate()
	d.ShowDescription = true
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.Foreground(colorPrimary)

	l := list.New(items, d, 60, 16)
	l.Title = "SCANS"
	l.SetShowHelp(false)
	l.Styles.Title = lipgloss.NewStyle().Bold(true).Padding(0, 1)

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "list | cancel N | new-filter kind args... | remove-filter N | resume | quit"
	ti.CharLimit = 200
	ti.Focus()

	return Model{source: source, list: l, input: ti}
}

func summariesToItems(scans []ScanSummary) []list.Item {
	items := make([]list.Item, len(scans))
	for i, s := range scans {
		items[i] = scanListItem{s: s}
	}
	return items
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }
