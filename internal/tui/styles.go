package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	colorPrimary = lipgloss.Color("#00D7FF") // cyan — focus / running
	colorSuccess = lipgloss.Color("#87FF5F") // green — complete
	colorWarning = lipgloss.Color("#FFD700") // yellow — auto-bail / auto-tune
	colorDanger  = lipgloss.Color("#FF5555") // red — cancelled
	colorMuted   = lipgloss.Color("#555577") // dim gray — not-started / hints
	colorBorder  = lipgloss.Color("#333355")
)

// Pane borders
var (
	listPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	listPaneActiveStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary)
)

// Input bar
var (
	inputBarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	inputBarActiveStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary)
)

// Status bar (top)
var statusBarStyle = lipgloss.NewStyle().
	Background(lipgloss.Color("#0D0D1A")).
	Foreground(colorPrimary).
	Padding(0, 1)

var helpStyle = lipgloss.NewStyle().Foreground(colorMuted)

// Scan status label styles, keyed by scan.Status string value.
var (
	statusNotStartedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	statusRunningStyle    = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	statusCompleteStyle   = lipgloss.NewStyle().Foreground(colorSuccess)
	statusCancelledStyle  = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
)

func statusStyle(status string) lipgloss.Style {
	switch status {
	case "running":
		return statusRunningStyle
	case "complete":
		return statusCompleteStyle
	case "cancelled":
		return statusCancelledStyle
	default:
		return statusNotStartedStyle
	}
}

var warningBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorWarning).
	Padding(0, 1)
