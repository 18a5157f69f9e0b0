package tui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle renders the header bar.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4F4FB7")).
			Padding(0, 1)

	// InputStyle renders echoed command lines.
	InputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#81A1C1")).
			Bold(true)

	OutputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F"))

	// StatusStyle renders the status line below the prompt.
	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#959595"))
)
