package terminal

import "github.com/charmbracelet/lipgloss"

var (
	base     = lipgloss.Color("#1e1e2e")
	surface1 = lipgloss.Color("#45475a")
	text     = lipgloss.Color("#cdd6f4")
	subtext0 = lipgloss.Color("#a6adc8")
	yellow   = lipgloss.Color("#f9e2af")
	teal     = lipgloss.Color("#94e2d5")
	peach    = lipgloss.Color("#fab387")

	appStyle = lipgloss.NewStyle().
			Foreground(text).
			Padding(1, 2)

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(surface1).
			Padding(0, 2)

	focusStyle = lipgloss.NewStyle().Foreground(yellow).Bold(true)
	breakStyle = lipgloss.NewStyle().Foreground(teal).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(subtext0)
	hotStyle   = lipgloss.NewStyle().Foreground(peach).Bold(true)
	doneStyle  = lipgloss.NewStyle().Foreground(subtext0).Strikethrough(true)
	barStyle   = lipgloss.NewStyle().Background(base)
)
