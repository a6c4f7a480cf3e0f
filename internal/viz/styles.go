package viz

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	canvasStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466"))

	statsStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2).
			Width(44)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(12)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	graphStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("49"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	StatusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusPaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	StatusError = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))
)

// The heaviest body of the reference scene is drawn orange, the rest
// turquoise.
var (
	primaryBody   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffa500"))
	secondaryBody = lipgloss.NewStyle().Foreground(lipgloss.Color("#40e0d0"))
	trailStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// BodyStyle returns the colour for particle i. Negative ids are trail dots.
func BodyStyle(i int) lipgloss.Style {
	switch {
	case i < 0:
		return trailStyle
	case i == 0:
		return primaryBody
	default:
		return secondaryBody
	}
}
