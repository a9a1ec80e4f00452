package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pmreport/internal/api"
)

var (
	colorPrimary   = lipgloss.Color("#6C63FF")
	colorSecondary = lipgloss.Color("#2EC4B6")
	colorAccent    = lipgloss.Color("#FF6B6B")
	colorMuted     = lipgloss.Color("#666666")
	colorSuccess   = lipgloss.Color("#2ECC71")
	colorWarning   = lipgloss.Color("#F39C12")
	colorError     = lipgloss.Color("#E74C3C")
	colorFg        = lipgloss.Color("#C0CAF5")
	colorBorder    = lipgloss.Color("#414868")
	colorHighlight = lipgloss.Color("#7AA2F7")
)

// seriesColors color chart bars in turn.
var seriesColors = []lipgloss.Color{
	colorPrimary, colorSecondary, colorAccent, colorWarning, colorSuccess, colorHighlight,
}

func seriesStyle(i int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(seriesColors[i%len(seriesColors)])
}

var projectStatusColors = map[api.ProjectStatus]lipgloss.Color{
	api.ProjectActive:    colorSuccess,
	api.ProjectOnHold:    colorWarning,
	api.ProjectCompleted: colorHighlight,
	api.ProjectCancelled: colorError,
}

var actionColors = map[api.ActivityAction]lipgloss.Color{
	api.ActionCreated:       colorSuccess,
	api.ActionDeleted:       colorError,
	api.ActionStatusChanged: colorWarning,
	api.ActionAssigned:      colorHighlight,
	api.ActionCommented:     colorSecondary,
}

// dot renders a colored bullet, muted when the key has no color.
func dot[K comparable](colors map[K]lipgloss.Color, k K) string {
	c, ok := colors[k]
	if !ok {
		c = colorMuted
	}
	return lipgloss.NewStyle().Foreground(c).Render("●")
}

func statusDot(s api.ProjectStatus) string { return dot(projectStatusColors, s.Canonical()) }

func actionDot(a api.ActivityAction) string { return dot(actionColors, a) }

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)
	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)
	// pickerStyle frames overlays such as the export format picker.
	pickerStyle = panelStyle.BorderForeground(colorPrimary)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 2).
			MarginRight(1)
	cardValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorHighlight)

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorFg)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	highlightStyle = lipgloss.NewStyle().Foreground(colorHighlight)
	warningStyle   = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	normalItemStyle   = lipgloss.NewStyle().Foreground(colorFg)
)
