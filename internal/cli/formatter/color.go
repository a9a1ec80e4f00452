package formatter

import "github.com/charmbracelet/lipgloss"

var (
	ColorHeader  = lipgloss.Color("#7AA2F7")
	ColorDim     = lipgloss.Color("#666666")
	ColorWarning = lipgloss.Color("#F39C12")
	ColorSuccess = lipgloss.Color("#2ECC71")
)

var (
	StyleDim     = lipgloss.NewStyle().Foreground(ColorDim)
	StyleHeader  = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleBold    = lipgloss.NewStyle().Bold(true)
)
