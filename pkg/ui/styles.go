// Package ui holds the lipgloss styles shared by the terminal reporters.
package ui

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	ColorPrimary   = lipgloss.Color("#7C3AED") // Purple
	ColorSecondary = lipgloss.Color("#10B981") // Green
	ColorDanger    = lipgloss.Color("#EF4444") // Red
	ColorWarning   = lipgloss.Color("#F59E0B") // Amber
	ColorMuted     = lipgloss.Color("#6B7280") // Gray
	ColorBorder    = lipgloss.Color("#374151") // Dark gray
)

// Styles
var (
	// Box around a single quote
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	// Error box
	ErrorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDanger).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(ColorPrimary).
			Padding(0, 2)

	// Row label in a quote box
	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Width(16)

	// Value styles
	AmountValue = lipgloss.NewStyle().
			Bold(true)

	BoundValue = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	WarningValue = lipgloss.NewStyle().
			Foreground(ColorWarning)

	ErrorValue = lipgloss.NewStyle().
			Foreground(ColorDanger).
			Bold(true)

	MutedValue = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// Row renders a label/value line.
func Row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, LabelStyle.Render(label), value)
}
