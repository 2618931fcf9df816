package tui

import "github.com/charmbracelet/lipgloss"

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1)

	CountdownStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262")).
			Width(9).
			Align(lipgloss.Center)

	EmptyCardStyle = CardStyle.
			BorderForeground(lipgloss.Color("#3C3C3C")).
			Foreground(lipgloss.Color("#3C3C3C"))

	SelectedCardStyle = CardStyle.
				BorderForeground(lipgloss.Color("#FFD700"))

	PlayerInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	FrozenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7"))

	WinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	LogPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262"))
)

// featureColors colours a card by its first feature
var featureColors = []lipgloss.Color{"#FF6B6B", "#04B575", "#7D56F4", "#FFD700", "#4ECDC4"}

// tokenColors tells players apart on the table
var tokenColors = []lipgloss.Color{"#4ECDC4", "#FFD700", "#FF6B6B", "#96CEB4", "#7D56F4", "#FAFAFA"}

func tokenStyle(player int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(tokenColors[player%len(tokenColors)]).Bold(true)
}
