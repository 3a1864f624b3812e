package cli

import "github.com/charmbracelet/lipgloss"

var (
	StyleStage  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // Blue - progress
	StyleOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // Green - done
	StyleError  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // Red - failure
	StyleDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // Gray
	StyleHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
)

// swatch is a two-cell block in the given hex color.
func swatch(hex string) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("  ")
}
