package ui

import "github.com/charmbracelet/lipgloss"

// Palette. 256-colour codes so output looks the same across terminal themes.
var (
	ColorPrimary   = lipgloss.Color("205")
	ColorSecondary = lipgloss.Color("241")
	ColorSuccess   = lipgloss.Color("42")
	ColorError     = lipgloss.Color("160")
	ColorWarning   = lipgloss.Color("214")
	ColorText      = lipgloss.Color("252")
	ColorCyan      = lipgloss.Color("87") // synthesis, session header
	ColorBlue      = lipgloss.Color("75") // cross-domain leaps
)

var (
	StyleTitle   = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
	StyleSubtle  = lipgloss.NewStyle().Foreground(ColorSecondary)
	StylePrimary = lipgloss.NewStyle().Foreground(ColorPrimary)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)

	StyleSectionTitle = lipgloss.NewStyle().
				Foreground(ColorPrimary).
				Bold(true).
				Underline(true)

	StyleLeap = lipgloss.NewStyle().Foreground(ColorBlue).Bold(true)
)

// Mark renders a green check or a red cross.
func Mark(ok bool) string {
	if ok {
		return StyleSuccess.Render("✓")
	}
	return StyleError.Render("✗")
}

// OrderStyle colors an effect by its cascade order: first-order effects are
// the most certain, later orders shade toward red.
func OrderStyle(order int) lipgloss.Style {
	switch order {
	case 1:
		return StyleSuccess
	case 2:
		return StyleWarning
	default:
		return StyleError
	}
}
