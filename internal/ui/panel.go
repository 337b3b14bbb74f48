package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// maxPanelWidth keeps long synthesis paragraphs readable on wide terminals.
const maxPanelWidth = 100

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// panelWidth returns the wrap width for panels written to stdout, or 0 when
// stdout is not a terminal and content should not be re-wrapped.
func panelWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 0
	}
	// border + padding take four columns
	return min(w-4, maxPanelWidth)
}

func renderPanel(title, body string, border lipgloss.Color, width int) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
	if width > 0 {
		style = style.Width(width)
	}
	if title != "" {
		body = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).Render(title) + "\n" + body
	}
	return style.Render(body)
}

// RenderInfoPanel frames session headers and dive summaries.
func RenderInfoPanel(title, body string) string {
	return renderPanel(title, body, ColorCyan, panelWidth())
}

// RenderErrorPanel frames provider and stage failures.
func RenderErrorPanel(title, body string) string {
	return renderPanel(title, body, ColorError, panelWidth())
}
