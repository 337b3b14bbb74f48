package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestRenderPanel(t *testing.T) {
	out := renderPanel("Session sess-1", "Mode: balanced", ColorCyan, 0)

	assert.Contains(t, out, "Session sess-1")
	assert.Contains(t, out, "Mode: balanced")
	assert.Contains(t, out, "╭")
}

func TestRenderPanel_NoTitle(t *testing.T) {
	out := renderPanel("", "only body", ColorError, 0)

	assert.Contains(t, out, "only body")
	// top border, body, bottom border
	assert.Len(t, strings.Split(out, "\n"), 3)
}

func TestRenderPanel_WrapsToWidth(t *testing.T) {
	body := strings.Repeat("retrieval latency grows with corpus size ", 5)

	out := renderPanel("Synthesis", body, ColorCyan, 30)

	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 32)
	}
	assert.Greater(t, len(strings.Split(out, "\n")), 4)
}

func TestRenderErrorPanel(t *testing.T) {
	out := RenderErrorPanel("expand stage failed", "bad json")

	assert.Contains(t, out, "expand stage failed")
	assert.Contains(t, out, "bad json")
}
