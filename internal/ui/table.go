package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/josephgoksu/cascade/internal/utils"
)

// Align controls how a column's cells are padded.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Table renders rows as fixed-width terminal columns. Widths count runes,
// so effect titles with non-ASCII text line up.
type Table struct {
	Headers []string
	Rows    [][]string
	// MaxWidth caps every column (0 = no cap). Longer cells end in "...".
	MaxWidth int
	// Align is per column; missing entries are left aligned.
	Align []Align
}

// ColumnWidths returns the rendered width of each column.
func (t *Table) ColumnWidths() []int {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	if t.MaxWidth > 0 {
		for i := range widths {
			widths[i] = min(widths[i], t.MaxWidth)
		}
	}
	return widths
}

func (t *Table) align(col int) Align {
	if col < len(t.Align) {
		return t.Align[col]
	}
	return AlignLeft
}

// Render outputs the table to a string.
func (t *Table) Render() string {
	if len(t.Headers) == 0 {
		return ""
	}

	widths := t.ColumnWidths()
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	cellStyle := lipgloss.NewStyle().Foreground(ColorText)
	dimStyle := lipgloss.NewStyle().Foreground(ColorSecondary)

	line := func(cells []string, style lipgloss.Style) string {
		out := make([]string, len(t.Headers))
		for i := range t.Headers {
			val := ""
			if i < len(cells) {
				val = utils.Truncate(cells[i], widths[i])
			}
			out[i] = style.Render(pad(val, widths[i], t.align(i)))
		}
		return " " + strings.Join(out, "  ") + "\n"
	}

	var sb strings.Builder
	sb.WriteString(line(t.Headers, headerStyle))

	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = dimStyle.Render(strings.Repeat("─", w))
	}
	sb.WriteString(" " + strings.Join(sep, "──") + "\n")

	for _, row := range t.Rows {
		sb.WriteString(line(row, cellStyle))
	}
	return sb.String()
}

func pad(s string, width int, a Align) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if a == AlignRight {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}
