package mcp

import (
	"fmt"
	"strings"

	"github.com/josephgoksu/cascade/internal/app"
	"github.com/josephgoksu/cascade/internal/effects"
	"github.com/josephgoksu/cascade/internal/report"
	"github.com/josephgoksu/cascade/internal/session"
)

// FormatRunResult converts a completed run into Markdown. It is the full
// session report plus a usage footer.
func FormatRunResult(res *app.RunResult) string {
	if res == nil || res.Session == nil {
		return "No result."
	}
	var sb strings.Builder
	sb.WriteString(report.Markdown(res.Session))
	fmt.Fprintf(&sb, "\n---\nTokens: %d", res.Usage.TotalTokens)
	if res.Usage.EstimatedCostUSD > 0 {
		fmt.Fprintf(&sb, " | Est. cost: $%.4f", res.Usage.EstimatedCostUSD)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Next: call `deep_dive` with session_id `%s` and node_ids from the tables above.\n", res.Session.ID)
	return sb.String()
}

// FormatDeepDive renders a single deep dive record.
func FormatDeepDive(rec *effects.DeepDiveRecord) string {
	if rec == nil {
		return "No deep dive result."
	}
	return report.DeepDiveMarkdown(rec)
}

// FormatSession renders the stored session as Markdown.
func FormatSession(s *session.Session) string {
	if s == nil {
		return "Session not found."
	}
	return report.Markdown(s)
}

// FormatSessionList converts session summaries into a compact list.
func FormatSessionList(items []session.Summary) string {
	if len(items) == 0 {
		return "No sessions yet. Call `run_cascade` to start one."
	}
	var sb strings.Builder
	sb.WriteString("## Sessions\n")
	for _, it := range items {
		status := "pending"
		if it.Completed {
			status = fmt.Sprintf("%d effects", it.EffectCount)
		}
		name := it.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(&sb, "- `%s` %s [%s] %s, %d deep dive(s)\n", it.ID, name, it.Mode, status, it.DeepDiveCount)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatError returns a Markdown error block.
func FormatError(message string) string {
	return fmt.Sprintf("## Error\n\n**Details**: %s", message)
}
