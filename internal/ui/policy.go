package ui

import (
	"fmt"
	"strings"

	"github.com/josephgoksu/cascade/internal/policy"
)

// RenderDecision renders a policy check result.
func RenderDecision(d *policy.Decision) string {
	var sb strings.Builder

	if d.IsAllowed() {
		fmt.Fprintf(&sb, "%s %s passed %d polic%s\n",
			Mark(true), d.SessionID, len(d.Policies), plural(len(d.Policies), "y", "ies"))
	} else {
		fmt.Fprintf(&sb, "%s %s failed policy checks\n", Mark(false), d.SessionID)
	}

	if len(d.Violations) > 0 {
		sb.WriteString("\n")
		sb.WriteString(StyleSectionTitle.Render("Violations"))
		sb.WriteString("\n")
		for _, v := range d.Violations {
			fmt.Fprintf(&sb, "  %s %s\n", StyleError.Render("•"), v)
		}
	}
	if len(d.Warnings) > 0 {
		sb.WriteString("\n")
		sb.WriteString(StyleSectionTitle.Render("Warnings"))
		sb.WriteString("\n")
		for _, w := range d.Warnings {
			fmt.Fprintf(&sb, "  %s %s\n", StyleWarning.Render("!"), w)
		}
	}
	return sb.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
