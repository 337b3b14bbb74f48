package prompts

import (
	"fmt"
	"strings"

	"github.com/josephgoksu/cascade/internal/effects"
)

// findingsExcerptSize caps items per field in a rendered findings block.
const findingsExcerptSize = 5

// RenderSecondaryFindings condenses secondary findings into a text block for
// a tertiary prompt. Non-secondary or empty findings render as "".
func RenderSecondaryFindings(f effects.Findings) string {
	sf := f.Secondary
	if f.Level != effects.LevelSecondary || sf == nil {
		return ""
	}

	var sb strings.Builder
	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		sb.WriteString(title + ":\n")
		for i, it := range items {
			if i == findingsExcerptSize {
				sb.WriteString(fmt.Sprintf("- ... %d more\n", len(items)-i))
				break
			}
			sb.WriteString("- " + it + "\n")
		}
	}

	risks := make([]string, 0, len(sf.HiddenRisks))
	for _, r := range sf.HiddenRisks {
		risks = append(risks, withDetail(r.Risk, r.Severity, r.Mitigation))
	}
	section("Hidden risks", risks)

	conns := make([]string, 0, len(sf.CrossConnections))
	for _, c := range sf.CrossConnections {
		if c.From != "" && c.To != "" {
			conns = append(conns, fmt.Sprintf("%s -> %s: %s", c.From, c.To, c.Relationship))
		} else {
			conns = append(conns, c.Relationship)
		}
	}
	section("Cross connections", conns)

	steps := make([]string, 0, len(sf.ImplementationSteps))
	for _, s := range sf.ImplementationSteps {
		steps = append(steps, withDetail(s.Step, s.Owner, s.Duration))
	}
	section("Implementation steps", steps)

	kpis := make([]string, 0, len(sf.RevisedKPIs))
	for _, k := range sf.RevisedKPIs {
		if k.Target != "" {
			kpis = append(kpis, fmt.Sprintf("%s (target %s)", k.Name, k.Target))
		} else {
			kpis = append(kpis, k.Name)
		}
	}
	section("Revised KPIs", kpis)
	section("Open questions", sf.OpenQuestions)

	return strings.TrimRight(sb.String(), "\n")
}

func withDetail(main string, details ...string) string {
	var kept []string
	for _, d := range details {
		if d != "" {
			kept = append(kept, d)
		}
	}
	if len(kept) == 0 {
		return main
	}
	return fmt.Sprintf("%s [%s]", main, strings.Join(kept, "; "))
}
