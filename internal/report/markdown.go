// Package report renders sessions as Markdown documents.
package report

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/josephgoksu/cascade/internal/effects"
	"github.com/josephgoksu/cascade/internal/session"
	"github.com/spf13/afero"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleCase builds a fresh Caser per call; a Caser must not be shared
// between goroutines.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// Markdown renders the full session: inputs, effect graph, leaps,
// synthesis and every deep dive in append order.
func Markdown(s *session.Session) string {
	var sb strings.Builder

	name := s.Name
	if name == "" {
		name = s.ID
	}
	fmt.Fprintf(&sb, "# Cascade: %s\n\n", name)
	fmt.Fprintf(&sb, "- **Session**: `%s`\n", s.ID)
	fmt.Fprintf(&sb, "- **Mode**: %s\n", titleCase(strings.ReplaceAll(string(s.Mode), "-", " ")))
	if !s.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, "- **Created**: %s\n", s.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))
	}
	writeSeeds(&sb, s.Seeds)
	if len(s.Objectives) > 0 {
		sb.WriteString("\n## Objectives\n")
		for _, o := range s.Objectives {
			fmt.Fprintf(&sb, "- %s\n", o)
		}
	}
	writeConstraints(&sb, s.Constraints)

	if !s.HasResult() {
		sb.WriteString("\n_No cascade has been generated for this session._\n")
		return sb.String()
	}

	writeGraph(&sb, s.EffectGraph)
	writeLeaps(&sb, s.Leaps)
	writeSynthesis(&sb, s.Synthesis)
	for i := range s.DeepDives {
		writeDeepDive(&sb, &s.DeepDives[i])
	}
	return sb.String()
}

// Export writes Markdown(s) to path on fs, creating parent directories.
func Export(fs afero.Fs, s *session.Session, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := afero.WriteFile(fs, path, []byte(Markdown(s)), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// DeepDiveMarkdown renders one deep-dive record on its own.
func DeepDiveMarkdown(rec *effects.DeepDiveRecord) string {
	var sb strings.Builder
	writeDeepDive(&sb, rec)
	return strings.TrimLeft(sb.String(), "\n")
}

// DefaultFilename is the export name used when no path is given.
func DefaultFilename(s *session.Session) string {
	return fmt.Sprintf("cascade-%s.md", s.ID)
}

func writeSeeds(sb *strings.Builder, seeds session.Seeds) {
	for _, group := range []struct {
		label string
		ids   []string
	}{
		{"Concepts", seeds.Concepts},
		{"Patterns", seeds.Patterns},
		{"Practices", seeds.Practices},
	} {
		if len(group.ids) > 0 {
			fmt.Fprintf(sb, "- **%s**: %s\n", group.label, strings.Join(group.ids, ", "))
		}
	}
}

func writeConstraints(sb *strings.Builder, c session.Constraints) {
	rows := [][2]string{
		{"budget tier", c.BudgetTier},
		{"latency target", c.LatencyTarget},
		{"accuracy target", c.AccuracyTarget},
		{"compliance profile", c.ComplianceProfile},
		{"time horizon", c.TimeHorizon},
	}
	keys := make([]string, 0, len(c.Extras))
	for k := range c.Extras {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rows = append(rows, [2]string{k, c.Extras[k]})
	}

	var lines []string
	for _, r := range rows {
		if r[1] != "" {
			lines = append(lines, fmt.Sprintf("- %s: %s", titleCase(r[0]), r[1]))
		}
	}
	if len(lines) == 0 {
		return
	}
	sb.WriteString("\n## Constraints\n")
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString("\n")
}

var orderHeadings = map[int]string{
	effects.OrderFirst:  "First-Order Effects",
	effects.OrderSecond: "Second-Order Effects",
	effects.OrderThird:  "Third-Order Effects",
}

func writeGraph(sb *strings.Builder, g effects.Graph) {
	groups := effects.ByOrder(g.Nodes)
	orders := make([]int, 0, len(groups))
	for o := range groups {
		orders = append(orders, o)
	}
	sort.Ints(orders)

	for _, o := range orders {
		heading, ok := orderHeadings[o]
		if !ok {
			heading = fmt.Sprintf("Order %d Effects", o)
		}
		fmt.Fprintf(sb, "\n## %s\n\n", heading)
		writeNodeTable(sb, groups[o])
	}

	if len(g.Edges) > 0 {
		sb.WriteString("\n## Causal Links\n\n")
		for _, e := range g.Edges {
			fmt.Fprintf(sb, "- `%s` → `%s`: %s (%.2f", e.From, e.To, e.Mechanism, e.Confidence)
			if e.Delay != "" {
				fmt.Fprintf(sb, ", delay %s", e.Delay)
			}
			sb.WriteString(")\n")
		}
	}
}

func writeNodeTable(sb *strings.Builder, nodes []effects.Node) {
	sb.WriteString("| ID | Effect | Domain | Likelihood | Impact | Confidence |\n")
	sb.WriteString("|----|--------|--------|------------|--------|------------|\n")
	for _, n := range nodes {
		fmt.Fprintf(sb, "| `%s` | %s | %s | %.2f | %+d | %.2f |\n",
			n.ID, escapeCell(n.Title), titleCase(string(n.Domain)), n.Likelihood, n.Impact, n.Confidence)
	}
	for _, n := range nodes {
		if n.Justification == "" {
			continue
		}
		fmt.Fprintf(sb, "\n- **%s**: %s", n.ID, n.Justification)
	}
	sb.WriteString("\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func writeLeaps(sb *strings.Builder, leaps []effects.Leap) {
	if len(leaps) == 0 {
		return
	}
	sb.WriteString("\n## Threshold Leaps\n\n")
	for _, l := range leaps {
		fmt.Fprintf(sb, "- **%s** → %s (%.2f)\n", l.Trigger, l.Result, l.Confidence)
		if l.Threshold != "" {
			fmt.Fprintf(sb, "  - Threshold: %s\n", l.Threshold)
		}
		if l.Mechanism != "" {
			fmt.Fprintf(sb, "  - Mechanism: %s\n", l.Mechanism)
		}
		for _, ev := range l.Evidence {
			fmt.Fprintf(sb, "  - Evidence: %s\n", ev)
		}
	}
}

func writeSynthesis(sb *strings.Builder, syn *effects.Synthesis) {
	sb.WriteString("\n## Strategy\n")
	for _, sec := range []struct {
		heading string
		items   effects.TextList
		ordered bool
	}{
		{"Risks", syn.Risks, false},
		{"Opportunities", syn.Opportunities, false},
		{"Recommended Practices", syn.RecommendedPractices, false},
		{"KPIs", syn.KPIs, false},
		{"Action Plan", syn.ActionPlan, true},
		{"Implementation Order", syn.ImplementationOrder, true},
		{"Success Metrics", syn.SuccessMetrics, false},
	} {
		if len(sec.items) == 0 {
			continue
		}
		fmt.Fprintf(sb, "\n### %s\n", sec.heading)
		for i, item := range sec.items {
			if sec.ordered {
				fmt.Fprintf(sb, "%d. %s\n", i+1, item)
			} else {
				fmt.Fprintf(sb, "- %s\n", item)
			}
		}
	}
}

func writeDeepDive(sb *strings.Builder, rec *effects.DeepDiveRecord) {
	fmt.Fprintf(sb, "\n## %s Deep Dive `%s`\n\n", titleCase(string(rec.Level)), rec.ID)
	fmt.Fprintf(sb, "- **Selected**: %s\n", strings.Join(rec.SelectedNodeIDs, ", "))
	if rec.UserQuestion != "" {
		fmt.Fprintf(sb, "- **Question**: %s\n", rec.UserQuestion)
	}
	if !rec.CreatedAt.IsZero() {
		fmt.Fprintf(sb, "- **Created**: %s\n", rec.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))
	}
	if len(rec.Effects) > 0 {
		sb.WriteString("\n")
		writeNodeTable(sb, rec.Effects)
	}
	writeLeaps(sb, rec.Leaps)

	switch {
	case rec.Findings.Secondary != nil:
		writeSecondary(sb, rec.Findings.Secondary)
	case rec.Findings.Tertiary != nil:
		writeTertiary(sb, rec.Findings.Tertiary)
	}
}

func bullets(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n### %s\n", heading)
	for _, it := range items {
		fmt.Fprintf(sb, "- %s\n", it)
	}
}

func joinDetail(main string, details ...string) string {
	var kept []string
	for _, d := range details {
		if d != "" {
			kept = append(kept, d)
		}
	}
	if len(kept) == 0 {
		return main
	}
	return main + " (" + strings.Join(kept, "; ") + ")"
}

func writeSecondary(sb *strings.Builder, f *effects.SecondaryFindings) {
	var risks, conns, steps, kpis []string
	for _, r := range f.HiddenRisks {
		risks = append(risks, joinDetail(r.Risk, r.Severity, r.Mitigation))
	}
	for _, c := range f.CrossConnections {
		conns = append(conns, fmt.Sprintf("%s ↔ %s: %s", c.From, c.To, c.Relationship))
	}
	for _, s := range f.ImplementationSteps {
		steps = append(steps, joinDetail(s.Step, s.Owner, s.Duration))
	}
	for _, k := range f.RevisedKPIs {
		kpis = append(kpis, joinDetail(k.Name, k.Target, k.Rationale))
	}
	bullets(sb, "Hidden Risks", risks)
	bullets(sb, "Cross Connections", conns)
	bullets(sb, "Implementation Steps", steps)
	bullets(sb, "Revised KPIs", kpis)
	bullets(sb, "Open Questions", f.OpenQuestions)
}

func writeTertiary(sb *strings.Builder, f *effects.TertiaryFindings) {
	if len(f.Runbook) > 0 {
		sb.WriteString("\n### Runbook\n")
		for i, step := range f.Runbook {
			fmt.Fprintf(sb, "%d. %s\n", i+1, joinDetail(step.Action, step.Verification, step.Rollback))
		}
	}
	var tools []string
	for _, t := range f.ToolRecommendations {
		tools = append(tools, joinDetail(t.Tool, t.Purpose, strings.Join(t.Alternatives, ", ")))
	}
	bullets(sb, "Tool Recommendations", tools)

	if len(f.FMEAEntries) > 0 {
		sb.WriteString("\n### FMEA\n\n")
		sb.WriteString("| Failure Mode | Effect | S | L | D | RPN |\n")
		sb.WriteString("|--------------|--------|---|---|---|-----|\n")
		for _, e := range f.FMEAEntries {
			fmt.Fprintf(sb, "| %s | %s | %d | %d | %d | %d |\n",
				escapeCell(e.FailureMode), escapeCell(e.Effect), e.Severity, e.Likelihood, e.Detection, e.RPN)
		}
	}

	var projections, options []string
	for _, p := range f.Projections {
		projections = append(projections, joinDetail(p.Metric, p.Baseline, p.Projected, p.Horizon))
	}
	for _, m := range f.MitigationComparison {
		options = append(options, joinDetail(m.Option, m.Cost, m.Effectiveness, m.Tradeoffs))
	}
	bullets(sb, "Projections", projections)
	bullets(sb, "Mitigation Comparison", options)
}
