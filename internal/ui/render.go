package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/josephgoksu/cascade/internal/effects"
	"github.com/josephgoksu/cascade/internal/session"
)

var orderLabels = map[int]string{
	effects.OrderFirst:  "First-order effects",
	effects.OrderSecond: "Second-order effects",
	effects.OrderThird:  "Third-order effects",
}

// RenderResult renders a session's effect graph, leaps and synthesis.
func RenderResult(s *session.Session) string {
	var sb strings.Builder

	header := fmt.Sprintf("mode: %s   seeds: %s", s.Mode, strings.Join(s.Seeds.IDs(), ", "))
	sb.WriteString(RenderInfoPanel("Session "+s.ID, header))
	sb.WriteString("\n\n")

	if !s.HasResult() {
		sb.WriteString(StyleSubtle.Render("No cascade has been generated yet."))
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString(renderNodes(s.EffectGraph.Nodes))

	if len(s.Leaps) > 0 {
		sb.WriteString(StyleSectionTitle.Render("Threshold leaps"))
		sb.WriteString("\n")
		for _, l := range s.Leaps {
			fmt.Fprintf(&sb, "  %s %s → %s (%.2f)\n", StyleLeap.Render("⚡"), l.Trigger, l.Result, l.Confidence)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(renderSynthesis(s.Synthesis))

	if len(s.DeepDives) > 0 {
		fmt.Fprintf(&sb, "%s\n", StyleSubtle.Render(fmt.Sprintf("%d deep dive(s) recorded", len(s.DeepDives))))
	}
	return sb.String()
}

func renderNodes(nodes []effects.Node) string {
	var sb strings.Builder
	groups := effects.ByOrder(nodes)
	orders := make([]int, 0, len(groups))
	for o := range groups {
		orders = append(orders, o)
	}
	sort.Ints(orders)

	for _, o := range orders {
		label, ok := orderLabels[o]
		if !ok {
			label = fmt.Sprintf("Order %d effects", o)
		}
		sb.WriteString(OrderStyle(o).Bold(true).Render(label))
		sb.WriteString("\n")
		sb.WriteString(nodeTable(groups[o]).Render())
		sb.WriteString("\n")
	}
	return sb.String()
}

func nodeTable(nodes []effects.Node) *Table {
	t := &Table{
		Headers:  []string{"ID", "Domain", "L", "I", "Conf", "Title"},
		MaxWidth: 60,
		Align:    []Align{AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight},
	}
	for _, n := range nodes {
		t.Rows = append(t.Rows, []string{
			n.ID,
			string(n.Domain),
			fmt.Sprintf("%.2f", n.Likelihood),
			fmt.Sprintf("%+d", n.Impact),
			fmt.Sprintf("%.2f", n.Confidence),
			n.Title,
		})
	}
	return t
}

func renderSynthesis(syn *effects.Synthesis) string {
	if syn == nil {
		return ""
	}
	var sb strings.Builder
	sections := []struct {
		title string
		items effects.TextList
	}{
		{"Risks", syn.Risks},
		{"Opportunities", syn.Opportunities},
		{"Recommended practices", syn.RecommendedPractices},
		{"KPIs", syn.KPIs},
		{"Action plan", syn.ActionPlan},
		{"Implementation order", syn.ImplementationOrder},
		{"Success metrics", syn.SuccessMetrics},
	}
	for _, sec := range sections {
		if len(sec.items) == 0 {
			continue
		}
		sb.WriteString(StyleSectionTitle.Render(sec.title))
		sb.WriteString("\n")
		for _, item := range sec.items {
			fmt.Fprintf(&sb, "  • %s\n", item)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderDeepDive renders one deep-dive record.
func RenderDeepDive(rec *effects.DeepDiveRecord) string {
	var sb strings.Builder

	title := fmt.Sprintf("%s deep dive %s", rec.Level, rec.ID)
	body := "selected: " + strings.Join(rec.SelectedNodeIDs, ", ")
	if rec.UserQuestion != "" {
		body += "\nquestion: " + rec.UserQuestion
	}
	sb.WriteString(RenderInfoPanel(title, body))
	sb.WriteString("\n\n")

	if len(rec.Effects) > 0 {
		sb.WriteString(StyleSectionTitle.Render("Sub-effects"))
		sb.WriteString("\n")
		sb.WriteString(nodeTable(rec.Effects).Render())
		sb.WriteString("\n")
	}

	switch {
	case rec.Findings.Secondary != nil:
		sb.WriteString(renderSecondary(rec.Findings.Secondary))
	case rec.Findings.Tertiary != nil:
		sb.WriteString(renderTertiary(rec.Findings.Tertiary))
	}

	fmt.Fprintf(&sb, "%s\n", StyleSubtle.Render(fmt.Sprintf("tokens: %d", rec.Usage.TotalTokens)))
	return sb.String()
}

func renderSecondary(f *effects.SecondaryFindings) string {
	var sb strings.Builder
	list := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		sb.WriteString(StyleSectionTitle.Render(title))
		sb.WriteString("\n")
		for _, it := range items {
			fmt.Fprintf(&sb, "  • %s\n", it)
		}
		sb.WriteString("\n")
	}

	var risks, conns, steps, kpis []string
	for _, r := range f.HiddenRisks {
		risks = append(risks, withSuffix(r.Risk, r.Severity))
	}
	for _, c := range f.CrossConnections {
		conns = append(conns, fmt.Sprintf("%s ↔ %s: %s", c.From, c.To, c.Relationship))
	}
	for _, s := range f.ImplementationSteps {
		steps = append(steps, withSuffix(s.Step, s.Owner))
	}
	for _, k := range f.RevisedKPIs {
		kpis = append(kpis, withSuffix(k.Name, k.Target))
	}
	list("Hidden risks", risks)
	list("Cross connections", conns)
	list("Implementation steps", steps)
	list("Revised KPIs", kpis)
	list("Open questions", f.OpenQuestions)
	return sb.String()
}

func renderTertiary(f *effects.TertiaryFindings) string {
	var sb strings.Builder

	if len(f.Runbook) > 0 {
		sb.WriteString(StyleSectionTitle.Render("Runbook"))
		sb.WriteString("\n")
		for i, step := range f.Runbook {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, step.Action)
		}
		sb.WriteString("\n")
	}
	if len(f.FMEAEntries) > 0 {
		sb.WriteString(StyleSectionTitle.Render("FMEA"))
		sb.WriteString("\n")
		t := &Table{
			Headers:  []string{"Failure mode", "S", "L", "D", "RPN"},
			MaxWidth: 50,
			Align:    []Align{AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight},
		}
		for _, e := range f.FMEAEntries {
			t.Rows = append(t.Rows, []string{
				e.FailureMode,
				fmt.Sprint(e.Severity),
				fmt.Sprint(e.Likelihood),
				fmt.Sprint(e.Detection),
				fmt.Sprint(e.RPN),
			})
		}
		sb.WriteString(t.Render())
		sb.WriteString("\n")
	}
	if len(f.ToolRecommendations) > 0 {
		sb.WriteString(StyleSectionTitle.Render("Tools"))
		sb.WriteString("\n")
		for _, tr := range f.ToolRecommendations {
			fmt.Fprintf(&sb, "  • %s\n", withSuffix(tr.Tool, tr.Purpose))
		}
		sb.WriteString("\n")
	}
	if len(f.MitigationComparison) > 0 {
		sb.WriteString(StyleSectionTitle.Render("Mitigation options"))
		sb.WriteString("\n")
		for _, m := range f.MitigationComparison {
			fmt.Fprintf(&sb, "  • %s\n", withSuffix(m.Option, m.Effectiveness))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func withSuffix(main, extra string) string {
	if extra == "" {
		return main
	}
	return fmt.Sprintf("%s (%s)", main, extra)
}

// RenderSessionList renders stored sessions as a table.
func RenderSessionList(items []session.Summary) string {
	if len(items) == 0 {
		return StyleSubtle.Render("No sessions yet. Start one with `cascade run`.") + "\n"
	}
	t := &Table{
		Headers:  []string{"ID", "Name", "Mode", "Effects", "Dives", "Created"},
		MaxWidth: 40,
		Align:    []Align{AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignRight},
	}
	for _, it := range items {
		status := fmt.Sprint(it.EffectCount)
		if !it.Completed {
			status = "-"
		}
		t.Rows = append(t.Rows, []string{
			it.ID,
			it.Name,
			string(it.Mode),
			status,
			fmt.Sprint(it.DeepDiveCount),
			it.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	return t.Render()
}
