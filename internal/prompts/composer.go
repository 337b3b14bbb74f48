/*
Package prompts builds the (system, user) instruction pairs for every
pipeline stage and deep-dive level.
*/
package prompts

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/josephgoksu/cascade/internal/effects"
	"github.com/josephgoksu/cascade/internal/session"
)

// HintStage selects which perspective hint fragment to look up.
type HintStage string

const (
	HintFirstOrder HintStage = "first-order"
	HintCascade    HintStage = "cascade"
	HintSynthesis  HintStage = "synthesis"
)

// HintSource looks up perspective hints for seed ids. Unknown ids contribute
// nothing.
type HintSource interface {
	Hints(ids []string, stage HintStage) string
}

// Pair is a system and user instruction for one generation round trip.
type Pair struct {
	System string
	User   string
}

// synthesisExcerptSize caps the top-level risks/opportunities quoted in deep dives.
const synthesisExcerptSize = 3

var funcs = template.FuncMap{
	"join": func(s []string) string { return strings.Join(s, ", ") },
	"signed": func(n int) string {
		if n > 0 {
			return fmt.Sprintf("+%d", n)
		}
		return fmt.Sprintf("%d", n)
	},
	"frac": func(f float64) string { return fmt.Sprintf("%.2f", f) },
}

var (
	firstOrderTmpl  = template.Must(template.New("first-order").Funcs(funcs).Parse(firstOrderTemplate))
	higherOrderTmpl = template.Must(template.New("higher-order").Funcs(funcs).Parse(higherOrderTemplate))
	synthesisTmpl   = template.Must(template.New("synthesis").Funcs(funcs).Parse(synthesisTemplate))
	deepDiveTmpl    = template.Must(template.New("deep-dive").Funcs(funcs).Parse(deepDiveTemplate))
)

// Composer renders stage prompts from session input.
type Composer struct {
	hints HintSource
}

// NewComposer creates a composer. hints may be nil.
func NewComposer(hints HintSource) *Composer {
	return &Composer{hints: hints}
}

func (c *Composer) lookupHints(s *session.Session, stage HintStage) string {
	if c.hints == nil {
		return ""
	}
	return c.hints.Hints(s.Seeds.IDs(), stage)
}

// FirstOrderInput feeds the first-order stage.
type FirstOrderInput struct {
	Session        *session.Session
	ContextSummary string
}

// FirstOrder builds the first-order prompt.
func (c *Composer) FirstOrder(in FirstOrderInput) (Pair, error) {
	s := in.Session
	user, err := render(firstOrderTmpl, map[string]any{
		"Mode":           s.Mode,
		"Seeds":          s.Seeds,
		"Objectives":     s.Objectives,
		"Constraints":    RenderConstraints(s.Constraints),
		"ContextSummary": strings.TrimSpace(in.ContextSummary),
		"Hints":          c.lookupHints(s, HintFirstOrder),
	})
	if err != nil {
		return Pair{}, err
	}
	return Pair{System: systemFirstOrder, User: user}, nil
}

// HigherOrderInput feeds the higher-order stage.
type HigherOrderInput struct {
	Session    *session.Session
	FirstOrder []effects.Node
}

// HigherOrder builds the cascade prompt from parsed first-order effects.
func (c *Composer) HigherOrder(in HigherOrderInput) (Pair, error) {
	s := in.Session
	user, err := render(higherOrderTmpl, map[string]any{
		"Mode":        s.Mode,
		"Guidance":    ModeGuidance(s.Mode),
		"FirstOrder":  in.FirstOrder,
		"Objectives":  s.Objectives,
		"Constraints": RenderConstraints(s.Constraints),
		"Hints":       c.lookupHints(s, HintCascade),
	})
	if err != nil {
		return Pair{}, err
	}
	return Pair{System: systemHigherOrder, User: user}, nil
}

// SynthesisInput feeds the synthesis stage.
type SynthesisInput struct {
	Session *session.Session
	Effects []effects.Node
	Leaps   []effects.Leap
}

type tier struct {
	Label string
	Nodes []effects.Node
}

// Synthesis builds the synthesis prompt over the full effect set.
func (c *Composer) Synthesis(in SynthesisInput) (Pair, error) {
	s := in.Session
	byOrder := effects.ByOrder(in.Effects)
	var tiers []tier
	for _, t := range []struct {
		order int
		label string
	}{
		{effects.OrderFirst, "First-order"},
		{effects.OrderSecond, "Second-order"},
		{effects.OrderThird, "Third-order"},
	} {
		if nodes := byOrder[t.order]; len(nodes) > 0 {
			tiers = append(tiers, tier{Label: t.label, Nodes: nodes})
		}
	}

	user, err := render(synthesisTmpl, map[string]any{
		"Mode":        s.Mode,
		"Tiers":       tiers,
		"Leaps":       in.Leaps,
		"Objectives":  s.Objectives,
		"Constraints": RenderConstraints(s.Constraints),
		"Hints":       c.lookupHints(s, HintSynthesis),
	})
	if err != nil {
		return Pair{}, err
	}
	return Pair{System: systemSynthesis, User: user}, nil
}

// DeepDiveInput feeds a deep dive. PriorFindings is the rendered excerpt of
// the latest secondary dive, used for tertiary dives only.
type DeepDiveInput struct {
	Session       *session.Session
	Level         effects.Level
	Selected      []effects.Node
	PriorFindings string
	UserQuestion  string
}

// DeepDive builds a secondary or tertiary drill-down prompt.
func (c *Composer) DeepDive(in DeepDiveInput) (Pair, error) {
	if !in.Level.IsValid() {
		return Pair{}, fmt.Errorf("invalid deep dive level: %q", in.Level)
	}
	s := in.Session

	system, schema, prefix := systemSecondary, secondaryFindingsSchema, "sec"
	prior := ""
	if in.Level == effects.LevelTertiary {
		system, schema, prefix = systemTertiary, tertiaryFindingsSchema, "ter"
		prior = strings.TrimSpace(in.PriorFindings)
	}

	var risks, opps []string
	if s.Synthesis != nil {
		risks = head(s.Synthesis.Risks, synthesisExcerptSize)
		opps = head(s.Synthesis.Opportunities, synthesisExcerptSize)
	}

	user, err := render(deepDiveTmpl, map[string]any{
		"Level":          string(in.Level),
		"Mode":           s.Mode,
		"Selected":       in.Selected,
		"Constraints":    RenderConstraints(s.Constraints),
		"Risks":          risks,
		"Opportunities":  opps,
		"PriorFindings":  prior,
		"IDPrefix":       prefix,
		"FindingsSchema": schema,
		"UserQuestion":   strings.TrimSpace(in.UserQuestion),
	})
	if err != nil {
		return Pair{}, err
	}
	return Pair{System: system, User: user}, nil
}

// RenderConstraints renders constraints as "- key: value" lines. Extras are
// sorted by key.
func RenderConstraints(c session.Constraints) string {
	var lines []string
	add := func(k, v string) {
		if v = strings.TrimSpace(v); v != "" {
			lines = append(lines, fmt.Sprintf("- %s: %s", k, v))
		}
	}
	add("budget tier", c.BudgetTier)
	add("latency target", c.LatencyTarget)
	add("accuracy target", c.AccuracyTarget)
	add("compliance profile", c.ComplianceProfile)
	add("time horizon", c.TimeHorizon)

	keys := make([]string, 0, len(c.Extras))
	for k := range c.Extras {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		add(k, c.Extras[k])
	}

	if len(lines) == 0 {
		return "- (none stated)"
	}
	return strings.Join(lines, "\n")
}

func render(t *template.Template, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute %s template: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
