package prompts

import (
	"strings"
	"testing"

	"github.com/josephgoksu/cascade/internal/effects"
	"github.com/josephgoksu/cascade/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHints map[string]string

func (h stubHints) Hints(ids []string, stage HintStage) string {
	var sb strings.Builder
	for _, id := range ids {
		if v, ok := h[string(stage)+"/"+id]; ok {
			sb.WriteString(v + "\n")
		}
	}
	return sb.String()
}

func testSession() *session.Session {
	return &session.Session{
		ID:         "sess-1",
		Mode:       session.ModeRedTeam,
		Seeds:      session.Seeds{Concepts: []string{"agent-ops", "rag"}, Patterns: []string{"guardrails"}},
		Objectives: []string{"cut support load"},
		Constraints: session.Constraints{
			BudgetTier:  "medium",
			TimeHorizon: "6 months",
			Extras:      map[string]string{"region": "eu"},
		},
	}
}

func TestModeGuidanceCoversEveryMode(t *testing.T) {
	for _, m := range session.Modes() {
		assert.NotEmpty(t, ModeGuidance(m), "mode %s", m)
	}
	assert.Empty(t, ModeGuidance(session.Mode("astrology")))
}

func TestFirstOrder(t *testing.T) {
	c := NewComposer(stubHints{
		"first-order/agent-ops": "HINT-A",
		"first-order/rag":       "HINT-B",
		"cascade/agent-ops":     "WRONG-STAGE",
	})
	p, err := c.FirstOrder(FirstOrderInput{Session: testSession(), ContextSummary: "digest text"})
	require.NoError(t, err)

	assert.Equal(t, systemFirstOrder, p.System)
	assert.Contains(t, p.User, "Concepts: agent-ops, rag")
	assert.Contains(t, p.User, "Patterns: guardrails")
	assert.NotContains(t, p.User, "Practices:")
	assert.Contains(t, p.User, "- cut support load")
	assert.Contains(t, p.User, "- budget tier: medium")
	assert.Contains(t, p.User, "- region: eu")
	assert.Contains(t, p.User, "digest text")
	// concatenated in seed order
	assert.Less(t, strings.Index(p.User, "HINT-A"), strings.Index(p.User, "HINT-B"))
	assert.NotContains(t, p.User, "WRONG-STAGE")
}

func TestFirstOrderWithoutHints(t *testing.T) {
	p, err := NewComposer(nil).FirstOrder(FirstOrderInput{Session: testSession()})
	require.NoError(t, err)
	assert.NotContains(t, p.User, "PERSPECTIVE HINTS")
	assert.NotContains(t, p.User, "CONTEXT:")
}

func TestHigherOrder(t *testing.T) {
	first := []effects.Node{
		{ID: "fo-1", Title: "On-call load rises", Domain: effects.DomainOperations, Impact: -2},
		{ID: "fo-2", Title: "Faster answers", Domain: effects.DomainProduct, Impact: 3},
	}

	tests := []struct {
		name         string
		mode         session.Mode
		wantGuidance bool
	}{
		{"known mode", session.ModeRedTeam, true},
		{"unknown mode", session.Mode("astrology"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSession()
			s.Mode = tt.mode
			p, err := NewComposer(stubHints{"cascade/rag": "CASCADE-HINT"}).HigherOrder(HigherOrderInput{Session: s, FirstOrder: first})
			require.NoError(t, err)

			assert.Contains(t, p.User, "[fo-1] On-call load rises (operations, impact -2)")
			assert.Contains(t, p.User, "[fo-2] Faster answers (product, impact +3)")
			assert.Contains(t, p.User, "CASCADE-HINT")
			if tt.wantGuidance {
				assert.Contains(t, p.User, "MODE GUIDANCE:")
				assert.Contains(t, p.User, "blast radius")
			} else {
				assert.NotContains(t, p.User, "MODE GUIDANCE:")
			}
		})
	}
}

func TestSynthesisGroupsByOrderAndRendersLeaps(t *testing.T) {
	nodes := []effects.Node{
		{ID: "so-1", Title: "Second", Order: 2, Domain: effects.DomainCost},
		{ID: "fo-1", Title: "First", Order: 1, Domain: effects.DomainOperations},
	}
	leaps := []effects.Leap{{Trigger: "Index passes 1M docs", Result: "Latency doubles", Confidence: 0.6}}

	p, err := NewComposer(nil).Synthesis(SynthesisInput{Session: testSession(), Effects: nodes, Leaps: leaps})
	require.NoError(t, err)

	assert.Contains(t, p.User, "Index passes 1M docs → Latency doubles (0.60)")
	assert.Less(t, strings.Index(p.User, "First-order:"), strings.Index(p.User, "Second-order:"))
	assert.NotContains(t, p.User, "Third-order:")
}

func TestDeepDive(t *testing.T) {
	s := testSession()
	s.Synthesis = &effects.Synthesis{
		Risks:         effects.TextList{"r1", "r2", "r3", "r4"},
		Opportunities: effects.TextList{"o1"},
	}
	selected := []effects.Node{{
		ID: "fo-1", Title: "On-call load rises", Order: 1, Domain: effects.DomainOperations,
		Impact: -2, Likelihood: 0.7, Justification: "agents page humans",
	}}

	t.Run("secondary ignores prior findings", func(t *testing.T) {
		p, err := NewComposer(nil).DeepDive(DeepDiveInput{
			Session: s, Level: effects.LevelSecondary, Selected: selected, PriorFindings: "SHOULD-NOT-APPEAR",
		})
		require.NoError(t, err)
		assert.Equal(t, systemSecondary, p.System)
		assert.Contains(t, p.User, "agents page humans")
		assert.Contains(t, p.User, "- r3")
		assert.NotContains(t, p.User, "- r4")
		assert.Contains(t, p.User, `"type": "secondary"`)
		assert.NotContains(t, p.User, "SHOULD-NOT-APPEAR")
		assert.NotContains(t, p.User, "USER FOCUS")
	})

	t.Run("tertiary with prior findings and question", func(t *testing.T) {
		p, err := NewComposer(nil).DeepDive(DeepDiveInput{
			Session: s, Level: effects.LevelTertiary, Selected: selected,
			PriorFindings: "Hidden risks:\n- token leak", UserQuestion: "What breaks first at night?",
		})
		require.NoError(t, err)
		assert.Equal(t, systemTertiary, p.System)
		assert.Contains(t, p.User, "PRIOR SECONDARY FINDINGS:\nHidden risks:\n- token leak")
		assert.Contains(t, p.User, `"type": "tertiary"`)
		assert.True(t, strings.HasSuffix(p.User, "What breaks first at night?"))
	})

	t.Run("tertiary without prior findings", func(t *testing.T) {
		p, err := NewComposer(nil).DeepDive(DeepDiveInput{Session: s, Level: effects.LevelTertiary, Selected: selected})
		require.NoError(t, err)
		assert.NotContains(t, p.User, "PRIOR SECONDARY FINDINGS")
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := NewComposer(nil).DeepDive(DeepDiveInput{Session: s, Level: "quaternary"})
		assert.Error(t, err)
	})
}

func TestRenderSecondaryFindings(t *testing.T) {
	assert.Empty(t, RenderSecondaryFindings(effects.EmptyFindings(effects.LevelTertiary)))
	assert.Empty(t, RenderSecondaryFindings(effects.EmptyFindings(effects.LevelSecondary)))

	f := effects.EmptyFindings(effects.LevelSecondary)
	f.Secondary.HiddenRisks = []effects.HiddenRisk{{Risk: "token leak", Severity: "high"}}
	f.Secondary.CrossConnections = []effects.CrossConnection{{From: "fo-1", To: "so-2", Relationship: "shared queue"}}
	f.Secondary.RevisedKPIs = []effects.KPI{{Name: "MTTR", Target: "< 30m"}}
	f.Secondary.OpenQuestions = effects.TextList{"q1", "q2", "q3", "q4", "q5", "q6", "q7"}

	out := RenderSecondaryFindings(f)
	assert.Contains(t, out, "- token leak [high]")
	assert.Contains(t, out, "- fo-1 -> so-2: shared queue")
	assert.Contains(t, out, "- MTTR (target < 30m)")
	assert.Contains(t, out, "- q5")
	assert.NotContains(t, out, "- q6")
	assert.Contains(t, out, "- ... 2 more")
	assert.NotContains(t, out, "Implementation steps")
}

func TestRenderConstraintsEmpty(t *testing.T) {
	assert.Equal(t, "- (none stated)", RenderConstraints(session.Constraints{}))
}
