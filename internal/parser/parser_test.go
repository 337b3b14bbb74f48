package parser

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/josephgoksu/cascade/internal/effects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const effectsJSON = `{
  "effects": [
    {"id": "fo-1", "title": "On-call load rises", "order": 1, "domain": "operations",
     "likelihood": 0.7, "impact": -2, "justification": "agents page humans", "confidence": 0.6,
     "references": ["agent-ops"]},
    {"id": "so-1", "title": "Burnout", "order": 2, "domain": "organization",
     "likelihood": 0.4, "impact": -3, "justification": "sustained paging", "confidence": 0.5,
     "references": []}
  ],
  "edges": [{"from": "fo-1", "to": "so-1", "mechanism": "fatigue", "confidence": 0.5, "delay": "2-4 weeks"}],
  "leaps": [{"trigger": "pages > 10/night", "threshold": "10", "result": "attrition", "mechanism": "fatigue", "evidence": [], "confidence": 0.3}]
}`

func wrappings(payload string) map[string]string {
	return map[string]string{
		"raw":             payload,
		"fenced":          "```json\n" + payload + "\n```",
		"prose-wrapped":   "Here is the analysis you asked for.\n\n" + payload + "\n\nLet me know if you need more.",
		"fenced in prose": "Sure:\n```\n" + payload + "\n```\nDone.",
	}
}

func TestParseEffectsRoundTrip(t *testing.T) {
	want, err := ParseEffects(effectsJSON)
	require.NoError(t, err)
	require.Len(t, want.Effects, 2)
	require.Len(t, want.Edges, 1)
	require.Len(t, want.Leaps, 1)

	for name, input := range wrappings(effectsJSON) {
		t.Run(name, func(t *testing.T) {
			got, err := ParseEffects(input)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("ParseEffects() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseEffectsDefaultsEdgesAndLeaps(t *testing.T) {
	got, err := ParseEffects(`{"effects": [{"id": "fo-1", "title": "t", "order": 1, "domain": "cost", "likelihood": 0.1, "impact": 0, "confidence": 0.1}]}`)
	require.NoError(t, err)
	assert.NotNil(t, got.Edges)
	assert.Empty(t, got.Edges)
	assert.NotNil(t, got.Leaps)
}

func TestParseEffectsRejects(t *testing.T) {
	node := func(field string) string {
		return fmt.Sprintf(`{"effects": [{"id": "fo-1", "title": "t", "order": 1, "domain": "cost", "likelihood": 0.5, "impact": 1, "confidence": 0.5, %s}]}`, field)
	}

	tests := []struct {
		name  string
		input string
	}{
		{"not json", "I could not produce effects."},
		{"missing effects list", `{"edges": []}`},
		{"order out of range", node(`"order": 4`)},
		{"likelihood above one", node(`"likelihood": 1.2`)},
		{"likelihood as percentage", node(`"likelihood": 70`)},
		{"negative confidence", node(`"confidence": -0.1`)},
		{"impact out of range", node(`"impact": 6`)},
		{"unknown domain", node(`"domain": "marketing"`)},
		{"duplicate ids", `{"effects": [
			{"id": "a", "title": "t", "order": 1, "domain": "cost", "likelihood": 0.5, "impact": 1, "confidence": 0.5},
			{"id": "a", "title": "u", "order": 1, "domain": "cost", "likelihood": 0.5, "impact": 1, "confidence": 0.5}]}`},
		{"edge confidence out of range", `{"effects": [], "edges": [{"from": "a", "to": "b", "confidence": 2}]}`},
		{"leap without trigger", `{"effects": [], "leaps": [{"result": "x", "confidence": 0.5}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEffects(tt.input)
			require.Error(t, err)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, StageEffects, pe.Stage)
			assert.NotEmpty(t, pe.Excerpt)
		})
	}
}

func TestParseSynthesis(t *testing.T) {
	payload := `{"risks": ["vendor lock-in"], "opportunities": ["faster triage"], "kpis": [{"name": "MTTR", "target": "30m"}]}`

	for name, input := range wrappings(payload) {
		t.Run(name, func(t *testing.T) {
			s, err := ParseSynthesis(input)
			require.NoError(t, err)
			assert.Equal(t, effects.TextList{"vendor lock-in"}, s.Risks)
			assert.Equal(t, effects.TextList{"name: MTTR; target: 30m"}, s.KPIs)
			assert.NotNil(t, s.ActionPlan)
			assert.Empty(t, s.ActionPlan)
		})
	}

	t.Run("decode failure", func(t *testing.T) {
		_, err := ParseSynthesis("no synthesis today")
		var pe *ParseError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, StageSynthesis, pe.Stage)
	})
}
