package catalog

import (
	"strings"
	"testing"

	"github.com/josephgoksu/cascade/internal/prompts"
	"github.com/josephgoksu/cascade/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c := Default()
	require.NotEmpty(t, c.Entries())

	e, ok := c.Get("agent-ops")
	require.True(t, ok)
	assert.Equal(t, KindConcept, e.Kind)
	assert.NotEmpty(t, e.Hints.FirstOrder)
}

func TestLoadRejectsDuplicates(t *testing.T) {
	_, err := Load(strings.NewReader(`
entries:
  - id: a
    name: A
  - id: a
    name: A again
`))
	assert.ErrorContains(t, err, "duplicate catalog id")

	_, err = Load(strings.NewReader("entries:\n  - name: no id\n"))
	assert.Error(t, err)
}

func TestHints(t *testing.T) {
	c, err := Load(strings.NewReader(`
entries:
  - id: a
    hints:
      firstOrder: first A
      cascade: cascade A
  - id: b
    hints:
      firstOrder: first B
`))
	require.NoError(t, err)

	tests := []struct {
		name  string
		ids   []string
		stage prompts.HintStage
		want  string
	}{
		{"seed order kept", []string{"b", "a"}, prompts.HintFirstOrder, "- [b] first B\n- [a] first A\n"},
		{"unknown ids skipped", []string{"zzz", "a"}, prompts.HintCascade, "- [a] cascade A\n"},
		{"empty hint skipped", []string{"b"}, prompts.HintCascade, ""},
		{"duplicates not merged", []string{"a", "a"}, prompts.HintCascade, "- [a] cascade A\n- [a] cascade A\n"},
		{"no synthesis hints", []string{"a", "b"}, prompts.HintSynthesis, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Hints(tt.ids, tt.stage))
		})
	}
}

func TestSummary(t *testing.T) {
	out := Default().Summary(session.Seeds{
		Concepts: []string{"rag", "not-in-catalog"},
		Patterns: []string{"circuit-breaker"},
	})

	assert.Contains(t, out, "Concepts:\n- Retrieval-Augmented Generation (rag): ")
	assert.Contains(t, out, "- not-in-catalog\n")
	assert.Contains(t, out, "Patterns:\n- Circuit Breaker (circuit-breaker)")
	assert.NotContains(t, out, "Practices:")
	assert.Empty(t, Default().Summary(session.Seeds{}))
}
