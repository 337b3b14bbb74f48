package effects

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterEdges(t *testing.T) {
	known := NodeIndex([]Node{{ID: "a"}}, []Node{{ID: "b"}})
	edges := []Edge{
		{From: "a", To: "b"},
		{From: "a", To: "missing"},
		{From: "nope", To: "b"},
	}

	kept, dropped := FilterEdges(edges, known)
	assert.Equal(t, []Edge{{From: "a", To: "b"}}, kept)
	assert.Len(t, dropped, 2)
}

func TestConcat_DoesNotMutateInputs(t *testing.T) {
	first := Graph{Nodes: make([]Node, 1, 4)}
	first.Nodes[0] = Node{ID: "a"}
	second := Graph{Nodes: []Node{{ID: "b"}}, Edges: []Edge{{From: "a", To: "b"}}}

	g := Concat(first, second)
	require.Len(t, g.Nodes, 2)
	assert.Len(t, g.Edges, 1)
	assert.Len(t, first.Nodes, 1)

	g.Nodes[0].ID = "changed"
	assert.Equal(t, "a", first.Nodes[0].ID)
}

func TestConcat_Empty(t *testing.T) {
	g := Concat()
	assert.NotNil(t, g.Nodes)
	assert.NotNil(t, g.Edges)
}

func TestByOrder(t *testing.T) {
	groups := ByOrder([]Node{{ID: "a", Order: 1}, {ID: "b", Order: 2}, {ID: "c", Order: 1}})
	assert.Len(t, groups[1], 2)
	assert.Len(t, groups[2], 1)
	assert.Empty(t, groups[3])
}

func TestFindings_JSONRoundTrip(t *testing.T) {
	f := EmptyFindings(LevelTertiary)
	f.Tertiary.FMEAEntries = append(f.Tertiary.FMEAEntries, FMEAEntry{FailureMode: "drift", Severity: 2, Likelihood: 2, Detection: 2, RPN: 8})

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"tertiary"`)
	assert.Contains(t, string(data), `"fmeaEntries"`)

	var back Findings
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, LevelTertiary, back.Level)
	require.NotNil(t, back.Tertiary)
	assert.Nil(t, back.Secondary)
	assert.Equal(t, 8, back.Tertiary.FMEAEntries[0].RPN)
}

func TestFindings_UnknownTypeStaysZero(t *testing.T) {
	var f Findings
	require.NoError(t, json.Unmarshal([]byte(`{"hiddenRisks":["x"]}`), &f))
	assert.True(t, f.IsZero())
}

func TestFindings_LooseElements(t *testing.T) {
	var f Findings
	raw := `{"type":"secondary","hiddenRisks":["token leakage",{"risk":"drift","severity":"high"}],"openQuestions":[{"question":"who owns it?"}]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &f))
	require.NotNil(t, f.Secondary)
	assert.Equal(t, "token leakage", f.Secondary.HiddenRisks[0].Risk)
	assert.Equal(t, "high", f.Secondary.HiddenRisks[1].Severity)
	assert.Equal(t, TextList{"question: who owns it?"}, f.Secondary.OpenQuestions)

	f.Normalize()
	assert.NotNil(t, f.Secondary.CrossConnections)
	assert.NotNil(t, f.Secondary.RevisedKPIs)
}

func TestTextList_SingleString(t *testing.T) {
	var l TextList
	require.NoError(t, json.Unmarshal([]byte(`"only one"`), &l))
	assert.Equal(t, TextList{"only one"}, l)
}

func TestEmptyFindings(t *testing.T) {
	s := EmptyFindings(LevelSecondary)
	assert.Equal(t, LevelSecondary, s.Level)
	require.NotNil(t, s.Secondary)
	assert.NotNil(t, s.Secondary.HiddenRisks)
	assert.NotNil(t, s.Secondary.OpenQuestions)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "null")
}
