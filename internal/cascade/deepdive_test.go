package cascade

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/josephgoksu/cascade/internal/effects"
	"github.com/josephgoksu/cascade/internal/llm"
	"github.com/josephgoksu/cascade/internal/parser"
	"github.com/josephgoksu/cascade/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedSession() *session.Session {
	s := minimalSession()
	s.EffectGraph = effects.Graph{
		Nodes: []effects.Node{
			{ID: "fo-1", Title: "On-call load rises", Order: 1, Domain: effects.DomainOperations, Likelihood: 0.7, Impact: -2, Confidence: 0.6},
			{ID: "so-1", Title: "Burnout", Order: 2, Domain: effects.DomainOrganization, Likelihood: 0.4, Impact: -3, Confidence: 0.5},
		},
		Edges: []effects.Edge{{From: "fo-1", To: "so-1", Confidence: 0.5}},
	}
	s.Synthesis = &effects.Synthesis{Risks: effects.TextList{"Pager fatigue drives attrition"}}
	return s
}

func secondaryRecord() effects.DeepDiveRecord {
	f := effects.EmptyFindings(effects.LevelSecondary)
	f.Secondary.HiddenRisks = []effects.HiddenRisk{{Risk: "Escalation policy has no owner"}}
	return effects.DeepDiveRecord{
		ID:    "dive-sec00001",
		Level: effects.LevelSecondary,
		Effects: []effects.Node{
			{ID: "sec-1", Title: "Rota gaps", Order: 2, Domain: effects.DomainOrganization, Likelihood: 0.5, Impact: -1, Confidence: 0.5, ParentEffectID: "so-1"},
		},
		Findings: f,
	}
}

const secondaryDiveResponse = `{
  "subEffects": [
    {"id": "sec-1", "parentEffectId": "so-1", "title": "Rota gaps", "domain": "organization", "likelihood": 0.5, "impact": -1, "confidence": 0.5, "references": ["agent-ops"]},
    {"id": "sec-2", "parentEffectId": "zzz", "title": "Alert noise", "order": 1, "domain": "operations", "likelihood": 0.6, "impact": -2, "confidence": 0.5}
  ],
  "connections": [
    {"from": "so-1", "to": "sec-1", "mechanism": "refines", "confidence": 0.6},
    {"from": "sec-2", "to": "nowhere", "mechanism": "dangling", "confidence": 0.6}
  ],
  "findings": {"type": "secondary", "hiddenRisks": [{"risk": "Escalation policy has no owner", "severity": "high"}]}
}`

func TestGenerateDeepDiveSecondary(t *testing.T) {
	fm := &fakeChatModel{responses: []string{secondaryDiveResponse}}
	rc := newRecordingComposer()
	s := completedSession()

	var events []progressEvent
	rec, err := newTestEngine(fm, rc).GenerateDeepDive(context.Background(), s,
		[]string{"so-1", "unknown-id", "fo-1"}, effects.LevelSecondary, "", recordProgress(&events))
	require.NoError(t, err)

	assert.Equal(t, "dive-test0001", rec.ID)
	assert.Equal(t, fixedNow, rec.CreatedAt)
	assert.Equal(t, []string{"so-1", "fo-1"}, rec.SelectedNodeIDs)
	require.Len(t, rec.SelectedNodes, 2)

	require.Len(t, rec.Effects, 2)
	// explicit parent, order inherited from it
	assert.Equal(t, "so-1", rec.Effects[0].ParentEffectID)
	assert.Equal(t, []string{"parent:so-1"}, rec.Effects[0].References)
	assert.Equal(t, 2, rec.Effects[0].Order)
	// unknown parent falls back to the first selected effect
	assert.Equal(t, "so-1", rec.Effects[1].ParentEffectID)
	assert.Equal(t, 1, rec.Effects[1].Order)

	require.Len(t, rec.Edges, 1)
	assert.Equal(t, "sec-1", rec.Edges[0].To)

	require.NotNil(t, rec.Findings.Secondary)
	assert.Equal(t, "high", rec.Findings.Secondary.HiddenRisks[0].Severity)

	require.Len(t, s.DeepDives, 1)
	assert.Equal(t, rec.ID, s.DeepDives[0].ID)

	require.Equal(t, 1, fm.callCount())
	assert.Equal(t, llm.DefaultDeepDiveMaxTokens, fm.calls[0].maxTokens)
	assert.Len(t, events, 4)
	assert.Equal(t, []string{"deep-dive"}, rc.order)
}

func TestGenerateDeepDiveFailsFastOnEmptySelection(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
	}{
		{"nil", nil},
		{"empty", []string{}},
		{"all unknown", []string{"nope", "also-nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm := &fakeChatModel{responses: []string{secondaryDiveResponse}}
			rc := newRecordingComposer()
			s := completedSession()

			rec, err := newTestEngine(fm, rc).GenerateDeepDive(context.Background(), s, tt.ids, effects.LevelSecondary, "", nil)
			assert.ErrorIs(t, err, ErrNoValidSelection)
			assert.Nil(t, rec)
			assert.Zero(t, fm.callCount())
			assert.Empty(t, rc.order)
			assert.Empty(t, s.DeepDives)
		})
	}
}

func TestGenerateDeepDiveInvalidLevel(t *testing.T) {
	fm := &fakeChatModel{}
	_, err := newTestEngine(fm, newRecordingComposer()).GenerateDeepDive(context.Background(), completedSession(), []string{"fo-1"}, "quaternary", "", nil)
	assert.ErrorIs(t, err, ErrInvalidLevel)
	assert.Zero(t, fm.callCount())
}

func TestGenerateDeepDiveTertiaryContext(t *testing.T) {
	t.Run("uses the latest secondary findings", func(t *testing.T) {
		s := completedSession()
		older := secondaryRecord()
		older.ID = "dive-sec00000"
		older.Findings.Secondary.HiddenRisks[0].Risk = "Stale risk from an older dive"
		tertiary := effects.DeepDiveRecord{ID: "dive-ter00000", Level: effects.LevelTertiary, Findings: effects.EmptyFindings(effects.LevelTertiary)}
		s.DeepDives = []effects.DeepDiveRecord{older, secondaryRecord(), tertiary}

		fm := &fakeChatModel{responses: []string{`{"subEffects": []}`}}
		rc := newRecordingComposer()
		rec, err := newTestEngine(fm, rc).GenerateDeepDive(context.Background(), s, []string{"sec-1"}, effects.LevelTertiary, "", nil)
		require.NoError(t, err)

		assert.NotEmpty(t, rc.deepDive.PriorFindings)
		assert.Contains(t, rc.deepDive.PriorFindings, "Escalation policy has no owner")
		assert.NotContains(t, rc.deepDive.PriorFindings, "Stale risk")
		assert.Contains(t, fm.userMessage(0), "PRIOR SECONDARY FINDINGS")

		// missing findings recovered with tertiary defaults
		assert.Equal(t, effects.EmptyFindings(effects.LevelTertiary), rec.Findings)
		assert.Len(t, s.DeepDives, 4)
	})

	t.Run("no secondary dive omits the block", func(t *testing.T) {
		fm := &fakeChatModel{responses: []string{`{"subEffects": []}`}}
		rc := newRecordingComposer()
		_, err := newTestEngine(fm, rc).GenerateDeepDive(context.Background(), completedSession(), []string{"fo-1"}, effects.LevelTertiary, "", nil)
		require.NoError(t, err)

		assert.Empty(t, rc.deepDive.PriorFindings)
		assert.NotContains(t, fm.userMessage(0), "PRIOR SECONDARY FINDINGS")
	})
}

func TestGenerateDeepDiveUserQuestion(t *testing.T) {
	fm := &fakeChatModel{responses: []string{`{"subEffects": []}`}}
	rec, err := newTestEngine(fm, newRecordingComposer()).GenerateDeepDive(context.Background(), completedSession(),
		[]string{"fo-1"}, effects.LevelSecondary, "Which alerts can we delete?", nil)
	require.NoError(t, err)

	assert.Equal(t, "Which alerts can we delete?", rec.UserQuestion)
	assert.Contains(t, fm.userMessage(0), "Which alerts can we delete?")
}

func TestGenerateDeepDiveFailureLeavesHistoryUntouched(t *testing.T) {
	tests := []struct {
		name     string
		response string
		check    func(t *testing.T, err error)
	}{
		{
			name:     "undecodable response",
			response: "Sorry, I can only answer in prose.",
			check: func(t *testing.T, err error) {
				var pe *parser.ParseError
				assert.ErrorAs(t, err, &pe)
			},
		},
		{
			name:     "sub-effect out of range",
			response: `{"subEffects": [{"id": "sec-9", "title": "t", "order": 2, "domain": "cost", "likelihood": 1.5, "impact": 0, "confidence": 0.5}]}`,
			check: func(t *testing.T, err error) {
				var pe *parser.ParseError
				assert.ErrorAs(t, err, &pe)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := completedSession()
			s.DeepDives = []effects.DeepDiveRecord{secondaryRecord()}

			fm := &fakeChatModel{responses: []string{tt.response}}
			rec, err := newTestEngine(fm, newRecordingComposer()).GenerateDeepDive(context.Background(), s, []string{"fo-1"}, effects.LevelSecondary, "", nil)
			require.Error(t, err)
			assert.Nil(t, rec)

			var se *StageError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, StageDeepDive, se.Stage)
			tt.check(t, err)

			require.Len(t, s.DeepDives, 1)
			assert.Equal(t, "dive-sec00001", s.DeepDives[0].ID)
		})
	}
}

func TestGenerateDeepDiveSelectsNodesFromPriorDives(t *testing.T) {
	s := completedSession()
	s.DeepDives = []effects.DeepDiveRecord{secondaryRecord()}

	fm := &fakeChatModel{responses: []string{`{"subEffects": [{"id": "ter-1", "title": "Page the backup", "domain": "operations", "likelihood": 0.5, "impact": 1, "confidence": 0.5}]}`}}
	rec, err := newTestEngine(fm, newRecordingComposer()).GenerateDeepDive(context.Background(), s, []string{"sec-1"}, effects.LevelTertiary, "", nil)
	require.NoError(t, err)

	require.Len(t, rec.Effects, 1)
	assert.Equal(t, "sec-1", rec.Effects[0].ParentEffectID)
	assert.Equal(t, 2, rec.Effects[0].Order)
}

func TestGenerateDeepDiveRepeatSecondary(t *testing.T) {
	const response = `{
  "subEffects": [{"id": "sec-1", "parentEffectId": "fo-1", "title": "Rota gaps", "domain": "organization", "likelihood": 0.5, "impact": -1, "confidence": 0.5}],
  "connections": [{"from": "fo-1", "to": "sec-1", "mechanism": "refines", "confidence": 0.6}]
}`
	fm := &fakeChatModel{responses: []string{response, response}}
	ids := []string{"dive-aaaa0001", "dive-bbbb0002"}
	eng := New(fm,
		WithPromptBuilder(newRecordingComposer()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string {
			id := ids[0]
			ids = ids[1:]
			return id
		}),
	)
	s := completedSession()

	first, err := eng.GenerateDeepDive(context.Background(), s, []string{"fo-1"}, effects.LevelSecondary, "", nil)
	require.NoError(t, err)
	second, err := eng.GenerateDeepDive(context.Background(), s, []string{"fo-1"}, effects.LevelSecondary, "", nil)
	require.NoError(t, err)

	require.Len(t, s.DeepDives, 2)
	assert.Equal(t, "sec-1", first.Effects[0].ID)
	assert.Equal(t, "dive-bbbb0002/sec-1", second.Effects[0].ID)

	// the connection follows the renamed sub-effect
	require.Len(t, second.Edges, 1)
	assert.Equal(t, effects.Edge{From: "fo-1", To: "dive-bbbb0002/sec-1", Mechanism: "refines", Confidence: 0.6}, second.Edges[0])

	// every effect in the session is addressable for later dives
	all := s.AllNodes()
	assert.Len(t, effects.NodeIndex(all), len(all))
}

func TestGenerateDeepDiveRenamesIDsTakenByTopLevelEffects(t *testing.T) {
	fm := &fakeChatModel{responses: []string{`{
  "subEffects": [{"id": "fo-1", "title": "Handoffs slip", "order": 2, "domain": "operations", "likelihood": 0.5, "impact": -1, "confidence": 0.5}],
  "connections": [{"from": "so-1", "to": "fo-1", "mechanism": "feeds", "confidence": 0.5}]
}`}}
	s := completedSession()

	rec, err := newTestEngine(fm, newRecordingComposer()).GenerateDeepDive(context.Background(), s, []string{"so-1"}, effects.LevelSecondary, "", nil)
	require.NoError(t, err)

	require.Len(t, rec.Effects, 1)
	assert.Equal(t, "dive-test0001/fo-1", rec.Effects[0].ID)
	require.Len(t, rec.Edges, 1)
	assert.Equal(t, "dive-test0001/fo-1", rec.Edges[0].To)
	// the top-level effect is untouched
	assert.Equal(t, "On-call load rises", s.EffectGraph.Nodes[0].Title)
}
