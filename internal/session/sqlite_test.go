package session

import (
	"errors"
	"testing"
	"time"

	"github.com/josephgoksu/cascade/internal/effects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_CreateAndGet(t *testing.T) {
	store := newTestStore(t)

	sess := &Session{
		Name:        "agent ops rollout",
		Mode:        ModeRedTeam,
		Seeds:       Seeds{Concepts: []string{"agent-ops"}, Patterns: []string{"circuit-breaker"}},
		Objectives:  []string{"reduce toil"},
		Constraints: Constraints{BudgetTier: "medium", TimeHorizon: "6 months", Extras: map[string]string{"region": "eu"}},
	}
	require.NoError(t, store.Create(sess))
	assert.NotEmpty(t, sess.ID)
	assert.False(t, sess.CreatedAt.IsZero())

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.Name, got.Name)
	assert.Equal(t, ModeRedTeam, got.Mode)
	assert.Equal(t, sess.Seeds, got.Seeds)
	assert.Equal(t, sess.Constraints, got.Constraints)
	assert.Nil(t, got.Synthesis)
	assert.Empty(t, got.DeepDives)
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get("sess-nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLiteStore_SaveResultAndDeepDives(t *testing.T) {
	store := newTestStore(t)
	sess := &Session{Mode: ModeConsolidate, Seeds: Seeds{Concepts: []string{"agent-ops"}}}
	require.NoError(t, store.Create(sess))

	sess.EffectGraph = effects.Graph{
		Nodes: []effects.Node{{ID: "e1", Title: "t", Order: 1, Domain: effects.DomainCost}},
		Edges: []effects.Edge{},
	}
	sess.Leaps = []effects.Leap{{Trigger: "load doubles", Evidence: []string{"x"}}}
	sess.Synthesis = &effects.Synthesis{Risks: effects.TextList{"vendor lock-in"}}
	require.NoError(t, store.SaveResult(sess))

	for i, level := range []effects.Level{effects.LevelSecondary, effects.LevelTertiary, effects.LevelSecondary} {
		rec := effects.DeepDiveRecord{
			ID:        "dive-" + string(rune('a'+i)),
			Level:     level,
			Findings:  effects.EmptyFindings(level),
			CreatedAt: time.Now(),
		}
		require.NoError(t, store.AppendDeepDive(sess.ID, rec))
	}

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Synthesis)
	assert.Equal(t, effects.TextList{"vendor lock-in"}, got.Synthesis.Risks)
	require.Len(t, got.DeepDives, 3)
	assert.Equal(t, []string{"dive-a", "dive-b", "dive-c"}, []string{got.DeepDives[0].ID, got.DeepDives[1].ID, got.DeepDives[2].ID})
	require.NotNil(t, got.DeepDives[1].Findings.Tertiary)

	latest, ok := got.LatestDeepDive(effects.LevelSecondary)
	require.True(t, ok)
	assert.Equal(t, "dive-c", latest.ID)

	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].EffectCount)
	assert.Equal(t, 3, list[0].DeepDiveCount)
	assert.True(t, list[0].Completed)
}

func TestSQLiteStore_AppendDeepDiveUnknownSession(t *testing.T) {
	store := newTestStore(t)
	err := store.AppendDeepDive("sess-missing", effects.DeepDiveRecord{ID: "dive-1", Level: effects.LevelSecondary})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := newTestStore(t)
	sess := &Session{}
	require.NoError(t, store.Create(sess))
	require.NoError(t, store.AppendDeepDive(sess.ID, effects.DeepDiveRecord{ID: "dive-1", Level: effects.LevelSecondary}))

	require.NoError(t, store.Delete(sess.ID))
	_, err := store.Get(sess.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(store.Delete(sess.ID), ErrNotFound))
}

func TestSQLiteStore_FindIDsByPrefix(t *testing.T) {
	store := newTestStore(t)
	for _, id := range []string{"sess-ab_1", "sess-abx1", "sess-ab%2", "sess-zz"} {
		require.NoError(t, store.Create(&Session{ID: id}))
	}

	ids, err := store.FindIDsByPrefix("sess-ab")
	require.NoError(t, err)
	assert.Equal(t, []string{"sess-ab%2", "sess-ab_1", "sess-abx1"}, ids)

	// LIKE wildcards in the prefix match literally
	ids, err = store.FindIDsByPrefix("sess-ab_")
	require.NoError(t, err)
	assert.Equal(t, []string{"sess-ab_1"}, ids)

	ids, err = store.FindIDsByPrefix("sess-nope")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
