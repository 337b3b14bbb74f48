package cascade

import (
	"context"
	"errors"
	"fmt"

	"github.com/josephgoksu/cascade/internal/effects"
	"github.com/josephgoksu/cascade/internal/parser"
	"github.com/josephgoksu/cascade/internal/prompts"
	"github.com/josephgoksu/cascade/internal/session"
)

// parentRefPrefix marks the synthetic reference a sub-effect carries to its parent.
const parentRefPrefix = "parent:"

// GenerateDeepDive drills into the selected effects at level and appends the
// new record to s.DeepDives. Selected ids may name top-level effects or
// effects from earlier dives. When none resolve, ErrNoValidSelection is
// returned before any generation. On failure s.DeepDives is left untouched.
func (e *Engine) GenerateDeepDive(ctx context.Context, s *session.Session, selectedIDs []string, level effects.Level, userQuestion string, progress ProgressFunc) (*effects.DeepDiveRecord, error) {
	if s == nil {
		return nil, errors.New("session is required")
	}
	if !level.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLevel, level)
	}

	// resolve-selection
	progress.report("Resolving selection", progressStage1)
	lookup := effects.NodeIndex(s.AllNodes())
	selected := make([]effects.Node, 0, len(selectedIDs))
	resolvedIDs := make([]string, 0, len(selectedIDs))
	for _, id := range selectedIDs {
		if n, ok := lookup[id]; ok {
			selected = append(selected, n)
			resolvedIDs = append(resolvedIDs, id)
		}
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: none of %v are known effects", ErrNoValidSelection, selectedIDs)
	}

	log := e.logger.With("session", s.ID, "level", level)

	// context assembly
	var prior string
	if level == effects.LevelTertiary {
		if rec, ok := s.LatestDeepDive(effects.LevelSecondary); ok {
			prior = prompts.RenderSecondaryFindings(rec.Findings)
			log.Debug("using prior secondary findings", "dive", rec.ID)
		}
	}

	// generate
	progress.report(fmt.Sprintf("Generating %s deep dive", level), progressStage2)
	pair, err := e.prompts.DeepDive(prompts.DeepDiveInput{
		Session:       s,
		Level:         level,
		Selected:      selected,
		PriorFindings: prior,
		UserQuestion:  userQuestion,
	})
	if err != nil {
		return nil, stageErr(StageDeepDive, err)
	}
	out, err := e.exec.Execute(ctx, pair, e.deepDiveMaxTokens)
	if err != nil {
		return nil, stageErr(StageDeepDive, err)
	}

	// parse-and-attach
	progress.report("Parsing deep dive", progressStage3)
	payload, err := parser.ParseDeepDive(out.Text, level)
	if err != nil {
		return nil, stageErr(StageDeepDive, err)
	}
	for _, w := range payload.Warnings {
		log.Warn("deep dive recovered", "detail", w)
	}

	id := e.newID()
	subs, renamed := attachSubEffects(id, payload.SubEffects, selected, lookup)
	if len(renamed) > 0 {
		log.Debug("namespaced reused sub-effect ids", "dive", id, "count", len(renamed))
	}

	rec := effects.DeepDiveRecord{
		ID:              id,
		Level:           level,
		SelectedNodeIDs: resolvedIDs,
		SelectedNodes:   selected,
		UserQuestion:    userQuestion,
		Effects:         subs,
		Edges:           e.keepKnownEdges(renameEndpoints(payload.Connections, renamed), effects.NodeIndex(s.AllNodes(), subs)),
		Leaps:           stampLeaps(payload.Leaps),
		Findings:        payload.Findings,
		Usage:           out.Usage,
		CreatedAt:       e.now(),
	}
	s.DeepDives = append(s.DeepDives, rec)

	log.Info("deep dive complete", "dive", rec.ID, "effects", len(rec.Effects), "edges", len(rec.Edges))
	progress.report("Complete", progressDone)
	return &rec, nil
}

// attachSubEffects links each sub-effect to its parent. A parent that is not
// one of the selected effects falls back to the first selected effect; a missing order is
// inherited from the parent. A sub-effect whose id is already taken by an
// effect in the session is renamed to "<diveID>/<id>"; the returned map holds
// those renames.
func attachSubEffects(diveID string, subs []effects.Node, selected []effects.Node, lookup map[string]effects.Node) ([]effects.Node, map[string]string) {
	parents := effects.NodeIndex(selected)
	renamed := make(map[string]string)
	out := make([]effects.Node, 0, len(subs))
	for _, n := range subs {
		if _, clash := lookup[n.ID]; clash {
			ns := diveID + "/" + n.ID
			renamed[n.ID] = ns
			n.ID = ns
		}
		parent, ok := parents[n.ParentEffectID]
		if !ok {
			parent = selected[0]
		}
		n.ParentEffectID = parent.ID
		n.References = []string{parentRefPrefix + parent.ID}
		if n.Order == 0 {
			n.Order = parent.Order
		}
		out = append(out, n)
	}
	return out, renamed
}

// renameEndpoints points connections at renamed sub-effects. Within a dive a
// reused id means the new sub-effect, not the older effect it shadows.
func renameEndpoints(edges []effects.Edge, renamed map[string]string) []effects.Edge {
	if len(renamed) == 0 {
		return edges
	}
	out := make([]effects.Edge, len(edges))
	for i, ed := range edges {
		if ns, ok := renamed[ed.From]; ok {
			ed.From = ns
		}
		if ns, ok := renamed[ed.To]; ok {
			ed.To = ns
		}
		out[i] = ed
	}
	return out
}
