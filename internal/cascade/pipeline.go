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

// maxFallbackReferences is how many seed ids a first-order effect is linked
// to when it names none of the seeds itself.
const maxFallbackReferences = 2

// Result is the output of a complete pipeline run.
type Result struct {
	Effects   []effects.Node
	Edges     []effects.Edge
	Leaps     []effects.Leap
	Synthesis *effects.Synthesis
	Usage     effects.TokenUsage
}

// Apply writes the result into the engine-owned fields of s.
func (r *Result) Apply(s *session.Session) {
	s.EffectGraph = effects.Graph{Nodes: r.Effects, Edges: r.Edges}
	s.Leaps = r.Leaps
	s.Synthesis = r.Synthesis
}

// GenerateCompleteSCL runs first-order, higher-order and synthesis stages in
// that order and returns the assembled result. Any failure aborts the run
// with a *StageError and no partial result. The session is only read.
func (e *Engine) GenerateCompleteSCL(ctx context.Context, s *session.Session, contextSummary string, progress ProgressFunc) (*Result, error) {
	if s == nil {
		return nil, errors.New("session is required")
	}
	log := e.logger.With("session", s.ID, "mode", s.Mode)

	progress.report("Generating first-order effects", progressStage1)
	first, usage1, err := e.firstOrder(ctx, s, contextSummary)
	if err != nil {
		return nil, stageErr(StageFirstOrder, err)
	}
	log.Debug("first-order stage complete", "effects", len(first))

	progress.report("Tracing higher-order effects", progressStage2)
	higher, edges, leaps, usage2, err := e.higherOrder(ctx, s, first)
	if err != nil {
		return nil, stageErr(StageHigherOrder, err)
	}
	log.Debug("higher-order stage complete", "effects", len(higher), "edges", len(edges), "leaps", len(leaps))

	all := effects.Concat(effects.Graph{Nodes: first}, effects.Graph{Nodes: higher, Edges: edges})

	progress.report("Synthesizing strategy", progressStage3)
	synth, usage3, err := e.synthesize(ctx, s, all.Nodes, leaps)
	if err != nil {
		return nil, stageErr(StageSynthesis, err)
	}

	res := &Result{
		Effects:   all.Nodes,
		Edges:     all.Edges,
		Leaps:     leaps,
		Synthesis: synth,
		Usage:     usage1.Add(usage2).Add(usage3),
	}
	log.Info("cascade complete",
		"effects", len(res.Effects),
		"edges", len(res.Edges),
		"leaps", len(res.Leaps),
		"tokens", res.Usage.TotalTokens)
	progress.report("Complete", progressDone)
	return res, nil
}

func (e *Engine) firstOrder(ctx context.Context, s *session.Session, contextSummary string) ([]effects.Node, effects.TokenUsage, error) {
	pair, err := e.prompts.FirstOrder(prompts.FirstOrderInput{Session: s, ContextSummary: contextSummary})
	if err != nil {
		return nil, effects.TokenUsage{}, err
	}
	out, err := e.exec.Execute(ctx, pair, e.maxTokens)
	if err != nil {
		return nil, effects.TokenUsage{}, err
	}
	payload, err := parser.ParseEffects(out.Text)
	if err != nil {
		return nil, out.Usage, err
	}

	nodes := make([]effects.Node, 0, len(payload.Effects))
	for _, n := range payload.Effects {
		if n.Order != effects.OrderFirst {
			e.logger.Debug("discarding non first-order effect", "id", n.ID, "order", n.Order)
			continue
		}
		n.References = seedReferences(n.References, s.Seeds)
		nodes = append(nodes, n)
	}
	return nodes, out.Usage, nil
}

func (e *Engine) higherOrder(ctx context.Context, s *session.Session, first []effects.Node) ([]effects.Node, []effects.Edge, []effects.Leap, effects.TokenUsage, error) {
	var none effects.TokenUsage
	pair, err := e.prompts.HigherOrder(prompts.HigherOrderInput{Session: s, FirstOrder: first})
	if err != nil {
		return nil, nil, nil, none, err
	}
	out, err := e.exec.Execute(ctx, pair, e.maxTokens)
	if err != nil {
		return nil, nil, nil, none, err
	}
	payload, err := parser.ParseEffects(out.Text)
	if err != nil {
		return nil, nil, nil, out.Usage, err
	}

	known := effects.NodeIndex(first)
	higher := make([]effects.Node, 0, len(payload.Effects))
	for _, n := range payload.Effects {
		if n.Order <= effects.OrderFirst {
			e.logger.Debug("discarding first-order effect from cascade stage", "id", n.ID)
			continue
		}
		if _, clash := known[n.ID]; clash {
			return nil, nil, nil, out.Usage, fmt.Errorf("effect id %q already used by a first-order effect", n.ID)
		}
		higher = append(higher, n)
	}

	edges := e.keepKnownEdges(payload.Edges, effects.NodeIndex(first, higher))
	return higher, edges, stampLeaps(payload.Leaps), out.Usage, nil
}

func (e *Engine) synthesize(ctx context.Context, s *session.Session, nodes []effects.Node, leaps []effects.Leap) (*effects.Synthesis, effects.TokenUsage, error) {
	pair, err := e.prompts.Synthesis(prompts.SynthesisInput{Session: s, Effects: nodes, Leaps: leaps})
	if err != nil {
		return nil, effects.TokenUsage{}, err
	}
	out, err := e.exec.Execute(ctx, pair, e.maxTokens)
	if err != nil {
		return nil, effects.TokenUsage{}, err
	}
	synth, err := parser.ParseSynthesis(out.Text)
	if err != nil {
		return nil, out.Usage, err
	}
	return synth, out.Usage, nil
}

// keepKnownEdges drops edges with an endpoint outside known.
func (e *Engine) keepKnownEdges(edges []effects.Edge, known map[string]effects.Node) []effects.Edge {
	kept, dropped := effects.FilterEdges(edges, known)
	for _, d := range dropped {
		e.logger.Warn("dropping edge with unknown endpoint", "from", d.From, "to", d.To)
	}
	return kept
}

// seedReferences keeps the references that name a seed. When none do, the
// effect is linked to the first seed concepts (or, without concepts, the
// first seeds of any kind). This is an approximation, not provenance.
func seedReferences(refs []string, seeds session.Seeds) []string {
	ids := seeds.IDs()
	isSeed := make(map[string]bool, len(ids))
	for _, id := range ids {
		isSeed[id] = true
	}

	out := []string{}
	seen := map[string]bool{}
	for _, r := range refs {
		if isSeed[r] && !seen[r] {
			out = append(out, r)
			seen[r] = true
		}
	}
	if len(out) > 0 {
		return out
	}

	fallback := seeds.Concepts
	if len(fallback) == 0 {
		fallback = ids
	}
	if len(fallback) > maxFallbackReferences {
		fallback = fallback[:maxFallbackReferences]
	}
	return append(out, fallback...)
}

// stampLeaps adds a placeholder evidence line derived from each leap's
// trigger. Inputs are not mutated.
func stampLeaps(leaps []effects.Leap) []effects.Leap {
	out := make([]effects.Leap, len(leaps))
	for i, l := range leaps {
		ev := make([]string, 0, len(l.Evidence)+1)
		ev = append(ev, l.Evidence...)
		l.Evidence = append(ev, "Threshold behaviour triggered by: "+l.Trigger)
		out[i] = l
	}
	return out
}
