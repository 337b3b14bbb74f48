/*
Package parser turns generated text into effect, synthesis and deep-dive
payloads.

Extraction is tolerant of prose and code fences around the payload. Decoding
is strict for effect and synthesis payloads: a response that does not decode,
or whose nodes violate range invariants, is a *ParseError. Deep-dive payloads
are recovered with safe defaults where the domain allows it.
*/
package parser

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/josephgoksu/cascade/internal/effects"
	"github.com/josephgoksu/cascade/internal/utils"
)

// EffectsPayload is the response shape of the first- and higher-order stages.
type EffectsPayload struct {
	Effects []effects.Node
	Edges   []effects.Edge
	Leaps   []effects.Leap
}

type effectsWire struct {
	Effects *[]effects.Node `json:"effects"`
	Edges   []effects.Edge  `json:"edges"`
	Leaps   []effects.Leap  `json:"leaps"`
}

// ParseEffects decodes an effect-generation response. The effects list must
// be present; edges and leaps default to empty.
func ParseEffects(raw string) (EffectsPayload, error) {
	w, err := utils.DecodeJSON[effectsWire](raw)
	if err != nil {
		return EffectsPayload{}, newParseError(StageEffects, raw, err)
	}
	if w.Effects == nil {
		return EffectsPayload{}, newParseError(StageEffects, raw, errors.New(`missing "effects" list`))
	}

	p := EffectsPayload{
		Effects: nonNil(*w.Effects),
		Edges:   nonNil(w.Edges),
		Leaps:   nonNil(w.Leaps),
	}
	if err := validateGraphParts(p.Effects, p.Edges, p.Leaps); err != nil {
		return EffectsPayload{}, newParseError(StageEffects, raw, err)
	}
	return p, nil
}

// ParseSynthesis decodes a synthesis response. Absent lists become empty.
func ParseSynthesis(raw string) (*effects.Synthesis, error) {
	s, err := utils.DecodeJSON[effects.Synthesis](raw)
	if err != nil {
		return nil, newParseError(StageSynthesis, raw, err)
	}
	for _, l := range []*effects.TextList{
		&s.Risks, &s.Opportunities, &s.RecommendedPractices, &s.KPIs,
		&s.ActionPlan, &s.ImplementationOrder, &s.SuccessMetrics,
	} {
		if *l == nil {
			*l = effects.TextList{}
		}
	}
	return &s, nil
}

func validateGraphParts(nodes []effects.Node, edges []effects.Edge, leaps []effects.Leap) error {
	if err := effects.ValidateNodes(nodes); err != nil {
		return err
	}
	for i, e := range edges {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("edge %d: %w", i, err)
		}
	}
	for i, l := range leaps {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("leap %d: %w", i, err)
		}
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// decodeInto is json.Unmarshal for a raw message that may be absent.
func decodeInto(raw json.RawMessage, v any) (present bool, err error) {
	if len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}
	return true, json.Unmarshal(raw, v)
}
