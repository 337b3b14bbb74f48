package parser

import (
	"encoding/json"
	"fmt"

	"github.com/josephgoksu/cascade/internal/effects"
	"github.com/josephgoksu/cascade/internal/utils"
)

// DeepDivePayload is the response shape of a deep dive after normalization.
// Sub-effects may carry Order 0, meaning the order is inherited from their
// parent when attached. Warnings list recoveries applied while parsing.
type DeepDivePayload struct {
	SubEffects  []effects.Node
	Connections []effects.Edge
	Leaps       []effects.Leap
	Findings    effects.Findings
	Warnings    []string
}

type deepDiveWire struct {
	SubEffects  *[]effects.Node `json:"subEffects"`
	Effects     *[]effects.Node `json:"effects"`
	Connections *[]effects.Edge `json:"connections"`
	Edges       *[]effects.Edge `json:"edges"`
	Leaps       []effects.Leap  `json:"leaps"`
	Findings    json.RawMessage `json:"findings"`
}

// ParseDeepDive decodes a deep-dive response for level. Only a response
// with no decodable payload, or sub-effects violating range invariants, is
// an error. Missing lists default to empty, "effects" is accepted for
// "subEffects", "edges" for "connections", and absent or unusable findings
// become effects.EmptyFindings(level).
func ParseDeepDive(raw string, level effects.Level) (DeepDivePayload, error) {
	if !level.IsValid() {
		return DeepDivePayload{}, newParseError(StageDeepDive, raw, fmt.Errorf("invalid level %q", level))
	}

	w, err := utils.DecodeJSON[deepDiveWire](raw)
	if err != nil {
		return DeepDivePayload{}, newParseError(StageDeepDive, raw, err)
	}

	var p DeepDivePayload
	switch {
	case w.SubEffects != nil:
		p.SubEffects = *w.SubEffects
	case w.Effects != nil:
		p.SubEffects = *w.Effects
	}
	switch {
	case w.Connections != nil:
		p.Connections = *w.Connections
	case w.Edges != nil:
		p.Connections = *w.Edges
	}
	p.SubEffects = nonNil(p.SubEffects)
	p.Connections = nonNil(p.Connections)
	p.Leaps = nonNil(w.Leaps)

	if err := validateGraphParts(orderless(p.SubEffects), p.Connections, p.Leaps); err != nil {
		return DeepDivePayload{}, newParseError(StageDeepDive, raw, err)
	}

	p.Findings, p.Warnings = parseFindings(w.Findings, level)
	return p, nil
}

// orderless returns nodes with a missing order replaced by a valid
// placeholder so that the remaining fields can be range checked.
func orderless(nodes []effects.Node) []effects.Node {
	out := make([]effects.Node, len(nodes))
	for i, n := range nodes {
		if n.Order == 0 {
			n.Order = effects.OrderFirst
		}
		out[i] = n
	}
	return out
}

func parseFindings(raw json.RawMessage, level effects.Level) (effects.Findings, []string) {
	var warnings []string

	var f effects.Findings
	present, err := decodeInto(raw, &f)
	switch {
	case !present:
		return effects.EmptyFindings(level), nil
	case err != nil:
		return effects.EmptyFindings(level), []string{fmt.Sprintf("findings discarded: %v", err)}
	}

	if f.IsZero() && (f.Level == "" || f.Level == level) {
		// Untagged: decode the variant for the requested level directly.
		f = effects.Findings{Level: level}
		switch level {
		case effects.LevelSecondary:
			var s effects.SecondaryFindings
			if err := json.Unmarshal(raw, &s); err != nil {
				return effects.EmptyFindings(level), []string{fmt.Sprintf("findings discarded: %v", err)}
			}
			f.Secondary = &s
		case effects.LevelTertiary:
			var t effects.TertiaryFindings
			if err := json.Unmarshal(raw, &t); err != nil {
				return effects.EmptyFindings(level), []string{fmt.Sprintf("findings discarded: %v", err)}
			}
			f.Tertiary = &t
		}
	}

	if f.Level != level {
		return effects.EmptyFindings(level), []string{fmt.Sprintf("findings of type %q discarded for %s dive", f.Level, level)}
	}

	f.Normalize()
	if f.Tertiary != nil {
		kept := f.Tertiary.FMEAEntries[:0]
		for _, e := range f.Tertiary.FMEAEntries {
			if err := e.Validate(); err != nil {
				warnings = append(warnings, fmt.Sprintf("fmea entry dropped: %v", err))
				continue
			}
			e.ComputeRPN()
			kept = append(kept, e)
		}
		f.Tertiary.FMEAEntries = kept
	}
	return f, warnings
}
