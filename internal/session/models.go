/*
Package session provides the session aggregate the cascade engine operates on,
and a SQLite-backed store for it.
*/
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/josephgoksu/cascade/internal/effects"
)

// Mode is the analytical stance of a session. It changes the guidance given
// to generation, never the pipeline's steps.
type Mode string

const (
	ModeConsolidate         Mode = "consolidate"
	ModeExplore             Mode = "explore"
	ModeStressTest          Mode = "stress-test"
	ModeRedTeam             Mode = "red-team"
	ModeTemporalSim         Mode = "temporal-sim"
	ModeCostOptimize        Mode = "cost-optimize"
	ModeScaleOut            Mode = "scale-out"
	ModeComplianceAudit     Mode = "compliance-audit"
	ModeMigration           Mode = "migration"
	ModeIncidentReplay      Mode = "incident-replay"
	ModeTeamImpact          Mode = "team-impact"
	ModePreMortem           Mode = "pre-mortem"
	ModeCompareAlternatives Mode = "compare-alternatives"
)

// DefaultMode is used when a session does not name one.
const DefaultMode = ModeConsolidate

// Modes returns all supported modes.
func Modes() []Mode {
	return []Mode{
		ModeConsolidate, ModeExplore, ModeStressTest, ModeRedTeam, ModeTemporalSim,
		ModeCostOptimize, ModeScaleOut, ModeComplianceAudit, ModeMigration,
		ModeIncidentReplay, ModeTeamImpact, ModePreMortem, ModeCompareAlternatives,
	}
}

// IsValid checks if the mode is one of the supported modes.
func (m Mode) IsValid() bool {
	for _, known := range Modes() {
		if m == known {
			return true
		}
	}
	return false
}

// ParseMode validates a user-supplied mode string.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultMode, nil
	}
	m := Mode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("unsupported mode: %s", s)
	}
	return m, nil
}

// Seeds are the concept, pattern and practice ids a session starts from.
type Seeds struct {
	Concepts  []string `json:"concepts"`
	Patterns  []string `json:"patterns"`
	Practices []string `json:"practices"`
}

// IDs returns all seed ids: concepts first, then patterns, then practices.
func (s Seeds) IDs() []string {
	out := make([]string, 0, len(s.Concepts)+len(s.Patterns)+len(s.Practices))
	out = append(out, s.Concepts...)
	out = append(out, s.Patterns...)
	out = append(out, s.Practices...)
	return out
}

// IsEmpty reports whether no seed was given.
func (s Seeds) IsEmpty() bool {
	return len(s.Concepts)+len(s.Patterns)+len(s.Practices) == 0
}

// Constraints bound the analysis.
type Constraints struct {
	BudgetTier        string            `json:"budgetTier,omitempty"`
	LatencyTarget     string            `json:"latencyTarget,omitempty"`
	AccuracyTarget    string            `json:"accuracyTarget,omitempty"`
	ComplianceProfile string            `json:"complianceProfile,omitempty"`
	TimeHorizon       string            `json:"timeHorizon,omitempty"`
	Extras            map[string]string `json:"extras,omitempty"`
}

// Session holds one analysis. The engine writes EffectGraph, Leaps,
// Synthesis and DeepDives; everything else is read-only input.
type Session struct {
	ID          string      `json:"id"`
	Name        string      `json:"name,omitempty"`
	Mode        Mode        `json:"mode"`
	Seeds       Seeds       `json:"seeds"`
	Objectives  []string    `json:"objectives"`
	Constraints Constraints `json:"constraints"`

	EffectGraph effects.Graph            `json:"effectGraph"`
	Leaps       []effects.Leap           `json:"leaps"`
	Synthesis   *effects.Synthesis       `json:"synthesis,omitempty"`
	DeepDives   []effects.DeepDiveRecord `json:"deepDives"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AllNodes returns top-level nodes followed by every deep dive's effects in
// append order.
func (s *Session) AllNodes() []effects.Node {
	out := make([]effects.Node, 0, len(s.EffectGraph.Nodes))
	out = append(out, s.EffectGraph.Nodes...)
	for _, dd := range s.DeepDives {
		out = append(out, dd.Effects...)
	}
	return out
}

// LatestDeepDive returns the most recently appended deep dive at level.
func (s *Session) LatestDeepDive(level effects.Level) (*effects.DeepDiveRecord, bool) {
	for i := len(s.DeepDives) - 1; i >= 0; i-- {
		if s.DeepDives[i].Level == level {
			return &s.DeepDives[i], true
		}
	}
	return nil, false
}

// HasResult reports whether a pipeline run has completed for the session.
func (s *Session) HasResult() bool {
	return s.Synthesis != nil
}
