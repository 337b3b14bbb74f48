package effects

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Findings is a tagged union keyed by "type". Exactly one of Secondary or
// Tertiary is set, matching Level.
type Findings struct {
	Level     Level
	Secondary *SecondaryFindings
	Tertiary  *TertiaryFindings
}

// SecondaryFindings are implementation-level findings.
type SecondaryFindings struct {
	HiddenRisks         []HiddenRisk         `json:"hiddenRisks"`
	CrossConnections    []CrossConnection    `json:"crossConnections"`
	ImplementationSteps []ImplementationStep `json:"implementationSteps"`
	RevisedKPIs         []KPI                `json:"revisedKPIs"`
	OpenQuestions       TextList             `json:"openQuestions"`
}

// TertiaryFindings are operational-level findings.
type TertiaryFindings struct {
	Runbook              []RunbookStep        `json:"runbook"`
	ToolRecommendations  []ToolRecommendation `json:"toolRecommendations"`
	FMEAEntries          []FMEAEntry          `json:"fmeaEntries"`
	Projections          []Projection         `json:"projections"`
	MitigationComparison []MitigationOption   `json:"mitigationComparison"`
}

// EmptyFindings returns the safe empty value for a level: every list is
// non-nil and empty.
func EmptyFindings(level Level) Findings {
	if level == LevelTertiary {
		return Findings{Level: LevelTertiary, Tertiary: &TertiaryFindings{
			Runbook:              []RunbookStep{},
			ToolRecommendations:  []ToolRecommendation{},
			FMEAEntries:          []FMEAEntry{},
			Projections:          []Projection{},
			MitigationComparison: []MitigationOption{},
		}}
	}
	return Findings{Level: LevelSecondary, Secondary: &SecondaryFindings{
		HiddenRisks:         []HiddenRisk{},
		CrossConnections:    []CrossConnection{},
		ImplementationSteps: []ImplementationStep{},
		RevisedKPIs:         []KPI{},
		OpenQuestions:       TextList{},
	}}
}

// IsZero reports whether no variant is set.
func (f Findings) IsZero() bool {
	return f.Secondary == nil && f.Tertiary == nil
}

// Normalize replaces nil lists with empty ones so consumers never see null.
func (f *Findings) Normalize() {
	switch f.Level {
	case LevelSecondary:
		if f.Secondary == nil {
			*f = EmptyFindings(LevelSecondary)
			return
		}
		s := f.Secondary
		s.HiddenRisks = nonNil(s.HiddenRisks)
		s.CrossConnections = nonNil(s.CrossConnections)
		s.ImplementationSteps = nonNil(s.ImplementationSteps)
		s.RevisedKPIs = nonNil(s.RevisedKPIs)
		if s.OpenQuestions == nil {
			s.OpenQuestions = TextList{}
		}
	case LevelTertiary:
		if f.Tertiary == nil {
			*f = EmptyFindings(LevelTertiary)
			return
		}
		t := f.Tertiary
		t.Runbook = nonNil(t.Runbook)
		t.ToolRecommendations = nonNil(t.ToolRecommendations)
		t.FMEAEntries = nonNil(t.FMEAEntries)
		t.Projections = nonNil(t.Projections)
		t.MitigationComparison = nonNil(t.MitigationComparison)
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// MarshalJSON flattens the active variant next to its "type" discriminator.
func (f Findings) MarshalJSON() ([]byte, error) {
	var body any
	switch {
	case f.Level == LevelSecondary && f.Secondary != nil:
		body = f.Secondary
	case f.Level == LevelTertiary && f.Tertiary != nil:
		body = f.Tertiary
	default:
		return json.Marshal(map[string]string{"type": string(f.Level)})
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	level, _ := json.Marshal(f.Level)
	buf.Write(level)
	if len(raw) > 2 {
		buf.WriteByte(',')
		buf.Write(raw[1:])
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the variant selected by "type". An unknown or
// missing discriminator leaves the value zero so callers can substitute
// defaults.
func (f *Findings) UnmarshalJSON(data []byte) error {
	var head struct {
		Type Level `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("findings: %w", err)
	}

	*f = Findings{Level: head.Type}
	switch head.Type {
	case LevelSecondary:
		var s SecondaryFindings
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("secondary findings: %w", err)
		}
		f.Secondary = &s
	case LevelTertiary:
		var t TertiaryFindings
		if err := json.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("tertiary findings: %w", err)
		}
		f.Tertiary = &t
	}
	return nil
}

// HiddenRisk is a risk that only shows up at implementation depth.
type HiddenRisk struct {
	Risk       string `json:"risk"`
	Severity   string `json:"severity,omitempty"`
	Mitigation string `json:"mitigation,omitempty"`
}

func (r *HiddenRisk) UnmarshalJSON(data []byte) error {
	type plain HiddenRisk
	return unmarshalTextOr(data, &r.Risk, (*plain)(r))
}

// CrossConnection links effects that the top-level graph did not connect.
type CrossConnection struct {
	From         string `json:"from"`
	To           string `json:"to"`
	Relationship string `json:"relationship"`
}

func (c *CrossConnection) UnmarshalJSON(data []byte) error {
	type plain CrossConnection
	return unmarshalTextOr(data, &c.Relationship, (*plain)(c))
}

// ImplementationStep is one step in the implementation sequence.
type ImplementationStep struct {
	Step     string `json:"step"`
	Owner    string `json:"owner,omitempty"`
	Duration string `json:"duration,omitempty"`
}

func (s *ImplementationStep) UnmarshalJSON(data []byte) error {
	type plain ImplementationStep
	return unmarshalTextOr(data, &s.Step, (*plain)(s))
}

// KPI is a measurable indicator with a target.
type KPI struct {
	Name      string `json:"name"`
	Target    string `json:"target,omitempty"`
	Rationale string `json:"rationale,omitempty"`
}

func (k *KPI) UnmarshalJSON(data []byte) error {
	type plain KPI
	return unmarshalTextOr(data, &k.Name, (*plain)(k))
}

// RunbookStep is an operational instruction with its verification.
type RunbookStep struct {
	Action       string `json:"action"`
	Verification string `json:"verification,omitempty"`
	Rollback     string `json:"rollback,omitempty"`
}

func (s *RunbookStep) UnmarshalJSON(data []byte) error {
	type plain RunbookStep
	return unmarshalTextOr(data, &s.Action, (*plain)(s))
}

// ToolRecommendation names a tool for a purpose.
type ToolRecommendation struct {
	Tool         string   `json:"tool"`
	Purpose      string   `json:"purpose,omitempty"`
	Alternatives []string `json:"alternatives,omitempty"`
}

func (t *ToolRecommendation) UnmarshalJSON(data []byte) error {
	type plain ToolRecommendation
	return unmarshalTextOr(data, &t.Tool, (*plain)(t))
}

// FMEAEntry is one row of a failure mode and effects analysis.
// Severity, Likelihood and Detection are scored 1-10; RPN is their product.
type FMEAEntry struct {
	FailureMode string `json:"failureMode" validate:"required,nonempty"`
	Effect      string `json:"effect"`
	Severity    int    `json:"severity" validate:"min=1,max=10"`
	Likelihood  int    `json:"likelihood" validate:"min=1,max=10"`
	Detection   int    `json:"detection" validate:"min=1,max=10"`
	RPN         int    `json:"rpn"`
}

// ComputeRPN fills RPN from its factors when the generator left it out.
func (e *FMEAEntry) ComputeRPN() {
	if e.RPN == 0 {
		e.RPN = e.Severity * e.Likelihood * e.Detection
	}
}

// Projection is a forecast of a metric over a horizon.
type Projection struct {
	Metric    string `json:"metric"`
	Baseline  string `json:"baseline,omitempty"`
	Projected string `json:"projected,omitempty"`
	Horizon   string `json:"horizon,omitempty"`
}

func (p *Projection) UnmarshalJSON(data []byte) error {
	type plain Projection
	return unmarshalTextOr(data, &p.Metric, (*plain)(p))
}

// MitigationOption is one row of a mitigation comparison.
type MitigationOption struct {
	Option        string `json:"option"`
	Cost          string `json:"cost,omitempty"`
	Effectiveness string `json:"effectiveness,omitempty"`
	Tradeoffs     string `json:"tradeoffs,omitempty"`
}

func (m *MitigationOption) UnmarshalJSON(data []byte) error {
	type plain MitigationOption
	return unmarshalTextOr(data, &m.Option, (*plain)(m))
}

// unmarshalTextOr accepts either a bare JSON string (stored in text) or an
// object decoded into v.
func unmarshalTextOr(data []byte, text *string, v any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		return json.Unmarshal(trimmed, text)
	}
	return json.Unmarshal(trimmed, v)
}

// TextList is a list of strings. Generators sometimes emit objects instead
// of strings; those are flattened to "key: value" text.
type TextList []string

func (l *TextList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		// A single string where a list was expected.
		var single string
		if err2 := json.Unmarshal(trimmed, &single); err2 == nil {
			*l = TextList{single}
			return nil
		}
		return err
	}

	out := make(TextList, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(item, &obj); err == nil {
			out = append(out, flattenObject(obj))
			continue
		}
		out = append(out, strings.TrimSpace(string(item)))
	}
	*l = out
	return nil
}

func flattenObject(obj map[string]any) string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, obj[k]))
	}
	return strings.Join(parts, "; ")
}
