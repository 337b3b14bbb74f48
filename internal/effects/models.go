/*
Package effects provides the typed effect graph: nodes, edges, leaps, synthesis
and deep-dive records, together with their invariant checks.
*/
package effects

import (
	"time"
)

// Domain classifies which area of the organization an effect lands in.
type Domain string

const (
	DomainOperations   Domain = "operations"
	DomainProduct      Domain = "product"
	DomainSecurity     Domain = "security"
	DomainOrganization Domain = "organization"
	DomainCost         Domain = "cost"
	DomainPerformance  Domain = "performance"
)

// Domains returns all valid domains in display order.
func Domains() []Domain {
	return []Domain{DomainOperations, DomainProduct, DomainSecurity, DomainOrganization, DomainCost, DomainPerformance}
}

// IsValid checks if the domain is one of the enumerated values.
func (d Domain) IsValid() bool {
	switch d {
	case DomainOperations, DomainProduct, DomainSecurity, DomainOrganization, DomainCost, DomainPerformance:
		return true
	}
	return false
}

// Order bounds for effect nodes.
const (
	OrderFirst  = 1
	OrderSecond = 2
	OrderThird  = 3
)

// Node is a single inferred consequence (an "effect").
type Node struct {
	ID            string   `json:"id" validate:"required,nonempty"`
	Title         string   `json:"title" validate:"required,nonempty"`
	Order         int      `json:"order" validate:"effect_order"`
	Domain        Domain   `json:"domain" validate:"domain"`
	Likelihood    float64  `json:"likelihood" validate:"unit_interval"`
	Impact        int      `json:"impact" validate:"impact_range"`
	Justification string   `json:"justification"`
	Confidence    float64  `json:"confidence" validate:"unit_interval"`
	References    []string `json:"references"`

	// ParentEffectID is set on deep-dive sub-effects only.
	ParentEffectID string `json:"parentEffectId,omitempty"`
}

// Edge is a causal link between two effects.
type Edge struct {
	From       string  `json:"from" validate:"required,nonempty"`
	To         string  `json:"to" validate:"required,nonempty"`
	Mechanism  string  `json:"mechanism"`
	Confidence float64 `json:"confidence" validate:"unit_interval"`
	Delay      string  `json:"delay,omitempty"`
}

// Leap documents a discontinuity: a threshold past which the system behaves
// differently. Leaps annotate the graph and are never connected by edges.
type Leap struct {
	Trigger    string   `json:"trigger" validate:"required,nonempty"`
	Threshold  string   `json:"threshold"`
	Result     string   `json:"result"`
	Mechanism  string   `json:"mechanism"`
	Evidence   []string `json:"evidence"`
	Confidence float64  `json:"confidence" validate:"unit_interval"`
}

// Graph is an effect graph assembled from stage outputs.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Synthesis is the strategic rollup produced once per pipeline run.
type Synthesis struct {
	Risks                TextList `json:"risks"`
	Opportunities        TextList `json:"opportunities"`
	RecommendedPractices TextList `json:"recommendedPractices"`
	KPIs                 TextList `json:"kpis"`
	ActionPlan           TextList `json:"actionPlan"`
	ImplementationOrder  TextList `json:"implementationOrder"`
	SuccessMetrics       TextList `json:"successMetrics"`
}

// Level is the granularity of a deep dive.
type Level string

const (
	// LevelSecondary is an implementation-level drill-down.
	LevelSecondary Level = "secondary"
	// LevelTertiary is an operational-level drill-down.
	LevelTertiary Level = "tertiary"
)

// IsValid checks if the level is secondary or tertiary.
func (l Level) IsValid() bool {
	return l == LevelSecondary || l == LevelTertiary
}

// TokenUsage records what a generation round trip consumed.
type TokenUsage struct {
	PromptTokens     int     `json:"promptTokens"`
	CompletionTokens int     `json:"completionTokens"`
	TotalTokens      int     `json:"totalTokens"`
	EstimatedCostUSD float64 `json:"estimatedCostUsd,omitempty"`
	// Estimated is true when the backend reported no usage and counts were
	// derived from text length.
	Estimated bool `json:"estimated,omitempty"`
}

// Add returns the sum of two usages.
func (u TokenUsage) Add(o TokenUsage) TokenUsage {
	return TokenUsage{
		PromptTokens:     u.PromptTokens + o.PromptTokens,
		CompletionTokens: u.CompletionTokens + o.CompletionTokens,
		TotalTokens:      u.TotalTokens + o.TotalTokens,
		EstimatedCostUSD: u.EstimatedCostUSD + o.EstimatedCostUSD,
		Estimated:        u.Estimated || o.Estimated,
	}
}

// DeepDiveRecord is one invocation of the deep-dive engine. Records are
// appended to a session and never mutated afterwards.
type DeepDiveRecord struct {
	ID              string     `json:"id"`
	Level           Level      `json:"level"`
	SelectedNodeIDs []string   `json:"selectedNodeIds"`
	SelectedNodes   []Node     `json:"selectedNodes"`
	UserQuestion    string     `json:"userQuestion,omitempty"`
	Effects         []Node     `json:"effects"`
	Edges           []Edge     `json:"edges"`
	Leaps           []Leap     `json:"leaps"`
	Findings        Findings   `json:"findings"`
	Usage           TokenUsage `json:"usage"`
	CreatedAt       time.Time  `json:"createdAt"`
}
