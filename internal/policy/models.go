// Package policy checks sessions against Rego guardrails with OPA.
//
// Policies live in package cascade.policy and see the stored session as
// input. Strings produced by deny rules are violations; strings produced by
// warn rules are advisory.
package policy

import "time"

// Result constants.
const (
	ResultAllow = "allow"
	ResultDeny  = "deny"
)

// Decision is the outcome of evaluating every loaded policy against a session.
type Decision struct {
	SessionID   string    `json:"sessionId"`
	Result      string    `json:"result"`
	Violations  []string  `json:"violations,omitempty"`
	Warnings    []string  `json:"warnings,omitempty"`
	Policies    []string  `json:"policies"`
	EvaluatedAt time.Time `json:"evaluatedAt"`
}

// IsAllowed returns true if no deny rule fired.
func (d *Decision) IsAllowed() bool {
	return d.Result == ResultAllow
}
