// Package mcp provides types, handlers and Markdown presenters for the
// cascade MCP server.
package mcp

// RunCascadeParams defines the parameters for the run_cascade tool.
type RunCascadeParams struct {
	// Concepts, Patterns and Practices are catalog ids. At least one is required.
	Concepts  []string `json:"concepts,omitempty"`
	Patterns  []string `json:"patterns,omitempty"`
	Practices []string `json:"practices,omitempty"`

	// Mode is one of the analysis modes (default: consolidate).
	Mode string `json:"mode,omitempty"`

	Name       string   `json:"name,omitempty"`
	Objectives []string `json:"objectives,omitempty"`

	BudgetTier        string `json:"budget_tier,omitempty"`
	LatencyTarget     string `json:"latency_target,omitempty"`
	AccuracyTarget    string `json:"accuracy_target,omitempty"`
	ComplianceProfile string `json:"compliance_profile,omitempty"`
	TimeHorizon       string `json:"time_horizon,omitempty"`

	// Context is free-form background appended to the seed summary.
	Context string `json:"context,omitempty"`
}

// DeepDiveParams defines the parameters for the deep_dive tool.
type DeepDiveParams struct {
	SessionID string   `json:"session_id"`
	NodeIDs   []string `json:"node_ids"`
	// Level is secondary (default) or tertiary.
	Level    string `json:"level,omitempty"`
	Question string `json:"question,omitempty"`
}

// ShowSessionParams defines the parameters for the show_session tool.
// An empty SessionID lists every session instead.
type ShowSessionParams struct {
	SessionID string `json:"session_id,omitempty"`
}

// ToolResult represents the response from a cascade tool handler.
type ToolResult struct {
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}
