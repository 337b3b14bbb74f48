package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/josephgoksu/cascade/internal/app"
	"github.com/josephgoksu/cascade/internal/session"
)

// HandleRunCascade creates a session and runs the full pipeline.
// Validation and stage failures come back in ToolResult.Error so the
// calling model can correct itself; only unexpected errors are returned.
func HandleRunCascade(ctx context.Context, a *app.CascadeApp, params RunCascadeParams) (*ToolResult, error) {
	seeds := session.Seeds{Concepts: params.Concepts, Patterns: params.Patterns, Practices: params.Practices}
	if seeds.IsEmpty() {
		return &ToolResult{Error: "at least one of concepts, patterns or practices is required"}, nil
	}

	res, err := a.Run(ctx, app.RunOptions{
		Name:       params.Name,
		Seeds:      seeds,
		Mode:       params.Mode,
		Objectives: params.Objectives,
		Constraints: session.Constraints{
			BudgetTier:        params.BudgetTier,
			LatencyTarget:     params.LatencyTarget,
			AccuracyTarget:    params.AccuracyTarget,
			ComplianceProfile: params.ComplianceProfile,
			TimeHorizon:       params.TimeHorizon,
		},
		Context: params.Context,
	}, nil)
	if err != nil {
		return toolError(err)
	}
	return &ToolResult{Content: FormatRunResult(res)}, nil
}

// HandleDeepDive runs one deep dive on a stored session.
func HandleDeepDive(ctx context.Context, a *app.CascadeApp, params DeepDiveParams) (*ToolResult, error) {
	if strings.TrimSpace(params.SessionID) == "" {
		return &ToolResult{Error: "session_id is required"}, nil
	}
	if len(params.NodeIDs) == 0 {
		return &ToolResult{Error: "node_ids must name at least one effect"}, nil
	}

	rec, err := a.Dive(ctx, app.DiveOptions{
		SessionID: params.SessionID,
		NodeIDs:   params.NodeIDs,
		Level:     params.Level,
		Question:  params.Question,
	}, nil)
	if err != nil {
		return toolError(err)
	}
	return &ToolResult{Content: FormatDeepDive(rec)}, nil
}

// HandleShowSession returns the full session report, or the session list
// when no id is given.
func HandleShowSession(_ context.Context, a *app.CascadeApp, params ShowSessionParams) (*ToolResult, error) {
	id := strings.TrimSpace(params.SessionID)
	if id == "" {
		list, err := a.List()
		if err != nil {
			return nil, err
		}
		return &ToolResult{Content: FormatSessionList(list)}, nil
	}
	s, err := a.Show(id)
	if err != nil {
		return toolError(err)
	}
	return &ToolResult{Content: FormatSession(s)}, nil
}

// toolError reports failures inside the tool result so the calling model
// can see them. Cancellation is returned as a protocol error.
func toolError(err error) (*ToolResult, error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	return &ToolResult{Error: err.Error()}, nil
}
