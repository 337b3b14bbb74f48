package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/josephgoksu/cascade/internal/cascade"
	"github.com/josephgoksu/cascade/internal/effects"
	"github.com/josephgoksu/cascade/internal/session"
	"github.com/josephgoksu/cascade/internal/util"
)

// ErrNoGenerator is returned when a generating operation runs on a
// read-only context.
var ErrNoGenerator = errors.New("no LLM configured")

// ErrInvalidInput wraps rejected run options such as empty seeds or an
// unknown mode.
var ErrInvalidInput = errors.New("invalid input")

// RunOptions describes a new analysis.
type RunOptions struct {
	Name        string
	Seeds       session.Seeds
	Mode        string
	Objectives  []string
	Constraints session.Constraints
	// Context is free text appended to the catalog summary of the seeds.
	Context string
}

// RunResult is the canonical response type used by both CLI and MCP.
type RunResult struct {
	Session *session.Session
	Usage   effects.TokenUsage
}

// DiveOptions selects nodes of an existing session for a deep dive.
type DiveOptions struct {
	SessionID string
	NodeIDs   []string
	Level     string
	Question  string
}

// CascadeApp creates, runs and inspects sessions.
type CascadeApp struct {
	ctx *Context
}

// NewCascadeApp creates a new cascade application service.
func NewCascadeApp(ctx *Context) *CascadeApp {
	return &CascadeApp{ctx: ctx}
}

// Run validates opts, persists a new session, runs the full pipeline and
// saves the result. When the pipeline fails the session stays stored
// without a result and the stage error is returned.
func (a *CascadeApp) Run(ctx context.Context, opts RunOptions, progress cascade.ProgressFunc) (*RunResult, error) {
	if a.ctx.Generator == nil {
		return nil, ErrNoGenerator
	}
	seeds := session.Seeds{
		Concepts:  cleanList(opts.Seeds.Concepts),
		Patterns:  cleanList(opts.Seeds.Patterns),
		Practices: cleanList(opts.Seeds.Practices),
	}
	if seeds.IsEmpty() {
		return nil, fmt.Errorf("%w: at least one concept, pattern or practice is required", ErrInvalidInput)
	}
	mode, err := session.ParseMode(opts.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	s := &session.Session{
		Name:        strings.TrimSpace(opts.Name),
		Mode:        mode,
		Seeds:       seeds,
		Objectives:  cleanList(opts.Objectives),
		Constraints: opts.Constraints,
	}
	if err := a.ctx.Store.Create(s); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	res, err := a.ctx.Generator.GenerateCompleteSCL(ctx, s, a.contextSummary(seeds, opts.Context), progress)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", s.ID, err)
	}
	res.Apply(s)
	if err := a.ctx.Store.SaveResult(s); err != nil {
		return nil, fmt.Errorf("save result: %w", err)
	}
	return &RunResult{Session: s, Usage: res.Usage}, nil
}

func (a *CascadeApp) contextSummary(seeds session.Seeds, extra string) string {
	var parts []string
	if a.ctx.Catalog != nil {
		if s := a.ctx.Catalog.Summary(seeds); s != "" {
			parts = append(parts, s)
		}
	}
	if extra = strings.TrimSpace(extra); extra != "" {
		parts = append(parts, extra)
	}
	return strings.Join(parts, "\n\n")
}

// Dive runs one deep dive against a stored session and appends the record.
func (a *CascadeApp) Dive(ctx context.Context, opts DiveOptions, progress cascade.ProgressFunc) (*effects.DeepDiveRecord, error) {
	if a.ctx.Generator == nil {
		return nil, ErrNoGenerator
	}
	s, err := a.Show(opts.SessionID)
	if err != nil {
		return nil, err
	}
	level := effects.Level(strings.ToLower(strings.TrimSpace(opts.Level)))
	if level == "" {
		level = effects.LevelSecondary
	}

	rec, err := a.ctx.Generator.GenerateDeepDive(ctx, s, cleanList(opts.NodeIDs), level, strings.TrimSpace(opts.Question), progress)
	if err != nil {
		return nil, err
	}
	if err := a.ctx.Store.AppendDeepDive(s.ID, *rec); err != nil {
		return nil, fmt.Errorf("save deep dive: %w", err)
	}
	return rec, nil
}

// Show loads one session with its deep-dive history.
// id may be abbreviated to any unique prefix.
func (a *CascadeApp) Show(id string) (*session.Session, error) {
	full, err := a.ResolveID(id)
	if err != nil {
		return nil, err
	}
	return a.ctx.Store.Get(full)
}

// ResolveID expands a session id prefix to the stored id.
func (a *CascadeApp) ResolveID(id string) (string, error) {
	full, err := util.ResolveSessionID(a.ctx.Store, id)
	if errors.Is(err, util.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", session.ErrNotFound, strings.TrimSpace(id))
	}
	return full, err
}

// CanGenerate reports whether Run and Dive are available.
func (a *CascadeApp) CanGenerate() bool {
	return a.ctx.Generator != nil
}

// List returns summaries of every stored session.
func (a *CascadeApp) List() ([]session.Summary, error) {
	return a.ctx.Store.List()
}

// Delete removes a session and its deep dives.
func (a *CascadeApp) Delete(id string) error {
	full, err := a.ResolveID(id)
	if err != nil {
		return err
	}
	return a.ctx.Store.Delete(full)
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
