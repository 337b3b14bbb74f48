package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/josephgoksu/cascade/internal/catalog"
	"github.com/josephgoksu/cascade/internal/session"
	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/open-policy-agent/opa/v1/types"
)

// Package is the Rego package every policy must declare.
const Package = "cascade.policy"

// CatalogLookup resolves seed ids for the cascade.catalog_entry builtin.
// *catalog.Catalog satisfies it.
type CatalogLookup interface {
	Get(id string) (catalog.Entry, bool)
}

// Engine evaluates a fixed set of policies. Queries are prepared once in
// NewEngine; Evaluate may be called concurrently.
type Engine struct {
	files []*File
	deny  rego.PreparedEvalQuery
	warn  rego.PreparedEvalQuery
	now   func() time.Time
}

// NewEngine compiles files. Invalid Rego fails here, not at evaluation.
// A nil lookup uses the default catalog.
func NewEngine(ctx context.Context, files []*File, lookup CatalogLookup) (*Engine, error) {
	if lookup == nil {
		lookup = catalog.Default()
	}
	e := &Engine{files: files, now: time.Now}

	var err error
	if e.deny, err = prepare(ctx, "deny", files, lookup); err != nil {
		return nil, err
	}
	if e.warn, err = prepare(ctx, "warn", files, lookup); err != nil {
		return nil, err
	}
	return e, nil
}

func prepare(ctx context.Context, rule string, files []*File, lookup CatalogLookup) (rego.PreparedEvalQuery, error) {
	opts := []func(*rego.Rego){
		rego.Query(fmt.Sprintf("data.%s.%s", Package, rule)),
		catalogEntryFunc(lookup),
	}
	for _, f := range files {
		opts = append(opts, rego.Module(f.Path, f.Content))
	}
	pq, err := rego.New(opts...).PrepareForEval(ctx)
	if err != nil {
		return rego.PreparedEvalQuery{}, fmt.Errorf("compile policies: %w", err)
	}
	return pq, nil
}

// catalogEntryFunc registers cascade.catalog_entry(id), which returns
// {"name", "kind"} for a known seed id and is undefined otherwise.
func catalogEntryFunc(lookup CatalogLookup) func(*rego.Rego) {
	return rego.Function1(&rego.Function{
		Name:    "cascade.catalog_entry",
		Decl:    types.NewFunction(types.Args(types.S), types.A),
		Memoize: true,
	}, func(_ rego.BuiltinContext, id *ast.Term) (*ast.Term, error) {
		s, ok := id.Value.(ast.String)
		if !ok {
			return nil, nil
		}
		entry, found := lookup.Get(string(s))
		if !found {
			return nil, nil
		}
		return ast.ObjectTerm(
			ast.Item(ast.StringTerm("name"), ast.StringTerm(entry.Name)),
			ast.Item(ast.StringTerm("kind"), ast.StringTerm(string(entry.Kind))),
		), nil
	})
}

// PolicyNames returns the names of the loaded policies.
func (e *Engine) PolicyNames() []string {
	names := make([]string, len(e.files))
	for i, f := range e.files {
		names[i] = f.Name
	}
	return names
}

// Evaluate runs the deny and warn rules against s.
func (e *Engine) Evaluate(ctx context.Context, s *session.Session) (*Decision, error) {
	input, err := toInput(s)
	if err != nil {
		return nil, err
	}

	violations, err := collect(ctx, e.deny, input)
	if err != nil {
		return nil, fmt.Errorf("query deny rules: %w", err)
	}
	warnings, err := collect(ctx, e.warn, input)
	if err != nil {
		return nil, fmt.Errorf("query warn rules: %w", err)
	}

	d := &Decision{
		SessionID:   s.ID,
		Result:      ResultAllow,
		Violations:  violations,
		Warnings:    warnings,
		Policies:    e.PolicyNames(),
		EvaluatedAt: e.now().UTC(),
	}
	if len(violations) > 0 {
		d.Result = ResultDeny
	}
	return d, nil
}

// toInput converts s to plain JSON values so policies see the wire names.
func toInput(s *session.Session) (map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	var input map[string]any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return input, nil
}

// collect returns the sorted string members of a set rule. An undefined
// rule yields nothing.
func collect(ctx context.Context, pq rego.PreparedEvalQuery, input map[string]any) ([]string, error) {
	rs, err := pq.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, err
	}
	var out []string
	for _, result := range rs {
		for _, expr := range result.Expressions {
			set, ok := expr.Value.([]any)
			if !ok {
				continue
			}
			for _, item := range set {
				if msg, ok := item.(string); ok {
					out = append(out, msg)
				}
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// ValidatePolicy reports whether content compiles as a cascade policy.
func ValidatePolicy(ctx context.Context, name, content string) error {
	_, err := prepare(ctx, "deny", []*File{{Path: name, Name: name, Content: content}}, catalog.Default())
	if err != nil {
		return fmt.Errorf("invalid policy %s: %w", name, err)
	}
	return nil
}
