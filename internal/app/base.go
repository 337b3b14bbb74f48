// Package app provides the application layer that orchestrates business logic.
// This layer sits between CLI/MCP handlers and the engine and store, so both
// adapters run the same code path.
package app

import (
	"context"

	"github.com/josephgoksu/cascade/internal/cascade"
	"github.com/josephgoksu/cascade/internal/effects"
	"github.com/josephgoksu/cascade/internal/session"
)

// Store is the subset of session persistence the app layer needs.
type Store interface {
	Create(sess *session.Session) error
	SaveResult(sess *session.Session) error
	AppendDeepDive(sessionID string, rec effects.DeepDiveRecord) error
	Get(id string) (*session.Session, error)
	List() ([]session.Summary, error)
	Delete(id string) error
	FindIDsByPrefix(prefix string) ([]string, error)
}

// Generator runs cascade stages. *cascade.Engine satisfies it.
type Generator interface {
	GenerateCompleteSCL(ctx context.Context, s *session.Session, contextSummary string, progress cascade.ProgressFunc) (*cascade.Result, error)
	GenerateDeepDive(ctx context.Context, s *session.Session, selectedIDs []string, level effects.Level, userQuestion string, progress cascade.ProgressFunc) (*effects.DeepDiveRecord, error)
}

// Summarizer renders seed ids into prose for the first-order prompt.
// *catalog.Catalog satisfies it.
type Summarizer interface {
	Summary(seeds session.Seeds) string
}

// Context holds shared dependencies for all app services.
type Context struct {
	Store     Store
	Generator Generator
	Catalog   Summarizer
}

// NewContext creates an app context. gen may be nil for read-only use.
func NewContext(store Store, gen Generator, cat Summarizer) *Context {
	return &Context{Store: store, Generator: gen, Catalog: cat}
}
