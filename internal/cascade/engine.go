/*
Package cascade runs the effect-cascade pipeline and deep dives against a
text-generation backend.

A pipeline run is strictly sequential: first-order effects, then
higher-order effects built from them, then a synthesis over both. Every
stage waits for the previous stage's parsed output; there is no fan-out.
The engine keeps no state between calls beyond its backend, and performs no
locking: callers serialize operations on the same session.
*/
package cascade

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/google/uuid"
	"github.com/josephgoksu/cascade/internal/catalog"
	"github.com/josephgoksu/cascade/internal/llm"
	"github.com/josephgoksu/cascade/internal/prompts"
)

// PromptBuilder composes stage prompts. *prompts.Composer implements it.
type PromptBuilder interface {
	FirstOrder(prompts.FirstOrderInput) (prompts.Pair, error)
	HigherOrder(prompts.HigherOrderInput) (prompts.Pair, error)
	Synthesis(prompts.SynthesisInput) (prompts.Pair, error)
	DeepDive(prompts.DeepDiveInput) (prompts.Pair, error)
}

// Engine runs pipelines and deep dives.
type Engine struct {
	exec    *Executor
	prompts PromptBuilder
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
	closer  io.Closer

	provider          llm.Provider
	modelID           string
	temperature       float32
	maxTokens         int
	deepDiveMaxTokens int
}

// Option configures an Engine.
type Option func(*Engine)

// WithPromptBuilder replaces the default catalog-backed composer.
func WithPromptBuilder(p PromptBuilder) Option {
	return func(e *Engine) { e.prompts = p }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock sets the time source for deep-dive timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator sets the deep-dive id source.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// WithTokenLimits overrides the token ceilings. Zero keeps the default.
func WithTokenLimits(stage, deepDive int) Option {
	return func(e *Engine) {
		if stage > 0 {
			e.maxTokens = stage
		}
		if deepDive > 0 {
			e.deepDiveMaxTokens = deepDive
		}
	}
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float32) Option {
	return func(e *Engine) { e.temperature = t }
}

// WithModel records the provider and model for cost accounting.
func WithModel(provider llm.Provider, modelID string) Option {
	return func(e *Engine) {
		e.provider = provider
		e.modelID = modelID
	}
}

// New creates an engine on top of a chat model.
func New(chatModel model.BaseChatModel, opts ...Option) *Engine {
	e := &Engine{
		prompts:           prompts.NewComposer(catalog.Default()),
		logger:            slog.Default(),
		now:               time.Now,
		newID:             func() string { return "dive-" + uuid.New().String()[:8] },
		temperature:       llm.DefaultTemperature,
		maxTokens:         llm.DefaultMaxTokens,
		deepDiveMaxTokens: llm.DefaultDeepDiveMaxTokens,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.exec = NewExecutor(chatModel, e.modelID, e.temperature)
	return e
}

// NewFromConfig creates the chat model for cfg and an engine on top of it.
// Close the engine to release the model.
func NewFromConfig(ctx context.Context, cfg llm.Config, opts ...Option) (*Engine, error) {
	if cfg.Model == "" {
		cfg.Model = llm.DefaultModelForProvider(cfg.Provider)
	}
	cm, err := llm.NewCloseableChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	opts = append([]Option{WithModel(cfg.Provider, cfg.Model)}, opts...)
	e := New(cm, opts...)
	e.closer = cm
	return e, nil
}

// Provider returns the backend the engine was built for, if known.
func (e *Engine) Provider() llm.Provider {
	return e.provider
}

// Close releases the chat model created by NewFromConfig.
func (e *Engine) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}
