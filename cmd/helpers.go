/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/josephgoksu/cascade/internal/app"
	"github.com/josephgoksu/cascade/internal/cascade"
	"github.com/josephgoksu/cascade/internal/catalog"
	"github.com/josephgoksu/cascade/internal/config"
	"github.com/josephgoksu/cascade/internal/llm"
	"github.com/josephgoksu/cascade/internal/logger"
	"github.com/josephgoksu/cascade/internal/prompts"
	"github.com/josephgoksu/cascade/internal/session"
	"github.com/josephgoksu/cascade/internal/ui"
	"github.com/spf13/afero"
)

// cliApp is an app plus the provider serving it and a release func.
type cliApp struct {
	*app.CascadeApp
	provider llm.Provider
	close    func()
}

// openApp opens the session store and, when withLLM is set, builds the
// engine from the resolved provider. Call close to release both.
func openApp(ctx context.Context, withLLM bool) (*cliApp, error) {
	cat, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	store, err := session.NewSQLiteStore(config.GetStoreDir())
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	if !withLLM {
		return &cliApp{
			CascadeApp: app.NewCascadeApp(app.NewContext(store, nil, cat)),
			close:      func() { _ = store.Close() },
		}, nil
	}

	engine, err := newEngine(ctx, cat)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return &cliApp{
		CascadeApp: app.NewCascadeApp(app.NewContext(store, engine, cat)),
		provider:   engine.Provider(),
		close: func() {
			_ = engine.Close()
			_ = store.Close()
		},
	}, nil
}

// openServingApp opens an app for long-running servers. The catalog
// follows the user catalog file until ctx is done. When no provider
// resolves the app is read-only and the warning goes to stderr.
func openServingApp(ctx context.Context) (*cliApp, *catalog.Live, error) {
	cat, err := catalog.NewLive(afero.NewOsFs(), config.GetCatalogPath(), slog.Default())
	if err != nil {
		return nil, nil, fmt.Errorf("load catalog: %w", err)
	}
	go func() {
		if err := cat.Watch(ctx); err != nil {
			slog.Debug("catalog watch disabled", "error", err)
		}
	}()

	store, err := session.NewSQLiteStore(config.GetStoreDir())
	if err != nil {
		return nil, nil, fmt.Errorf("open session store: %w", err)
	}

	engine, err := newEngine(ctx, cat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠  LLM config warning: %v\n", err)
		fmt.Fprintln(os.Stderr, "⚠  new runs and deep dives are unavailable until a provider is configured")
		return &cliApp{
			CascadeApp: app.NewCascadeApp(app.NewContext(store, nil, cat)),
			close:      func() { _ = store.Close() },
		}, cat, nil
	}
	return &cliApp{
		CascadeApp: app.NewCascadeApp(app.NewContext(store, engine, cat)),
		provider:   engine.Provider(),
		close: func() {
			_ = engine.Close()
			_ = store.Close()
		},
	}, cat, nil
}

// loadCatalog returns the embedded catalog with the user catalog merged in.
func loadCatalog() (*catalog.Catalog, error) {
	cat, err := catalog.LoadFile(afero.NewOsFs(), config.GetCatalogPath())
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

func newEngine(ctx context.Context, hints prompts.HintSource) (*cascade.Engine, error) {
	resolved, err := config.LoadLLMConfig()
	if err != nil {
		return nil, err
	}
	limits := config.LoadCascadeConfig()
	slog.Debug("llm provider resolved",
		"provider", resolved.Provider,
		"model", resolved.Model,
		"source", resolved.Source)

	return cascade.NewFromConfig(ctx, resolved.Config,
		cascade.WithLogger(slog.Default()),
		cascade.WithPromptBuilder(prompts.NewComposer(hints)),
		cascade.WithTokenLimits(limits.MaxTokens, limits.DeepDiveMaxTokens),
		cascade.WithTemperature(limits.Temperature),
	)
}

// newProgress returns a stage reporter on stderr plus a stop func.
// Quiet suppresses output but still records the stage for crash logs.
func newProgress(sessionID string, quiet bool) (cascade.ProgressFunc, func()) {
	if quiet {
		return func(label string, _ float64) { logger.SetSession(sessionID, label) }, func() {}
	}
	p := ui.NewProgress(os.Stderr, ui.IsInteractive(os.Stderr))
	return func(label string, fraction float64) {
		logger.SetSession(sessionID, label)
		p.Update(label, fraction)
	}, p.Stop
}

// renderError formats command errors for the terminal.
func renderError(err error) string {
	var perr *config.ProviderError
	if errors.As(err, &perr) {
		body := perr.Reason
		if perr.Remediation != "" {
			body += "\n\nFix: " + perr.Remediation
		}
		return ui.RenderErrorPanel(fmt.Sprintf("LLM provider %q is not usable", perr.Provider), body)
	}
	var serr *cascade.StageError
	if errors.As(err, &serr) {
		return ui.RenderErrorPanel(fmt.Sprintf("%s stage failed", serr.Stage), err.Error())
	}
	return ui.StyleError.Render("Error: ") + err.Error()
}
