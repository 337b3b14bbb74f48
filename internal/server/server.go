// Package server exposes sessions over a small JSON HTTP API so other
// tools and front ends can run cascades and read results.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/josephgoksu/cascade/internal/app"
	"github.com/josephgoksu/cascade/internal/catalog"
)

// CatalogSource lists the seeds the server advertises.
type CatalogSource interface {
	Entries() []catalog.Entry
}

// Config configures a Server.
type Config struct {
	// Addr is the listen address, e.g. "127.0.0.1:7420".
	Addr string
	// Origins are the CORS origins allowed to call the API. "*" allows any.
	Origins  []string
	Version  string
	Provider string
	Catalog  CatalogSource
	Logger   *slog.Logger
}

type Server struct {
	app      *app.CascadeApp
	catalog  CatalogSource
	origins  map[string]struct{}
	version  string
	provider string
	logger   *slog.Logger
	server   *http.Server
}

func New(a *app.CascadeApp, cfg Config) *Server {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &Server{
		app:      a,
		catalog:  cfg.Catalog,
		origins:  make(map[string]struct{}, len(cfg.Origins)),
		version:  cfg.Version,
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
	for _, o := range cfg.Origins {
		s.origins[o] = struct{}{}
	}

	// No write timeout: a full run holds the request open for every stage.
	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.registerRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed API handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start listens on the configured address and serves in the background.
// Listen errors are returned directly; later serve errors go to errChan.
func (s *Server) Start(wg *sync.WaitGroup, errChan chan<- error) (net.Addr, error) {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", s.server.Addr, err)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()
	return ln.Addr(), nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
