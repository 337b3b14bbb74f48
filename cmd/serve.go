/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/josephgoksu/cascade/internal/server"
	"github.com/josephgoksu/cascade/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve sessions over a local JSON HTTP API",
	Long: `Start an HTTP API for front ends and scripts.

Endpoints:
  GET    /api/info                     version, provider and modes
  GET    /api/catalog?kind=            catalog entries
  GET    /api/sessions                 stored sessions
  POST   /api/sessions                 create a session and run the cascade
  GET    /api/sessions/{id}            one session with its deep dives
  DELETE /api/sessions/{id}            delete a session
  GET    /api/sessions/{id}/report     Markdown report
  POST   /api/sessions/{id}/dives      run a deep dive

Examples:
  cascade serve
  cascade serve --addr 127.0.0.1:8080 --origin http://localhost:5173`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "127.0.0.1:7420", "listen address")
	serveCmd.Flags().StringSlice("origin", []string{"http://localhost:3000"}, "allowed CORS origin (repeatable, * for any)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.origins", serveCmd.Flags().Lookup("origin"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, cat, err := openServingApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	srv := server.New(a.CascadeApp, server.Config{
		Addr:     viper.GetString("server.addr"),
		Origins:  viper.GetStringSlice("server.origins"),
		Version:  version,
		Provider: string(a.provider),
		Catalog:  cat,
		Logger:   slog.Default(),
	})

	var wg sync.WaitGroup
	errChan := make(chan error, 1)
	addr, err := srv.Start(&wg, errChan)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.StyleTitle.Render("Cascade API"))
	fmt.Fprintf(out, "  Listening: http://%s/api\n", addr)
	if !a.CanGenerate() {
		fmt.Fprintln(out, ui.StyleWarning.Render("  Read-only: no LLM provider configured"))
	}
	fmt.Fprintln(out, ui.StyleSubtle.Render("  Press Ctrl+C to stop"))

	var serveErr error
	select {
	case <-ctx.Done():
		fmt.Fprintln(out, "\nShutting down...")
	case serveErr = <-errChan:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("server shutdown", "error", err)
	}
	wg.Wait()
	return serveErr
}
