/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/josephgoksu/cascade/internal/app"
	"github.com/josephgoksu/cascade/internal/cascade"
	"github.com/josephgoksu/cascade/internal/config"
	"github.com/josephgoksu/cascade/internal/parser"
	"github.com/josephgoksu/cascade/internal/session"
	"github.com/josephgoksu/cascade/internal/telemetry"
	"github.com/josephgoksu/cascade/internal/ui"
	"github.com/josephgoksu/cascade/internal/util"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// tracker receives usage events. It stays a no-op unless the user opted in.
var tracker telemetry.Client = telemetry.NewNoopClient()

func telemetryStore() (*telemetry.Store, error) {
	dir, err := config.GetGlobalConfigDir()
	if err != nil {
		return nil, err
	}
	return telemetry.NewStore(afero.NewOsFs(), dir), nil
}

// startTelemetry swaps in a real client when telemetry is enabled and a
// collection key is configured. Failures only log.
func startTelemetry() {
	store, err := telemetryStore()
	if err != nil {
		slog.Debug("telemetry disabled", "error", err)
		return
	}
	cfg, err := store.Load()
	if err != nil {
		slog.Debug("telemetry disabled", "error", err)
		return
	}
	client, err := telemetry.New(telemetry.ClientConfig{
		APIKey:   viper.GetString("telemetry.apiKey"),
		Endpoint: viper.GetString("telemetry.endpoint"),
		Version:  version,
		Config:   cfg,
	})
	if err != nil {
		slog.Debug("telemetry disabled", "error", err)
		return
	}
	tracker = client
}

func stopTelemetry() {
	_ = tracker.Close()
}

// errorKind classifies err without exposing its message.
func errorKind(err error) string {
	var (
		perr   *config.ProviderError
		serr   *cascade.StageError
		parseE *parser.ParseError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &perr):
		return "provider"
	case errors.As(err, &parseE):
		return "parse"
	case errors.As(err, &serr):
		return "stage"
	case errors.Is(err, errPolicyDenied):
		return "policy"
	case errors.Is(err, session.ErrNotFound):
		return "not_found"
	case errors.Is(err, app.ErrInvalidInput), errors.Is(err, cascade.ErrNoValidSelection), errors.Is(err, cascade.ErrInvalidLevel),
		errors.Is(err, app.ErrNoGenerator), errors.Is(err, util.ErrAmbiguousID):
		return "invalid_input"
	default:
		return "other"
	}
}

func trackCommand(cmd *cobra.Command, started time.Time, err error) {
	if cmd == nil {
		return
	}
	tracker.Track(telemetry.CommandExecuted(cmd.CommandPath(), time.Since(started), errorKind(err)))
}

var telemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "Manage anonymous usage telemetry",
	Long: `View and manage anonymous usage telemetry.

Telemetry is off by default. When enabled, cascade sends command names,
durations, success or failure, analysis modes and effect counts. Seeds,
objectives, prompts and generated text are never sent. DO_NOT_TRACK=1
disables telemetry regardless of this setting.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runTelemetryStatus(cmd)
	},
}

var telemetryStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current telemetry status",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runTelemetryStatus(cmd)
	},
}

var telemetryEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable anonymous telemetry",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return setTelemetry(cmd, true)
	},
}

var telemetryDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable anonymous telemetry",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return setTelemetry(cmd, false)
	},
}

func init() {
	configCmd.AddCommand(telemetryCmd)
	telemetryCmd.AddCommand(telemetryStatusCmd, telemetryEnableCmd, telemetryDisableCmd)
}

func runTelemetryStatus(cmd *cobra.Command) error {
	store, err := telemetryStore()
	if err != nil {
		return err
	}
	cfg, err := store.Load()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch {
	case telemetry.DoNotTrack():
		fmt.Fprintln(out, "Telemetry: disabled (DO_NOT_TRACK is set)")
	case cfg.Enabled:
		fmt.Fprintf(out, "Telemetry: %s\n", ui.StyleSuccess.Render("enabled"))
		fmt.Fprintf(out, "Anonymous ID: %s\n", cfg.AnonymousID)
		fmt.Fprintln(out, "To disable: cascade config telemetry disable")
	default:
		fmt.Fprintln(out, "Telemetry: disabled")
		fmt.Fprintln(out, "To enable: cascade config telemetry enable")
	}
	return nil
}

func setTelemetry(cmd *cobra.Command, enabled bool) error {
	store, err := telemetryStore()
	if err != nil {
		return err
	}
	if _, err := store.SetEnabled(enabled, time.Now()); err != nil {
		return fmt.Errorf("update telemetry: %w", err)
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Telemetry %s\n", ui.Mark(true), state)
	return nil
}
