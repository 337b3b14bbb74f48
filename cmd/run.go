/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/josephgoksu/cascade/internal/app"
	"github.com/josephgoksu/cascade/internal/session"
	"github.com/josephgoksu/cascade/internal/telemetry"
	"github.com/josephgoksu/cascade/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate a full effect cascade for a set of seeds",
	Long: `Create a session from catalog concepts, patterns and practices and run the
three-stage pipeline: first-order effects, higher-order effects with threshold
leaps, and a synthesized strategy.

Examples:
  cascade run --concept rag
  cascade run --pattern event-sourcing --practice feature-flags --mode stress-test
  cascade run --concept model-routing --budget low --horizon "12 months" \
      --objective "cut inference cost" --constraint team=platform`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd.Flags())
}

func addRunFlags(f *pflag.FlagSet) {
	f.StringSlice("concept", nil, "concept id (repeatable)")
	f.StringSlice("pattern", nil, "pattern id (repeatable)")
	f.StringSlice("practice", nil, "practice id (repeatable)")
	f.String("mode", "", "analysis mode: "+modeList())
	f.String("name", "", "session name")
	f.StringArray("objective", nil, "objective (repeatable)")
	f.String("budget", "", "budget tier")
	f.String("latency", "", "latency target")
	f.String("accuracy", "", "accuracy target")
	f.String("compliance", "", "compliance profile")
	f.String("horizon", "", "time horizon")
	f.StringToString("constraint", nil, "extra constraint as key=value")
	f.String("context", "", "background text passed to every stage")
}

func runRun(cmd *cobra.Command, _ []string) error {
	opts, err := runOptionsFromFlags(cmd)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	progress, stop := newProgress("", isQuiet() || isJSON())
	res, err := a.Run(cmd.Context(), opts, progress)
	stop()
	if err != nil {
		return err
	}
	s := res.Session
	tracker.Track(telemetry.CascadeRun(string(a.provider), string(s.Mode), len(s.Seeds.IDs()),
		len(s.EffectGraph.Nodes), len(s.Leaps), res.Usage.TotalTokens))

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), res)
	}
	out := cmd.OutOrStdout()
	fmt.Fprint(out, ui.RenderResult(res.Session))
	fmt.Fprintln(out, usageLine(res.Usage.TotalTokens, res.Usage.EstimatedCostUSD, res.Usage.Estimated))
	fmt.Fprintf(out, "\nDive deeper with: cascade dive %s --node <effect-id>\n", res.Session.ID)
	return nil
}

func runOptionsFromFlags(cmd *cobra.Command) (app.RunOptions, error) {
	f := cmd.Flags()
	str := func(name string) string {
		v, _ := f.GetString(name)
		return strings.TrimSpace(v)
	}
	concepts, _ := f.GetStringSlice("concept")
	patterns, _ := f.GetStringSlice("pattern")
	practices, _ := f.GetStringSlice("practice")
	objectives, _ := f.GetStringArray("objective")
	extras, err := f.GetStringToString("constraint")
	if err != nil {
		return app.RunOptions{}, fmt.Errorf("invalid --constraint: %w", err)
	}

	opts := app.RunOptions{
		Name:       str("name"),
		Seeds:      session.Seeds{Concepts: concepts, Patterns: patterns, Practices: practices},
		Mode:       str("mode"),
		Objectives: objectives,
		Constraints: session.Constraints{
			BudgetTier:        str("budget"),
			LatencyTarget:     str("latency"),
			AccuracyTarget:    str("accuracy"),
			ComplianceProfile: str("compliance"),
			TimeHorizon:       str("horizon"),
		},
		Context: str("context"),
	}
	if len(extras) > 0 {
		opts.Constraints.Extras = extras
	}
	return opts, nil
}

func modeList() string {
	modes := session.Modes()
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

func usageLine(total int, cost float64, estimated bool) string {
	line := fmt.Sprintf("tokens: %d", total)
	if estimated {
		line += " (estimated)"
	}
	if cost > 0 {
		line += fmt.Sprintf("   est. cost: $%.4f", cost)
	}
	return ui.StyleSubtle.Render(line)
}
