/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"

	"github.com/josephgoksu/cascade/internal/app"
	"github.com/josephgoksu/cascade/internal/telemetry"
	"github.com/josephgoksu/cascade/internal/ui"
	"github.com/spf13/cobra"
)

// diveCmd represents the dive command
var diveCmd = &cobra.Command{
	Use:   "dive <session-id>",
	Short: "Run a secondary or tertiary deep dive on selected effects",
	Long: `Explore selected effects of an existing session in more depth.

A secondary dive looks for hidden risks, cross-connections and an
implementation plan. A tertiary dive adds failure modes, runbooks and
quantitative projections. Each dive is appended to the session history.

Examples:
  cascade dive sess-1a2b3c4d --node fo-1
  cascade dive sess-1a2b3c4d --node fo-1,ho-3 --level tertiary --question "What breaks first?"`,
	Args: cobra.ExactArgs(1),
	RunE: runDive,
}

func init() {
	rootCmd.AddCommand(diveCmd)
	diveCmd.Flags().StringSlice("node", nil, "effect id to explore (repeatable)")
	diveCmd.Flags().String("level", "secondary", "deep dive level: secondary or tertiary")
	diveCmd.Flags().String("question", "", "question to focus the dive")
	_ = diveCmd.MarkFlagRequired("node")
}

func runDive(cmd *cobra.Command, args []string) error {
	nodes, _ := cmd.Flags().GetStringSlice("node")
	level, _ := cmd.Flags().GetString("level")
	question, _ := cmd.Flags().GetString("question")

	a, err := openApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	progress, stop := newProgress(args[0], isQuiet() || isJSON())
	rec, err := a.Dive(cmd.Context(), app.DiveOptions{
		SessionID: args[0],
		NodeIDs:   nodes,
		Level:     level,
		Question:  question,
	}, progress)
	stop()
	if err != nil {
		return err
	}
	tracker.Track(telemetry.DeepDive(string(a.provider), string(rec.Level), len(rec.SelectedNodeIDs),
		len(rec.Effects), rec.Usage.TotalTokens))

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), rec)
	}
	fmt.Fprint(cmd.OutOrStdout(), ui.RenderDeepDive(rec))
	return nil
}
