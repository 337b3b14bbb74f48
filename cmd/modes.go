/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/josephgoksu/cascade/internal/catalog"
	"github.com/josephgoksu/cascade/internal/prompts"
	"github.com/josephgoksu/cascade/internal/session"
	"github.com/josephgoksu/cascade/internal/ui"
	"github.com/spf13/cobra"
)

// modesCmd lists the analysis modes.
var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List analysis modes and what each one asks for",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		t := &ui.Table{Headers: []string{"Mode", "Guidance"}, MaxWidth: 80}
		for _, m := range session.Modes() {
			name := string(m)
			if m == session.DefaultMode {
				name += " (default)"
			}
			t.Rows = append(t.Rows, []string{name, strings.TrimSpace(prompts.ModeGuidance(m))})
		}
		fmt.Fprint(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

// catalogCmd lists the seeds that run accepts.
var catalogCmd = &cobra.Command{
	Use:   "catalog [kind]",
	Short: "List catalog concepts, patterns and practices",
	Long: `List the catalog entries usable as seeds for cascade run.

Pass concept, pattern or practice to filter by kind. Entries from
~/.cascade/catalog.yaml (or catalog.path) override or extend the
built-in catalog.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(catalog.KindConcept), string(catalog.KindPattern), string(catalog.KindPractice)},
	RunE: func(cmd *cobra.Command, args []string) error {
		var kind catalog.Kind
		if len(args) == 1 {
			kind = catalog.Kind(strings.ToLower(args[0]))
		}

		var entries []catalog.Entry
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		for _, e := range cat.Entries() {
			if kind == "" || e.Kind == kind {
				entries = append(entries, e)
			}
		}
		if isJSON() {
			return printJSON(cmd.OutOrStdout(), entries)
		}
		if len(entries) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No %s entries found.\n", kind)
			return nil
		}
		t := &ui.Table{Headers: []string{"ID", "Kind", "Name", "Summary"}, MaxWidth: 60}
		for _, e := range entries {
			t.Rows = append(t.Rows, []string{e.ID, string(e.Kind), e.Name, e.Summary})
		}
		fmt.Fprint(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modesCmd, catalogCmd)
}
