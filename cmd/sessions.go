/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/josephgoksu/cascade/internal/report"
	"github.com/josephgoksu/cascade/internal/ui"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// sessionsCmd represents the sessions command
var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"session"},
	Short:   "Inspect stored sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.close()

		items, err := a.List()
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		if isJSON() {
			return printJSON(cmd.OutOrStdout(), items)
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.RenderSessionList(items))
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session with its deep dives",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.close()

		s, err := a.Show(args[0])
		if err != nil {
			return err
		}
		if isJSON() {
			return printJSON(cmd.OutOrStdout(), s)
		}
		out := cmd.OutOrStdout()
		fmt.Fprint(out, ui.RenderResult(s))
		for i := range s.DeepDives {
			fmt.Fprintln(out)
			fmt.Fprint(out, ui.RenderDeepDive(&s.DeepDives[i]))
		}
		return nil
	},
}

var sessionsExportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Write a session as a Markdown report",
	Long: `Write a session, including every deep dive, as a Markdown report.

Without --out the report is written to cascade-<session-id>.md in the
current directory. Use --out - to print it instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("out")

		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.close()

		s, err := a.Show(args[0])
		if err != nil {
			return err
		}
		if path == "-" {
			fmt.Fprint(cmd.OutOrStdout(), report.Markdown(s))
			return nil
		}
		if strings.TrimSpace(path) == "" {
			path = report.DefaultFilename(s)
		}
		if err := report.Export(afero.NewOsFs(), s, path); err != nil {
			return err
		}
		if !isQuiet() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s Report written to %s\n", ui.Mark(true), path)
		}
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session and its deep dives",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.Delete(args[0]); err != nil {
			return err
		}
		if !isQuiet() {
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsExportCmd, sessionsDeleteCmd)
	sessionsExportCmd.Flags().StringP("out", "o", "", "output path (default cascade-<id>.md, - for stdout)")
}
