/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/josephgoksu/cascade/internal/config"
	"github.com/josephgoksu/cascade/internal/policy"
	"github.com/josephgoksu/cascade/internal/ui"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// errPolicyDenied makes check exit non-zero after the report is printed.
var errPolicyDenied = errors.New("session failed policy checks")

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <session-id>",
	Short: "Check a session against policy guardrails",
	Long: `Evaluate a stored session against Rego policies.

Built-in policies require a generated cascade, an action plan for likely
severe effects and a consistent effect graph. Policies in
~/.cascade/policies (or --policies) are loaded as well; they must use
package cascade.policy and may define deny and warn rules.

Examples:
  cascade check sess-1a2b3c4d
  cascade check sess-1a2b3c4d --policies ./policies --no-builtin`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().String("policies", "", "directory of .rego policies (default ~/.cascade/policies)")
	checkCmd.Flags().Bool("no-builtin", false, "skip the built-in policies")
}

func runCheck(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("policies")
	noBuiltin, _ := cmd.Flags().GetBool("no-builtin")
	if dir == "" {
		dir = config.GetPoliciesDir()
	}

	a, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	s, err := a.Show(args[0])
	if err != nil {
		return err
	}

	var files []*policy.File
	if !noBuiltin {
		files = append(files, policy.Builtin()...)
	}
	userFiles, err := policy.NewLoader(afero.NewOsFs(), dir).LoadAll()
	if err != nil {
		return fmt.Errorf("load policies: %w", err)
	}
	files = append(files, userFiles...)

	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	engine, err := policy.NewEngine(cmd.Context(), files, cat)
	if err != nil {
		return err
	}
	decision, err := engine.Evaluate(cmd.Context(), s)
	if err != nil {
		return err
	}

	if isJSON() {
		if err := printJSON(cmd.OutOrStdout(), decision); err != nil {
			return err
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(), ui.RenderDecision(decision))
	}
	if !decision.IsAllowed() {
		return errPolicyDenied
	}
	return nil
}
