/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/josephgoksu/cascade/internal/config"
	"github.com/josephgoksu/cascade/internal/llm"
	"github.com/josephgoksu/cascade/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configCmd is the parent config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Cascade configuration",
	Long: `View and manage the global configuration in ~/.cascade/config.yaml.

Environment variables override the file: CASCADE_LLM_PROVIDER,
CASCADE_LLM_MODEL and the provider key variables (OPENAI_API_KEY,
ANTHROPIC_API_KEY, GEMINI_API_KEY).`,
}

// configShowCmd shows the resolved configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the resolved LLM and cascade settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConfigShow(cmd.OutOrStdout())
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save the default provider, model and API key",
	Long: `Save the default provider, model and API key to the global config.

Examples:
  cascade config set --provider openai --api-key sk-...
  cascade config set --provider ollama --model llama3.2`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		provider, _ := cmd.Flags().GetString("provider")
		model, _ := cmd.Flags().GetString("model")
		key, _ := cmd.Flags().GetString("api-key")

		p, err := llm.ValidateProvider(strings.ToLower(strings.TrimSpace(provider)))
		if err != nil {
			return err
		}
		if err := config.SaveGlobalLLMConfig(p, strings.TrimSpace(model), strings.TrimSpace(key)); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Default provider set to %s\n", ui.Mark(true), p)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSetCmd)

	configSetCmd.Flags().String("provider", "", "provider: openai, anthropic, gemini or ollama")
	configSetCmd.Flags().String("model", "", "default model id")
	configSetCmd.Flags().String("api-key", "", "API key for the provider")
	_ = configSetCmd.MarkFlagRequired("provider")
}

func runConfigShow(w io.Writer) error {
	if path := viper.ConfigFileUsed(); path != "" {
		fmt.Fprintf(w, "Config file: %s\n", path)
	} else {
		fmt.Fprintln(w, "Config file: (none)")
	}
	fmt.Fprintf(w, "Session store: %s\n\n", config.GetStoreDir())

	resolved, err := config.LoadLLMConfig()
	var perr *config.ProviderError
	switch {
	case errors.As(err, &perr):
		fmt.Fprintf(w, "  Provider: %s (%s)\n", perr.Provider, ui.StyleError.Render(perr.Reason))
		if perr.Remediation != "" {
			fmt.Fprintf(w, "  Fix:      %s\n", perr.Remediation)
		}
	case err != nil:
		return err
	default:
		fmt.Fprintf(w, "  Provider: %s (%s)\n", resolved.Provider, resolved.Source)
		fmt.Fprintf(w, "  Model:    %s\n", resolved.Model)
		if resolved.BaseURL != "" {
			fmt.Fprintf(w, "  Base URL: %s\n", resolved.BaseURL)
		}
	}

	limits := config.LoadCascadeConfig()
	fmt.Fprintf(w, "  Stage max tokens:     %d\n", limits.MaxTokens)
	fmt.Fprintf(w, "  Deep dive max tokens: %d\n", limits.DeepDiveMaxTokens)
	fmt.Fprintf(w, "  Temperature:          %.2f\n", limits.Temperature)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "  API Keys:")
	for _, p := range llm.Providers() {
		if p == llm.ProviderOllama {
			continue
		}
		fmt.Fprintf(w, "    %s: %s\n", p, maskKey(config.ResolveAPIKey(p)))
	}
	return nil
}

func maskKey(key string) string {
	switch {
	case key == "":
		return "(not set)"
	case len(key) >= 8:
		return key[:4] + "..." + key[len(key)-4:]
	case len(key) >= 4:
		return key[:2] + "..." + key[len(key)-2:]
	default:
		return "***"
	}
}
