package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/josephgoksu/cascade/internal/llm"
	"github.com/spf13/viper"
)

// ProviderSource records how the active provider was chosen.
type ProviderSource string

const (
	SourcePreference ProviderSource = "preference"
	SourceModel      ProviderSource = "model"
	SourceDetected   ProviderSource = "detected"
	SourceFallback   ProviderSource = "fallback"
)

// ProviderError reports a provider that cannot be used as configured.
type ProviderError struct {
	Provider    llm.Provider
	Reason      string
	Remediation string
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("provider %s: %s", e.Provider, e.Reason)
	if e.Remediation != "" {
		msg += " (" + e.Remediation + ")"
	}
	return msg
}

// Resolved is an LLM configuration plus the way its provider was selected.
type Resolved struct {
	llm.Config
	Source ProviderSource
}

// LoadLLMConfig loads LLM configuration from Viper and environment variables.
//
// Provider resolution (first match wins):
// 1. Explicit preference via "llm.provider"
// 2. Provider inferred from a known "llm.model"
// 3. Auto-detection from API-key env vars, then OLLAMA_HOST
// 4. llm.FallbackProvider
//
// A resolved provider that needs a key and has none yields a *ProviderError.
func LoadLLMConfig() (Resolved, error) {
	provider, source, err := resolveProvider(os.LookupEnv)
	if err != nil {
		return Resolved{}, err
	}

	model := strings.TrimSpace(viper.GetString("llm.model"))
	if model == "" {
		model = llm.DefaultModelForProvider(provider)
	}

	apiKey := ResolveAPIKey(provider)
	if apiKey == "" && provider != llm.ProviderOllama {
		return Resolved{}, &ProviderError{
			Provider:    provider,
			Reason:      "no API key configured",
			Remediation: remediationFor(provider),
		}
	}

	baseURL := strings.TrimSpace(viper.GetString("llm.baseURL"))
	if baseURL == "" && provider == llm.ProviderOllama {
		baseURL = ollamaURL(os.LookupEnv)
	}

	return Resolved{
		Config: llm.Config{
			Provider: provider,
			Model:    model,
			APIKey:   apiKey,
			BaseURL:  baseURL,
		},
		Source: source,
	}, nil
}

func resolveProvider(lookupEnv func(string) (string, bool)) (llm.Provider, ProviderSource, error) {
	if pref := strings.TrimSpace(viper.GetString("llm.provider")); pref != "" {
		p, err := llm.ValidateProvider(pref)
		if err != nil {
			return "", "", &ProviderError{
				Provider:    llm.Provider(pref),
				Reason:      err.Error(),
				Remediation: "set llm.provider to one of " + providerList(),
			}
		}
		return p, SourcePreference, nil
	}
	if model := strings.TrimSpace(viper.GetString("llm.model")); model != "" {
		if p, ok := llm.InferProvider(model); ok {
			return p, SourceModel, nil
		}
	}
	if p, ok := DetectProvider(lookupEnv); ok {
		return p, SourceDetected, nil
	}
	return llm.FallbackProvider, SourceFallback, nil
}

// DetectProvider picks the first provider whose API key is present in the
// environment, in llm.Providers() order. A set OLLAMA_HOST selects Ollama
// when no key is found.
func DetectProvider(lookupEnv func(string) (string, bool)) (llm.Provider, bool) {
	for _, p := range llm.Providers() {
		for _, name := range llm.APIKeyEnvVars[p] {
			if v, ok := lookupEnv(name); ok && strings.TrimSpace(v) != "" {
				return p, true
			}
		}
	}
	if v, ok := lookupEnv(llm.OllamaHostEnvVar); ok && strings.TrimSpace(v) != "" {
		return llm.ProviderOllama, true
	}
	return "", false
}

// ResolveAPIKey returns the best API key for the given provider using
// the per-provider config key, then provider-specific env vars.
func ResolveAPIKey(provider llm.Provider) string {
	path := fmt.Sprintf("llm.apiKeys.%s", provider)
	if viper.IsSet(path) {
		if key := strings.TrimSpace(viper.GetString(path)); key != "" {
			return key
		}
	}
	return providerEnvKey(provider)
}

func providerEnvKey(provider llm.Provider) string {
	for _, name := range llm.APIKeyEnvVars[provider] {
		if key := strings.TrimSpace(os.Getenv(name)); key != "" {
			return key
		}
	}
	return ""
}

func ollamaURL(lookupEnv func(string) (string, bool)) string {
	host, ok := lookupEnv(llm.OllamaHostEnvVar)
	host = strings.TrimSpace(host)
	if !ok || host == "" {
		return llm.DefaultOllamaURL
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host
}

func remediationFor(provider llm.Provider) string {
	env := llm.APIKeyEnvVars[provider]
	hint := fmt.Sprintf("run `cascade config set --provider %s --api-key <key>`", provider)
	if len(env) > 0 {
		hint = fmt.Sprintf("export %s or %s", env[0], hint)
	}
	return hint
}

func providerList() string {
	names := make([]string, 0, len(llm.Providers()))
	for _, p := range llm.Providers() {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}
