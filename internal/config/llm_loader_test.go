package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/josephgoksu/cascade/internal/llm"
	"github.com/spf13/viper"
)

func resetViperForTest(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, vars := range llm.APIKeyEnvVars {
		for _, name := range vars {
			t.Setenv(name, "")
		}
	}
	t.Setenv(llm.OllamaHostEnvVar, "")
}

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDetectProvider(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		want   llm.Provider
		wantOK bool
	}{
		{name: "nothing set", env: nil, wantOK: false},
		{name: "openai key", env: map[string]string{"OPENAI_API_KEY": "sk"}, want: llm.ProviderOpenAI, wantOK: true},
		{name: "anthropic key", env: map[string]string{"ANTHROPIC_API_KEY": "a"}, want: llm.ProviderAnthropic, wantOK: true},
		{name: "google key counts as gemini", env: map[string]string{"GOOGLE_API_KEY": "g"}, want: llm.ProviderGemini, wantOK: true},
		{name: "openai wins over anthropic", env: map[string]string{"ANTHROPIC_API_KEY": "a", "OPENAI_API_KEY": "sk"}, want: llm.ProviderOpenAI, wantOK: true},
		{name: "blank key ignored", env: map[string]string{"OPENAI_API_KEY": "  "}, wantOK: false},
		{name: "ollama host", env: map[string]string{"OLLAMA_HOST": "localhost:11434"}, want: llm.ProviderOllama, wantOK: true},
		{name: "key beats ollama host", env: map[string]string{"OLLAMA_HOST": "x", "GEMINI_API_KEY": "g"}, want: llm.ProviderGemini, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectProvider(envMap(tt.env))
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("DetectProvider() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLoadLLMConfig_PreferenceWins(t *testing.T) {
	resetViperForTest(t)
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")
	viper.Set("llm.provider", "anthropic")
	viper.Set("llm.apiKeys.anthropic", "ak-config")

	got, err := LoadLLMConfig()
	if err != nil {
		t.Fatalf("LoadLLMConfig() error = %v", err)
	}
	if got.Provider != llm.ProviderAnthropic || got.Source != SourcePreference {
		t.Fatalf("provider = %q (%s), want anthropic (preference)", got.Provider, got.Source)
	}
	if got.APIKey != "ak-config" {
		t.Errorf("APIKey = %q, want ak-config", got.APIKey)
	}
	if got.Model != llm.DefaultModelForProvider(llm.ProviderAnthropic) {
		t.Errorf("Model = %q, want provider default", got.Model)
	}
}

func TestLoadLLMConfig_InfersFromModel(t *testing.T) {
	resetViperForTest(t)
	clearProviderEnv(t)
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	viper.Set("llm.model", llm.DefaultModelForProvider(llm.ProviderGemini))

	got, err := LoadLLMConfig()
	if err != nil {
		t.Fatalf("LoadLLMConfig() error = %v", err)
	}
	if got.Provider != llm.ProviderGemini || got.Source != SourceModel {
		t.Fatalf("provider = %q (%s), want gemini (model)", got.Provider, got.Source)
	}
}

func TestLoadLLMConfig_AutoDetect(t *testing.T) {
	resetViperForTest(t)
	clearProviderEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "ak-env")

	got, err := LoadLLMConfig()
	if err != nil {
		t.Fatalf("LoadLLMConfig() error = %v", err)
	}
	if got.Provider != llm.ProviderAnthropic || got.Source != SourceDetected {
		t.Fatalf("provider = %q (%s), want anthropic (detected)", got.Provider, got.Source)
	}
	if got.APIKey != "ak-env" {
		t.Errorf("APIKey = %q, want ak-env", got.APIKey)
	}
}

func TestLoadLLMConfig_OllamaNeedsNoKey(t *testing.T) {
	resetViperForTest(t)
	clearProviderEnv(t)
	t.Setenv(llm.OllamaHostEnvVar, "gpu-box:11434")

	got, err := LoadLLMConfig()
	if err != nil {
		t.Fatalf("LoadLLMConfig() error = %v", err)
	}
	if got.Provider != llm.ProviderOllama {
		t.Fatalf("provider = %q, want ollama", got.Provider)
	}
	if got.BaseURL != "http://gpu-box:11434" {
		t.Errorf("BaseURL = %q, want http://gpu-box:11434", got.BaseURL)
	}
}

func TestLoadLLMConfig_FallbackWithoutKey(t *testing.T) {
	resetViperForTest(t)
	clearProviderEnv(t)

	_, err := LoadLLMConfig()
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("LoadLLMConfig() error = %v, want *ProviderError", err)
	}
	if perr.Provider != llm.FallbackProvider {
		t.Errorf("ProviderError.Provider = %q, want %q", perr.Provider, llm.FallbackProvider)
	}
	if !strings.Contains(perr.Error(), "OPENAI_API_KEY") {
		t.Errorf("ProviderError should mention OPENAI_API_KEY, got %q", perr.Error())
	}
}

func TestLoadLLMConfig_UnknownPreference(t *testing.T) {
	resetViperForTest(t)
	clearProviderEnv(t)
	viper.Set("llm.provider", "bedrock")

	_, err := LoadLLMConfig()
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("LoadLLMConfig() error = %v, want *ProviderError", err)
	}
	if !strings.Contains(perr.Remediation, "openai") {
		t.Errorf("Remediation = %q, want provider list", perr.Remediation)
	}
}

func TestResolveAPIKey_ConfigBeatsEnv(t *testing.T) {
	resetViperForTest(t)
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")

	if got := ResolveAPIKey(llm.ProviderOpenAI); got != "sk-env" {
		t.Fatalf("ResolveAPIKey() = %q, want env key", got)
	}
	viper.Set("llm.apiKeys.openai", " sk-config ")
	if got := ResolveAPIKey(llm.ProviderOpenAI); got != "sk-config" {
		t.Fatalf("ResolveAPIKey() = %q, want config key", got)
	}
}
