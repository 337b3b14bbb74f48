package llm

import "strings"

// Model describes a supported model and its pricing.
type Model struct {
	ID          string   // Canonical model ID (e.g., "gpt-5-mini")
	Provider    Provider // Provider that serves it
	Aliases     []string // Alternative IDs including dated versions
	InputPer1M  float64  // $ per 1M input tokens
	OutputPer1M float64  // $ per 1M output tokens
	IsDefault   bool     // Whether this is the default model for its provider
}

// ModelRegistry is the single source of truth for supported models.
// Prices last updated: 2025-12
var ModelRegistry = []Model{
	// OpenAI
	{ID: "gpt-5-mini", Provider: ProviderOpenAI, Aliases: []string{"gpt-5-mini-2025-08-07"}, InputPer1M: 0.22, OutputPer1M: 1.80, IsDefault: true},
	{ID: "gpt-5.1", Provider: ProviderOpenAI, InputPer1M: 1.10, OutputPer1M: 9.00},
	{ID: "gpt-4.1-mini", Provider: ProviderOpenAI, Aliases: []string{"gpt-4.1-mini-2025-04-14"}, InputPer1M: 0.15, OutputPer1M: 0.60},
	{ID: "gpt-4o", Provider: ProviderOpenAI, Aliases: []string{"gpt-4o-2024-08-06"}, InputPer1M: 2.50, OutputPer1M: 10.00},
	{ID: "gpt-4o-mini", Provider: ProviderOpenAI, Aliases: []string{"gpt-4o-mini-2024-07-18"}, InputPer1M: 0.15, OutputPer1M: 0.60},

	// Anthropic
	{ID: "claude-3-5-sonnet-latest", Provider: ProviderAnthropic, Aliases: []string{"claude-3-5-sonnet-20241022"}, InputPer1M: 3.00, OutputPer1M: 15.00, IsDefault: true},
	{ID: "claude-3-5-haiku-latest", Provider: ProviderAnthropic, Aliases: []string{"claude-3-5-haiku-20241022"}, InputPer1M: 0.80, OutputPer1M: 4.00},
	{ID: "claude-3-opus-latest", Provider: ProviderAnthropic, Aliases: []string{"claude-3-opus-20240229"}, InputPer1M: 15.00, OutputPer1M: 75.00},

	// Google
	{ID: "gemini-2.0-flash", Provider: ProviderGemini, InputPer1M: 0.10, OutputPer1M: 0.40, IsDefault: true},
	{ID: "gemini-2.5-pro", Provider: ProviderGemini, InputPer1M: 1.25, OutputPer1M: 10.00},
	{ID: "gemini-2.5-flash", Provider: ProviderGemini, InputPer1M: 0.30, OutputPer1M: 2.50},

	// Ollama (local, no pricing)
	{ID: "llama3.2", Provider: ProviderOllama, IsDefault: true},
}

// modelIndex is built at init time for fast lookups
var modelIndex map[string]*Model

func init() {
	modelIndex = make(map[string]*Model)
	for i := range ModelRegistry {
		m := &ModelRegistry[i]
		modelIndex[m.ID] = m
		for _, alias := range m.Aliases {
			modelIndex[alias] = m
		}
	}
}

// GetModel returns the model definition for a given model ID or alias.
// Returns nil if the model is not found.
func GetModel(modelID string) *Model {
	return modelIndex[modelID]
}

// GetDefaultModelID returns the default model ID for a provider.
func GetDefaultModelID(provider Provider) string {
	for i := range ModelRegistry {
		m := &ModelRegistry[i]
		if m.Provider != provider || !m.IsDefault {
			continue
		}
		// Return the dated version for OpenAI (API compatibility)
		if provider == ProviderOpenAI && len(m.Aliases) > 0 {
			return m.Aliases[0]
		}
		return m.ID
	}
	return ""
}

// InferProvider attempts to determine the provider from a model name.
func InferProvider(modelID string) (Provider, bool) {
	if m := GetModel(modelID); m != nil {
		return m.Provider, true
	}

	switch {
	case strings.HasPrefix(modelID, "gpt-"), strings.HasPrefix(modelID, "o1-"), strings.HasPrefix(modelID, "o3-"):
		return ProviderOpenAI, true
	case strings.HasPrefix(modelID, "claude-"):
		return ProviderAnthropic, true
	case strings.HasPrefix(modelID, "gemini-"):
		return ProviderGemini, true
	case strings.HasPrefix(modelID, "llama"), strings.HasPrefix(modelID, "mistral"), strings.HasPrefix(modelID, "qwen"), strings.HasPrefix(modelID, "phi"):
		return ProviderOllama, true
	}
	return "", false
}

// CalculateCost calculates cost in USD for token usage. Unknown models cost 0.
func CalculateCost(modelID string, inputTokens, outputTokens int) float64 {
	m := GetModel(modelID)
	if m == nil {
		return 0
	}
	inputCost := float64(inputTokens) / 1_000_000 * m.InputPer1M
	outputCost := float64(outputTokens) / 1_000_000 * m.OutputPer1M
	return inputCost + outputCost
}
