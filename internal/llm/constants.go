package llm

// Provider identifies a text-generation backend.
type Provider string

// Provider constants
const (
	// ProviderOpenAI represents the OpenAI provider
	ProviderOpenAI Provider = "openai"

	// ProviderOllama represents a local Ollama server
	ProviderOllama Provider = "ollama"

	// ProviderAnthropic represents the Anthropic provider
	ProviderAnthropic Provider = "anthropic"

	// ProviderGemini represents the Google Gemini provider
	ProviderGemini Provider = "gemini"

	// FallbackProvider is used when neither preference nor detection names a provider.
	FallbackProvider = ProviderOpenAI
)

// Providers returns the supported providers in detection order.
func Providers() []Provider {
	return []Provider{ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderOllama}
}

// APIKeyEnvVars lists the environment variables checked for each provider's
// API key, in priority order. Ollama needs no key.
var APIKeyEnvVars = map[Provider][]string{
	ProviderOpenAI:    {"OPENAI_API_KEY"},
	ProviderAnthropic: {"ANTHROPIC_API_KEY"},
	ProviderGemini:    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// DefaultOllamaURL is the default URL for Ollama server
const DefaultOllamaURL = "http://localhost:11434"

// OllamaHostEnvVar overrides the Ollama URL and signals a local server.
const OllamaHostEnvVar = "OLLAMA_HOST"

// Generation defaults.
const (
	// DefaultTemperature is the fixed sampling temperature for every stage.
	DefaultTemperature float32 = 0.7

	// DefaultMaxTokens is the ceiling for pipeline stages.
	DefaultMaxTokens = 2000

	// DefaultDeepDiveMaxTokens is the ceiling for deep dives.
	DefaultDeepDiveMaxTokens = 3000
)

// DefaultModelForProvider returns the default model ID for a given provider.
// This is a convenience wrapper around GetDefaultModelID in models.go.
func DefaultModelForProvider(provider Provider) string {
	return GetDefaultModelID(provider)
}
