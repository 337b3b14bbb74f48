// Package llm creates chat models for the supported providers using CloudWeGo Eino.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/eino-contrib/jsonschema"
	"google.golang.org/genai"
)

// Config holds configuration for creating a chat model.
type Config struct {
	Provider Provider
	Model    string // Defaults to the provider's default model
	APIKey   string // Required for OpenAI, Anthropic and Gemini
	BaseURL  string // Ollama server or OpenAI-compatible endpoint
}

// CloseableChatModel is a chat model that may hold a client needing release.
type CloseableChatModel struct {
	model.BaseChatModel
	closer io.Closer
}

// Close releases the underlying client. Safe to call more than once.
func (c *CloseableChatModel) Close() error {
	if c.closer == nil {
		return nil
	}
	err := c.closer.Close()
	c.closer = nil
	return err
}

// genaiClientCloser drops the reference to a genai client. The SDK manages
// its own HTTP transport, so releasing the reference is all that is needed.
type genaiClientCloser struct {
	client *genai.Client
}

func (g *genaiClientCloser) Close() error {
	g.client = nil
	return nil
}

// NewCloseableChatModel creates a chat model for the configured provider.
// Callers should Close it when done.
func NewCloseableChatModel(ctx context.Context, cfg Config) (*CloseableChatModel, error) {
	modelID := cfg.Model
	if modelID == "" {
		modelID = GetDefaultModelID(cfg.Provider)
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		cm, err := openai.NewChatModel(ctx, openAIConfig(cfg, modelID))
		if err != nil {
			return nil, fmt.Errorf("create openai chat model: %w", err)
		}
		return &CloseableChatModel{BaseChatModel: cm}, nil

	case ProviderOllama:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = DefaultOllamaURL
		}
		cm, err := ollama.NewChatModel(ctx, ollamaConfig(baseURL, modelID))
		if err != nil {
			return nil, fmt.Errorf("create ollama chat model: %w", err)
		}
		return &CloseableChatModel{BaseChatModel: cm}, nil

	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic API key is required")
		}
		cm, err := claude.NewChatModel(ctx, &claude.Config{
			APIKey:    cfg.APIKey,
			Model:     modelID,
			MaxTokens: DefaultDeepDiveMaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("create anthropic chat model: %w", err)
		}
		return &CloseableChatModel{BaseChatModel: cm}, nil

	case ProviderGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini API key is required")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create genai client: %w", err)
		}
		cm, err := gemini.NewChatModel(ctx, geminiConfig(client, modelID))
		if err != nil {
			return nil, fmt.Errorf("create gemini chat model: %w", err)
		}
		return &CloseableChatModel{BaseChatModel: cm, closer: &genaiClientCloser{client: client}}, nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s (supported: openai, ollama, anthropic, gemini)", cfg.Provider)
	}
}

// Every stage expects one JSON object back, so JSON mode is switched on
// wherever the backend has it. Anthropic has no such switch; the executor's
// system-prompt instruction covers it.

func openAIConfig(cfg Config, modelID string) *openai.ChatModelConfig {
	return &openai.ChatModelConfig{
		Model:   modelID,
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
}

func ollamaConfig(baseURL, modelID string) *ollama.ChatModelConfig {
	return &ollama.ChatModelConfig{
		BaseURL: baseURL,
		Model:   modelID,
		Format:  json.RawMessage(`"json"`),
	}
}

// geminiConfig sets an open object schema; the gemini model only requests
// application/json output when a response schema is present.
func geminiConfig(client *genai.Client, modelID string) *gemini.Config {
	return &gemini.Config{
		Client:             client,
		Model:              modelID,
		ResponseJSONSchema: &jsonschema.Schema{Type: "object"},
	}
}

// ValidateProvider checks if the given provider string is supported.
func ValidateProvider(p string) (Provider, error) {
	for _, known := range Providers() {
		if Provider(p) == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("unsupported provider: %s", p)
}
