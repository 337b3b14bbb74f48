package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProvider(t *testing.T) {
	for _, p := range Providers() {
		got, err := ValidateProvider(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	for _, bad := range []string{"", "OPENAI", "azure", "claude"} {
		_, err := ValidateProvider(bad)
		assert.Error(t, err, "provider %q", bad)
	}
}

func TestDefaultModelForProvider(t *testing.T) {
	for _, p := range Providers() {
		id := DefaultModelForProvider(p)
		require.NotEmpty(t, id, "provider %s has no default model", p)

		// The default must round-trip through model inference so a bare
		// --model flag picks the same provider back.
		inferred, ok := InferProvider(id)
		assert.True(t, ok, "default model %q not inferable", id)
		assert.Equal(t, p, inferred)
	}
	assert.Empty(t, DefaultModelForProvider("unknown"))
}

func TestNewCloseableChatModel_MissingKey(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		provider Provider
		wantErr  string
	}{
		{ProviderOpenAI, "OpenAI API key is required"},
		{ProviderAnthropic, "anthropic API key is required"},
		{ProviderGemini, "gemini API key is required"},
		{"bedrock", "unsupported LLM provider: bedrock"},
	}
	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			_, err := NewCloseableChatModel(ctx, Config{Provider: tt.provider})
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestNewCloseableChatModel_Ollama(t *testing.T) {
	// No key needed and no request is made until Generate.
	cm, err := NewCloseableChatModel(context.Background(), Config{Provider: ProviderOllama})
	require.NoError(t, err)
	require.NotNil(t, cm.BaseChatModel)
	assert.NoError(t, cm.Close())
}

type countingCloser struct {
	calls int
	err   error
}

func (c *countingCloser) Close() error {
	c.calls++
	return c.err
}

func TestCloseableChatModel_Close(t *testing.T) {
	t.Run("nil closer", func(t *testing.T) {
		cm := &CloseableChatModel{}
		assert.NoError(t, cm.Close())
		assert.NoError(t, cm.Close())
	})

	t.Run("closes once", func(t *testing.T) {
		c := &countingCloser{err: errors.New("transport busy")}
		cm := &CloseableChatModel{closer: c}

		assert.EqualError(t, cm.Close(), "transport busy")
		assert.NoError(t, cm.Close())
		assert.Equal(t, 1, c.calls)
	})

	t.Run("genai", func(t *testing.T) {
		g := &genaiClientCloser{}
		assert.NoError(t, g.Close())
		assert.Nil(t, g.client)
	})
}

func TestBackendConfigsRequestJSON(t *testing.T) {
	oa := openAIConfig(Config{APIKey: "sk-test", BaseURL: "https://gateway.local/v1"}, "gpt-4o")
	require.NotNil(t, oa.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, oa.ResponseFormat.Type)
	assert.Equal(t, "gpt-4o", oa.Model)
	assert.Equal(t, "https://gateway.local/v1", oa.BaseURL)

	ol := ollamaConfig(DefaultOllamaURL, "llama3.2")
	assert.JSONEq(t, `"json"`, string(ol.Format))

	gm := geminiConfig(nil, "gemini-2.0-flash")
	require.NotNil(t, gm.ResponseJSONSchema)
	assert.Equal(t, "object", gm.ResponseJSONSchema.Type)
}
