package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/josephgoksu/cascade/internal/llm"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTempConfigDir(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	orig := GetGlobalConfigDir
	GetGlobalConfigDir = func() (string, error) { return tmpDir, nil }
	t.Cleanup(func() { GetGlobalConfigDir = orig })
	return tmpDir
}

func readBack(t *testing.T, path string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	return v
}

func TestSaveGlobalLLMConfig_Validation(t *testing.T) {
	withTempConfigDir(t)
	tests := []struct {
		name     string
		provider llm.Provider
		key      string
		wantErr  string
	}{
		{name: "empty provider", provider: "", key: "k", wantErr: "provider cannot be empty"},
		{name: "unknown provider", provider: "bedrock", key: "k", wantErr: "unsupported"},
		{name: "empty key", provider: llm.ProviderOpenAI, key: "", wantErr: "API key cannot be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorContains(t, SaveGlobalLLMConfig(tt.provider, "", tt.key), tt.wantErr)
		})
	}
}

func TestSaveGlobalLLMConfig_NewFile(t *testing.T) {
	dir := withTempConfigDir(t)
	path := filepath.Join(dir, "config.yaml")

	require.NoError(t, SaveGlobalLLMConfig(llm.ProviderGemini, "", "test-api-key:with#special"))

	v := readBack(t, path)
	assert.Equal(t, "gemini", v.GetString("llm.provider"))
	assert.Equal(t, llm.DefaultModelForProvider(llm.ProviderGemini), v.GetString("llm.model"))
	assert.Equal(t, "test-api-key:with#special", v.GetString("llm.apiKeys.gemini"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, configFileMode, info.Mode().Perm())
}

func TestSaveGlobalLLMConfig_OllamaWithoutKey(t *testing.T) {
	dir := withTempConfigDir(t)

	require.NoError(t, SaveGlobalLLMConfig(llm.ProviderOllama, "llama3.1:70b", ""))

	v := readBack(t, filepath.Join(dir, "config.yaml"))
	assert.Equal(t, "llama3.1:70b", v.GetString("llm.model"))
	assert.False(t, v.IsSet("llm.apiKeys.ollama"))
}

func TestSaveGlobalLLMConfig_UpdateExisting(t *testing.T) {
	dir := withTempConfigDir(t)
	path := filepath.Join(dir, "config.yaml")
	initial := `llm:
  provider: openai
  model: gpt-5-mini-2025-08-07
  apiKeys:
    openai: sk-old-key
cascade:
  maxTokens: 2500
`
	require.NoError(t, os.WriteFile(path, []byte(initial), 0644))

	require.NoError(t, SaveGlobalLLMConfig(llm.ProviderAnthropic, "", "new-anthropic-key"))

	v := readBack(t, path)
	assert.Equal(t, "anthropic", v.GetString("llm.provider"))
	assert.Equal(t, "new-anthropic-key", v.GetString("llm.apiKeys.anthropic"))
	assert.Equal(t, "sk-old-key", v.GetString("llm.apiKeys.openai"))
	assert.Equal(t, 2500, v.GetInt("cascade.maxTokens"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, configFileMode, info.Mode().Perm())
}
