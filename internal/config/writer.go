package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/josephgoksu/cascade/internal/llm"
	"github.com/spf13/viper"
)

// configFileMode keeps stored API keys private to the user.
const configFileMode os.FileMode = 0600

// SaveGlobalLLMConfig writes the preferred provider, model and API key to
// ~/.cascade/config.yaml, creating it if needed. An empty model selects the
// provider default; an empty key leaves any stored key untouched. Other keys
// already in the file are preserved.
func SaveGlobalLLMConfig(provider llm.Provider, model, key string) error {
	if provider == "" {
		return errors.New("provider cannot be empty")
	}
	if _, err := llm.ValidateProvider(string(provider)); err != nil {
		return err
	}
	if key == "" && provider != llm.ProviderOllama {
		return errors.New("API key cannot be empty")
	}
	if model == "" {
		model = llm.DefaultModelForProvider(provider)
	}

	configDir, err := GetGlobalConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}
	configFile := filepath.Join(configDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")
	if _, err := os.Stat(configFile); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read %s: %w", configFile, err)
		}
	}

	v.Set("llm.provider", string(provider))
	v.Set("llm.model", model)
	if key != "" {
		v.Set("llm.apiKeys."+string(provider), key)
	}
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("write %s: %w", configFile, err)
	}
	return os.Chmod(configFile, configFileMode)
}
