package config

import (
	"github.com/josephgoksu/cascade/internal/llm"
	"github.com/spf13/viper"
)

// CascadeConfig holds generation limits for the cascade engine.
type CascadeConfig struct {
	MaxTokens         int     `mapstructure:"max_tokens"`
	DeepDiveMaxTokens int     `mapstructure:"deep_dive_max_tokens"`
	Temperature       float32 `mapstructure:"temperature"`
}

// DefaultCascadeConfig returns the default generation limits.
func DefaultCascadeConfig() CascadeConfig {
	return CascadeConfig{
		MaxTokens:         llm.DefaultMaxTokens,
		DeepDiveMaxTokens: llm.DefaultDeepDiveMaxTokens,
		Temperature:       llm.DefaultTemperature,
	}
}

// LoadCascadeConfig loads generation limits from Viper with defaults.
// Non-positive token limits fall back to the defaults.
func LoadCascadeConfig() CascadeConfig {
	defaults := DefaultCascadeConfig()

	cfg := CascadeConfig{
		MaxTokens:         getIntWithDefault("cascade.maxTokens", defaults.MaxTokens),
		DeepDiveMaxTokens: getIntWithDefault("cascade.deepDiveMaxTokens", defaults.DeepDiveMaxTokens),
		Temperature:       float32(getFloat64WithDefault("llm.temperature", float64(defaults.Temperature))),
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaults.MaxTokens
	}
	if cfg.DeepDiveMaxTokens <= 0 {
		cfg.DeepDiveMaxTokens = defaults.DeepDiveMaxTokens
	}
	if cfg.Temperature < 0 {
		cfg.Temperature = defaults.Temperature
	}
	return cfg
}

// Helper functions for Viper with defaults

func getFloat64WithDefault(key string, defaultVal float64) float64 {
	if viper.IsSet(key) {
		return viper.GetFloat64(key)
	}
	return defaultVal
}

func getIntWithDefault(key string, defaultVal int) int {
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	return defaultVal
}
