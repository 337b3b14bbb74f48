package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// GetGlobalConfigDir returns the path to the global configuration directory (~/.cascade).
// It's a variable to allow overriding in tests.
var GetGlobalConfigDir = func() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cascade"), nil
}

// GetStoreDir returns the directory holding sessions.db.
// Resolution order (first match wins):
// 1. Explicit config via "store.path" (Viper/env/flag)
// 2. XDG_DATA_HOME/cascade (if XDG_DATA_HOME is set)
// 3. Global fallback: ~/.cascade
func GetStoreDir() string {
	if path := viper.GetString("store.path"); path != "" {
		return path
	}

	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "cascade")
	}

	dir, err := GetGlobalConfigDir()
	if err != nil {
		return "."
	}
	return dir
}

// GetPoliciesDir returns the directory scanned for user .rego policies:
// "policy.dir" when set, else ~/.cascade/policies.
func GetPoliciesDir() string {
	if dir := viper.GetString("policy.dir"); dir != "" {
		return dir
	}
	dir, err := GetGlobalConfigDir()
	if err != nil {
		return "policies"
	}
	return filepath.Join(dir, "policies")
}

// GetCatalogPath returns the user catalog overlay file: "catalog.path" when
// set, else ~/.cascade/catalog.yaml. The file is optional.
func GetCatalogPath() string {
	if path := viper.GetString("catalog.path"); path != "" {
		return path
	}
	dir, err := GetGlobalConfigDir()
	if err != nil {
		return "catalog.yaml"
	}
	return filepath.Join(dir, "catalog.yaml")
}
