/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeRoot(t *testing.T, args ...string) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	b := bytes.NewBufferString("")
	rootCmd.SetOut(b)
	rootCmd.SetErr(b)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	return b.String()
}

func TestRootCmd(t *testing.T) {
	output := executeRoot(t, "--help")

	assert.Contains(t, output, "Cascade - trace first, second and third-order effects")
	assert.Contains(t, output, "Usage:")
	assert.Contains(t, output, "Commands:")
	for _, name := range []string{"run", "dive", "sessions", "modes", "catalog", "config", "check", "serve", "mcp"} {
		assert.Contains(t, output, name)
	}
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "0.1.0", GetVersion())
}

func TestModesCmd(t *testing.T) {
	output := executeRoot(t, "modes")

	assert.Contains(t, output, "consolidate (default)")
	assert.Contains(t, output, "stress-test")
	assert.Contains(t, output, "incident-replay")
}

func TestCatalogCmd_FiltersByKind(t *testing.T) {
	t.Setenv("CASCADE_CATALOG_PATH", filepath.Join(t.TempDir(), "catalog.yaml"))
	output := executeRoot(t, "catalog", "pattern")

	assert.Contains(t, output, "event-sourcing")
	assert.Contains(t, output, "circuit-breaker")
	assert.NotContains(t, output, "feature-flags")
}

func TestCatalogCmd_UserOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
entries:
  - id: cell-architecture
    name: Cell architecture
    kind: pattern
    summary: isolate blast radius per cell
`), 0o644))
	t.Setenv("CASCADE_CATALOG_PATH", path)

	output := executeRoot(t, "catalog", "pattern")

	assert.Contains(t, output, "cell-architecture")
	assert.Contains(t, output, "event-sourcing")
}
