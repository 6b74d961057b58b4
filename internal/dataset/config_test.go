package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	// Defaults kick in: every entity has a preview and a full path.
	for _, entity := range Entities {
		require.NotEmpty(t, cfg.PreviewURL(entity), "preview URL for %s", entity)
		require.NotEmpty(t, cfg.FullURL(entity), "full URL for %s", entity)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".vajra.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml: ["), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err, "invalid YAML degrades to defaults, not an error")
	require.NotEmpty(t, cfg.FullURL("orders"))
}

func TestLoadConfigValid(t *testing.T) {
	content := `
base_url: https://exports.example.com/retail
preview:
  orders: orders_small.json
full:
  orders: orders.json
  customers: https://cdn.example.com/customers.json
`

	path := filepath.Join(t.TempDir(), ".vajra.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, "https://exports.example.com/retail/orders_small.json", cfg.PreviewURL("orders"))
	require.Equal(t, "https://exports.example.com/retail/orders.json", cfg.FullURL("orders"))

	// Absolute URLs pass through untouched.
	require.Equal(t, "https://cdn.example.com/customers.json", cfg.FullURL("customers"))

	// Entities missing from an explicit map resolve to nothing.
	require.Empty(t, cfg.FullURL("products"))
}
