package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_OverlaysValues(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{
		"database_path":        "/tmp/other.db",
		"export_dir":           "/tmp/exports",
		"lock_timeout_minutes": 5,
	})
	os.Args = []string{"vault", "-c", path}

	var cfg Config
	cfg.LoadDefaults()
	parseJson(&cfg)

	assert.Equal(t, "/tmp/other.db", cfg.DatabasePath)
	assert.Equal(t, "/tmp/exports", cfg.ExportDir)
	assert.Equal(t, 5*time.Minute, cfg.LockTimeout)
}

func Test_parseJson_NoFileKeepsDefaults(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"vault"}

	var cfg Config
	cfg.LoadDefaults()
	parseJson(&cfg)

	assert.Equal(t, "vault.db", cfg.DatabasePath)
}

func Test_parseJson_PartialFileKeepsOtherDefaults(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{"database_path": "/tmp/only.db"})
	os.Args = []string{"vault", "-config", path}

	var cfg Config
	cfg.LoadDefaults()
	parseJson(&cfg)

	assert.Equal(t, "/tmp/only.db", cfg.DatabasePath)
	assert.Equal(t, "export", cfg.ExportDir)
	assert.Equal(t, 10*time.Minute, cfg.LockTimeout)
}

func Test_parseJson_PanicsOnMissingFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"vault", "-c", filepath.Join(t.TempDir(), "missing.json")}

	var cfg Config
	cfg.LoadDefaults()
	require.Panics(t, func() { parseJson(&cfg) })
}
