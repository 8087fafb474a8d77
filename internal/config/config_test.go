package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "vault.db", c.DatabasePath)
	assert.Equal(t, "export", c.ExportDir)
	assert.Equal(t, 10*time.Minute, c.LockTimeout)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "vault.db", cfg.DatabasePath)
	assert.Equal(t, "export", cfg.ExportDir)
}
