// Package config holds runtime settings for the vault CLI.
package config

import "time"

// Config holds runtime settings for the vault CLI.
//
// Fields:
//   - DatabasePath: path of the local vault database file.
//   - ExportDir: directory that receives export bundles.
//   - LockTimeout: default idle-lock timeout used when the vault has none
//     configured yet.
type Config struct {
	DatabasePath string
	ExportDir    string
	LockTimeout  time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "vault.db"
	c.ExportDir = "export"
	c.LockTimeout = 10 * time.Minute
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
