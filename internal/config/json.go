package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/NoTermTm/noterm-vault/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Values are
// copied into the runtime Config afterwards.
type JsonConfig struct {
	DatabasePath       string `json:"database_path"`
	ExportDir          string `json:"export_dir"`
	LockTimeoutMinutes int    `json:"lock_timeout_minutes"`
}

// parseJson overlays Config with values loaded from a JSON file named by the
// -c/-config flags. When no file is named, nothing happens. Read or
// unmarshal errors panic (caller may recover).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.ExportDir != "" {
		cfg.ExportDir = jc.ExportDir
	}
	if jc.LockTimeoutMinutes > 0 {
		cfg.LockTimeout = time.Duration(jc.LockTimeoutMinutes) * time.Minute
	}
}
