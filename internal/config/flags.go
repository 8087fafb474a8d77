package config

import (
	"flag"
	"os"
	"time"

	"github.com/NoTermTm/noterm-vault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   path of the vault database file (default from Config)
//	-e string   export directory (default from Config)
//	-t int      idle-lock timeout in minutes (default from Config)
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-e", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the vault database file")
	fs.StringVar(&cfg.ExportDir, "e", cfg.ExportDir, "export directory")
	lockTimeout := fs.Int("t", int(cfg.LockTimeout.Minutes()), "idle-lock timeout (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.LockTimeout = time.Duration(*lockTimeout) * time.Minute
}
