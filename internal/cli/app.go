// Package cli implements the interactive vault console.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/NoTermTm/noterm-vault/internal/config"
	"github.com/NoTermTm/noterm-vault/internal/keyring"
	"github.com/NoTermTm/noterm-vault/internal/logging"
	"github.com/NoTermTm/noterm-vault/internal/storage"
	"github.com/NoTermTm/noterm-vault/internal/vault"
)

type App struct {
	config  *config.Config
	service *vault.Service
	log     logging.Logger
	reader  *bufio.Reader
	out     io.Writer

	mu        sync.Mutex
	idleTimer *time.Timer
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	db, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "err", err)
		return nil, err
	}

	svc := vault.NewService(db, keyring.New(), log)

	return &App{
		config:  c,
		service: svc,
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}

// armIdleLock (re)starts the idle-lock countdown. It runs after an unlock
// and after every command while unlocked, so the timer measures inactivity,
// not time since unlock. The timeout comes from the vault settings, falling
// back to the configured default; zero disables it. Auto-lock is a policy of
// this front end: expiry just calls Lock.
func (a *App) armIdleLock(ctx context.Context) {
	minutes, err := a.service.LockTimeoutMinutes(ctx)
	if err != nil {
		a.log.Warn(ctx, "cannot read lock timeout", "err", err)
		return
	}

	timeout := time.Duration(minutes) * time.Minute
	if minutes == 0 {
		timeout = a.config.LockTimeout
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.idleTimer != nil {
		a.idleTimer.Stop()
		a.idleTimer = nil
	}
	if timeout <= 0 {
		return
	}
	a.idleTimer = time.AfterFunc(timeout, func() {
		a.service.Lock(ctx)
		fmt.Fprintln(a.out, "\nVault locked after inactivity")
	})
}

func (a *App) stopIdleLock() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.idleTimer != nil {
		a.idleTimer.Stop()
		a.idleTimer = nil
	}
}
