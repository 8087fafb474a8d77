package cli

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/NoTermTm/noterm-vault/internal/config"
	"github.com/NoTermTm/noterm-vault/internal/keyring"
	"github.com/NoTermTm/noterm-vault/internal/logging"
	"github.com/NoTermTm/noterm-vault/internal/vault"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func newTestApp(t *testing.T, input string) (*App, *bytes.Buffer) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
CREATE TABLE connections (
  id TEXT PRIMARY KEY,
  position INTEGER NOT NULL,
  body TEXT NOT NULL
);
CREATE TABLE profiles (
  id TEXT PRIMARY KEY,
  position INTEGER NOT NULL,
  body TEXT NOT NULL
);
`)
	require.NoError(t, err)

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc := vault.NewService(db, keyring.New(), log)

	var out bytes.Buffer
	cfg := &config.Config{DatabasePath: ":memory:", ExportDir: t.TempDir(), LockTimeout: time.Minute}
	return &App{
		config:  cfg,
		service: svc,
		log:     log,
		reader:  bufio.NewReader(strings.NewReader(input)),
		out:     &out,
	}, &out
}

func stubPassword(t *testing.T, values ...string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	i := 0
	readPassword = func(int) ([]byte, error) {
		if i >= len(values) {
			t.Fatal("unexpected password prompt")
		}
		v := values[i]
		i++
		return []byte(v), nil
	}
}

func TestRoot_HelpAndExit(t *testing.T) {
	app, out := newTestApp(t, "help\nexit\n")
	app.Root(context.Background())

	s := out.String()
	require.Contains(t, s, "setpass")
	require.Contains(t, s, "add-ssh")
	require.Contains(t, s, "Bye!")
}

func TestRoot_UnknownCommand(t *testing.T) {
	app, out := newTestApp(t, "frobnicate\nexit\n")
	app.Root(context.Background())
	require.Contains(t, out.String(), "Unknown command: frobnicate")
}

func TestSetPassphrase_ThenStatusUnlocked(t *testing.T) {
	app, out := newTestApp(t, "setpass\nexit\n")
	stubPassword(t, "correct-horse-1", "correct-horse-1")

	app.Root(context.Background())

	s := out.String()
	require.Contains(t, s, "Master passphrase set")
	require.Contains(t, s, "(unlocked)")
}

func TestSetPassphrase_Mismatch(t *testing.T) {
	app, out := newTestApp(t, "setpass\nexit\n")
	stubPassword(t, "correct-horse-1", "different-horse")

	app.Root(context.Background())
	require.Contains(t, out.String(), "Error:")
	require.True(t, app.service.IsLocked())
}

func TestLockAndUnlock(t *testing.T) {
	app, out := newTestApp(t, "setpass\nlock\nunlock\nexit\n")
	stubPassword(t, "correct-horse-1", "correct-horse-1", "correct-horse-1")

	app.Root(context.Background())

	s := out.String()
	require.Contains(t, s, "(locked)")
	require.Contains(t, s, "Vault unlocked")
}

func TestAddAndListSSHConnection(t *testing.T) {
	input := strings.Join([]string{
		"persist on",
		"add-ssh",
		"backend box", // name
		"host1.local", // host
		"2222",        // port
		"deploy",      // username
		"",            // profile id
		"list",
		"exit",
	}, "\n") + "\n"

	app, out := newTestApp(t, input)
	stubPassword(t, "conn-secret", "")

	app.Root(context.Background())

	s := out.String()
	require.Contains(t, s, "Saved connection")
	require.Contains(t, s, "backend box")
	require.Contains(t, s, "host1.local:2222")
	require.NotContains(t, s, "conn-secret")
}

func TestShowConnection_NeverPrintsSecrets(t *testing.T) {
	input := strings.Join([]string{
		"persist on",
		"add-rdp",
		"office pc",   // name
		"win.example", // host
		"alice",       // username
		"CORP",        // domain
		"list",
		"exit",
	}, "\n") + "\n"

	app, out := newTestApp(t, input)
	stubPassword(t, "rdp-secret", "gw-secret")
	app.Root(context.Background())

	// pick the id out of the list line
	var id string
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.Contains(line, "office pc") && strings.Contains(line, "rdp") {
			id = strings.Fields(line)[0]
		}
	}
	require.NotEmpty(t, id)

	app2, out2 := newTestApp(t, "show "+id+"\nexit\n")
	app2.service = app.service
	app2.Root(context.Background())

	s := out2.String()
	require.Contains(t, s, "office pc")
	require.Contains(t, s, "rdpPassword: (set)")
	require.NotContains(t, s, "rdp-secret")
	require.NotContains(t, s, "gw-secret")
}

func TestAddProfileAndDelete(t *testing.T) {
	input := strings.Join([]string{
		"persist on",
		"add-profile",
		"admin creds", // name
		"root",        // username
		"password",    // method
		"profiles",
		"exit",
	}, "\n") + "\n"

	app, out := newTestApp(t, input)
	stubPassword(t, "prof-secret")
	app.Root(context.Background())

	s := out.String()
	require.Contains(t, s, "Saved profile")
	require.Contains(t, s, "admin creds")
	require.NotContains(t, s, "prof-secret")
}

func TestExportCommand_WritesScrubbedFile(t *testing.T) {
	input := strings.Join([]string{
		"persist on",
		"add-ssh",
		"prod",
		"prod.example",
		"", // default port
		"ops",
		"", // profile id
		"export",
		"exit",
	}, "\n") + "\n"

	app, out := newTestApp(t, input)
	stubPassword(t, "top-secret-pw", "")
	app.Root(context.Background())

	s := out.String()
	require.Contains(t, s, "Exported to")

	var path string
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, "Exported to ") {
			path = strings.TrimPrefix(line, "Exported to ")
		}
	}
	require.NotEmpty(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "prod.example")
	require.NotContains(t, string(data), "top-secret-pw")
	require.NotContains(t, string(data), "__enc")
}

func TestTimeoutCommand(t *testing.T) {
	app, out := newTestApp(t, "timeout 5\ntimeout nope\nexit\n")
	app.Root(context.Background())

	s := out.String()
	require.Contains(t, s, "Lock timeout set")
	require.Contains(t, s, "Minutes must be a non-negative number")

	n, err := app.service.LockTimeoutMinutes(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, n)
}

func TestIdleLock_FiresAfterTimeout(t *testing.T) {
	app, _ := newTestApp(t, "")
	app.config.LockTimeout = 20 * time.Millisecond
	ctx := context.Background()

	require.NoError(t, app.service.SetMasterPassphrase(ctx,
		[]byte("correct-horse-1"), []byte("correct-horse-1")))
	require.False(t, app.service.IsLocked())

	app.armIdleLock(ctx)

	require.Eventually(t, app.service.IsLocked, time.Second, 10*time.Millisecond,
		"idle timer never locked the vault")
}

func TestRoot_RearmsIdleLockOnActivity(t *testing.T) {
	// input ends without "exit", so the loop leaves on EOF and the timer
	// armed by the last command stays observable
	app, _ := newTestApp(t, "help\nlist\n")
	ctx := context.Background()

	require.NoError(t, app.service.SetMasterPassphrase(ctx,
		[]byte("correct-horse-1"), []byte("correct-horse-1")))

	app.Root(ctx)

	app.mu.Lock()
	defer app.mu.Unlock()
	require.NotNil(t, app.idleTimer, "command activity did not arm the idle timer")
}

func TestRoot_NoIdleTimerWhileLocked(t *testing.T) {
	app, _ := newTestApp(t, "help\n")
	app.Root(context.Background())

	app.mu.Lock()
	defer app.mu.Unlock()
	require.Nil(t, app.idleTimer)
}
