package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/NoTermTm/noterm-vault/internal/common"
	"github.com/NoTermTm/noterm-vault/internal/filex"
	"github.com/NoTermTm/noterm-vault/internal/models"
)

func (a *App) setPassphrase(ctx context.Context) {
	pass, err := GetPassword("New master passphrase", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	defer common.WipeByteArray(pass)

	confirm, err := GetPassword("Confirm passphrase", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	defer common.WipeByteArray(confirm)

	if err := a.service.SetMasterPassphrase(ctx, pass, confirm); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "Master passphrase set, vault unlocked")
	a.armIdleLock(ctx)
}

func (a *App) changePassphrase(ctx context.Context) {
	current, err := GetPassword("Current passphrase", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	defer common.WipeByteArray(current)

	next, err := GetPassword("New passphrase", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	defer common.WipeByteArray(next)

	confirm, err := GetPassword("Confirm new passphrase", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	defer common.WipeByteArray(confirm)

	if err := a.service.ChangeMasterPassphrase(ctx, current, next, confirm); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "Master passphrase changed, stored secrets re-encrypted")
	a.armIdleLock(ctx)
}

func (a *App) removePassphrase(ctx context.Context) {
	pass, err := GetPassword("Current passphrase", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	defer common.WipeByteArray(pass)

	if err := a.service.RemoveMasterPassphrase(ctx, pass); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	a.stopIdleLock()
	fmt.Fprintln(a.out, "Master passphrase removed")
}

func (a *App) unlock(ctx context.Context) {
	pass, err := GetPassword("Master passphrase", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	defer common.WipeByteArray(pass)

	if err := a.service.Unlock(ctx, pass); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "Vault unlocked")
	a.armIdleLock(ctx)
}

func (a *App) addSSHConnection(ctx context.Context) {
	rec := &models.ConnectionRecord{Protocol: models.ProtocolSSH, Port: 22}

	var err error
	if rec.Name, err = GetSimpleText(a.reader, "Name", a.out); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	if rec.Host, err = GetSimpleText(a.reader, "Host", a.out); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	port, err := GetSimpleText(a.reader, "Port (default 22)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	if port != "" {
		if rec.Port, err = strconv.Atoi(port); err != nil {
			fmt.Fprintln(a.out, "Port must be a number")
			return
		}
	}
	if rec.Username, err = GetSimpleText(a.reader, "Username", a.out); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	if rec.ProfileID, err = GetSimpleText(a.reader, "Auth profile id (empty for own credentials)", a.out); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}

	if rec.ProfileID == "" {
		pw, err := GetPassword("Password (empty to keep none)", a.out)
		if err != nil {
			fmt.Fprintf(a.out, "Error: %v\n", err)
			return
		}
		rec.Password = models.PlainSecret(string(pw))
		common.WipeByteArray(pw)

		kp, err := GetPassword("Key passphrase (empty to keep none)", a.out)
		if err != nil {
			fmt.Fprintf(a.out, "Error: %v\n", err)
			return
		}
		rec.KeyPassphrase = models.PlainSecret(string(kp))
		common.WipeByteArray(kp)
	}

	if err := a.service.SaveConnection(ctx, rec); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Saved connection %s\n", rec.ID)
}

func (a *App) addRDPConnection(ctx context.Context) {
	rec := &models.ConnectionRecord{Protocol: models.ProtocolRDP, Port: 3389}

	var err error
	if rec.Name, err = GetSimpleText(a.reader, "Name", a.out); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	if rec.Host, err = GetSimpleText(a.reader, "Host", a.out); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	if rec.Username, err = GetSimpleText(a.reader, "Username", a.out); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	if rec.Domain, err = GetSimpleText(a.reader, "Domain (optional)", a.out); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}

	pw, err := GetPassword("Password (empty to keep none)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	rec.RDPPassword = models.PlainSecret(string(pw))
	common.WipeByteArray(pw)

	gw, err := GetPassword("Gateway password (empty to keep none)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	rec.GatewayPassword = models.PlainSecret(string(gw))
	common.WipeByteArray(gw)

	if err := a.service.SaveConnection(ctx, rec); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Saved connection %s\n", rec.ID)
}

func (a *App) listConnections(ctx context.Context) {
	conns, err := a.service.ListConnections(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	if len(conns) == 0 {
		fmt.Fprintln(a.out, "No connections")
		return
	}
	for _, c := range conns {
		fmt.Fprintf(a.out, "%s  %-6s %-20s %s:%d\n", c.ID, c.Protocol, c.Name, c.Host, c.Port)
	}
}

func (a *App) showConnection(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: show <id>")
		return
	}
	c, err := a.service.GetConnection(ctx, args[0])
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(a.out, "Name:     %s\n", c.Name)
	fmt.Fprintf(a.out, "Protocol: %s\n", c.Protocol)
	fmt.Fprintf(a.out, "Host:     %s:%d\n", c.Host, c.Port)
	if c.Username != "" {
		fmt.Fprintf(a.out, "Username: %s\n", c.Username)
	}
	if c.ProfileID != "" {
		fmt.Fprintf(a.out, "Profile:  %s\n", c.ProfileID)
	}
	if c.Domain != "" {
		fmt.Fprintf(a.out, "Domain:   %s\n", c.Domain)
	}
	for _, f := range c.SecretFields() {
		fmt.Fprintf(a.out, "%s: %s\n", f.Name, describeSecret(f.Value))
	}
}

// describeSecret never prints secret material, only its state.
func describeSecret(v *models.SecretValue) string {
	switch {
	case v.IsEncrypted():
		return "(locked)"
	case v.IsEmpty():
		return "(not set)"
	default:
		return "(set)"
	}
}

func (a *App) deleteConnection(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: delete <id>")
		return
	}
	if err := a.service.DeleteConnection(ctx, args[0]); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "Deleted")
}

func (a *App) addProfile(ctx context.Context) {
	p := &models.AuthProfile{}

	var err error
	if p.Name, err = GetSimpleText(a.reader, "Profile name", a.out); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	if p.Username, err = GetSimpleText(a.reader, "Username", a.out); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	method, err := GetSimpleText(a.reader, "Auth method (password/private-key)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}

	switch models.AuthMethodType(method) {
	case models.AuthMethodPrivateKey:
		p.AuthMethod.Type = models.AuthMethodPrivateKey
		key, err := GetSimpleText(a.reader, "Private key path or PEM", a.out)
		if err != nil {
			fmt.Fprintf(a.out, "Error: %v\n", err)
			return
		}
		p.AuthMethod.PrivateKey = models.PlainSecret(key)
		kp, err := GetPassword("Key passphrase (empty for none)", a.out)
		if err != nil {
			fmt.Fprintf(a.out, "Error: %v\n", err)
			return
		}
		p.AuthMethod.Passphrase = models.PlainSecret(string(kp))
		common.WipeByteArray(kp)
	case models.AuthMethodPassword, "":
		p.AuthMethod.Type = models.AuthMethodPassword
		pw, err := GetPassword("Password", a.out)
		if err != nil {
			fmt.Fprintf(a.out, "Error: %v\n", err)
			return
		}
		p.AuthMethod.Password = models.PlainSecret(string(pw))
		common.WipeByteArray(pw)
	default:
		fmt.Fprintln(a.out, "Unknown auth method:", method)
		return
	}

	if err := a.service.SaveProfile(ctx, p); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Saved profile %s\n", p.ID)
}

func (a *App) listProfiles(ctx context.Context) {
	profs, err := a.service.ListProfiles(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	if len(profs) == 0 {
		fmt.Fprintln(a.out, "No profiles")
		return
	}
	for _, p := range profs {
		fmt.Fprintf(a.out, "%s  %-20s %-12s %s\n", p.ID, p.Name, p.AuthMethod.Type, p.Username)
	}
}

func (a *App) deleteProfile(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: rm-profile <id>")
		return
	}
	if err := a.service.DeleteProfile(ctx, args[0]); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "Deleted, referencing connections detached")
}

func (a *App) setPersist(ctx context.Context, args []string) {
	if len(args) == 0 || (args[0] != "on" && args[0] != "off") {
		fmt.Fprintln(a.out, "Usage: persist <on|off>")
		return
	}
	if err := a.service.SetPersistSecrets(ctx, args[0] == "on"); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "Secret persistence:", args[0])
}

func (a *App) setTimeout(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: timeout <minutes>")
		return
	}
	minutes, err := strconv.Atoi(args[0])
	if err != nil || minutes < 0 {
		fmt.Fprintln(a.out, "Minutes must be a non-negative number")
		return
	}
	if err := a.service.SetLockTimeout(ctx, minutes); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	if !a.service.IsLocked() {
		a.armIdleLock(ctx)
	}
	fmt.Fprintln(a.out, "Lock timeout set")
}

func (a *App) export(ctx context.Context) {
	bundle, err := a.service.Export(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}

	dir, err := filex.EnsureDir(a.config.ExportDir)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}

	name := fmt.Sprintf("vault-export-%s.json", time.Now().Format("20060102-150405"))
	path := filepath.Join(dir, name)
	if err := filex.WriteFileAtomic(path, data, 0o600); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}

	fmt.Fprintln(a.out, "Exported to", path)
}
