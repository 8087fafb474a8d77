package cli

import (
	"context"
	"fmt"
	"strings"
)

func (a *App) getStatus(ctx context.Context) string {
	has, err := a.service.HasMasterPassphrase(ctx)
	if err != nil {
		return "(?)"
	}
	if !has {
		return "(no passphrase)"
	}
	if a.service.IsLocked() {
		return "(locked)"
	}
	return "(unlocked)"
}

func (a *App) Root(ctx context.Context) {

	fmt.Fprintln(a.out, "Welcome to the NoTerm vault console (type 'help' for commands)")

	for {
		fmt.Fprintf(a.out, "vault %s> ", a.getStatus(ctx))
		line, err := a.reader.ReadString('\n')
		if err != nil {
			break
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			fmt.Fprintln(a.out, "Vault:       setpass, passwd, rmpass, unlock, lock")
			fmt.Fprintln(a.out, "Connections: add-ssh, add-rdp, list, show <id>, delete <id>")
			fmt.Fprintln(a.out, "Profiles:    add-profile, profiles, rm-profile <id>")
			fmt.Fprintln(a.out, "Settings:    persist <on|off>, timeout <minutes>")
			fmt.Fprintln(a.out, "Other:       export, exit")
		case "setpass":
			a.setPassphrase(ctx)
		case "passwd":
			a.changePassphrase(ctx)
		case "rmpass":
			a.removePassphrase(ctx)
		case "unlock":
			a.unlock(ctx)
		case "lock":
			a.service.Lock(ctx)
			a.stopIdleLock()
		case "add-ssh":
			a.addSSHConnection(ctx)
		case "add-rdp":
			a.addRDPConnection(ctx)
		case "list":
			a.listConnections(ctx)
		case "show":
			a.showConnection(ctx, args)
		case "delete":
			a.deleteConnection(ctx, args)
		case "add-profile":
			a.addProfile(ctx)
		case "profiles":
			a.listProfiles(ctx)
		case "rm-profile":
			a.deleteProfile(ctx, args)
		case "persist":
			a.setPersist(ctx, args)
		case "timeout":
			a.setTimeout(ctx, args)
		case "export":
			a.export(ctx)
		case "exit", "quit":
			a.service.Lock(ctx)
			a.stopIdleLock()
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}

		// every command counts as activity
		if !a.service.IsLocked() {
			a.armIdleLock(ctx)
		}
	}
}
