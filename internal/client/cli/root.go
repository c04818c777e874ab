package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophrelease/internal/buildinfo"
)

// getStatus renders the prompt status: version count, latest version and
// the countdown to the next refresh.
func (a *App) getStatus() string {
	m := a.console.Manifest()

	parts := []string{fmt.Sprintf("%d versions", len(m.Updates))}
	if m.LatestVersion != "" {
		parts = append(parts, "latest "+m.LatestVersion)
	}
	if a.task != nil {
		if d, ok := a.task.Until(); ok {
			parts = append(parts, "refresh in "+d.Round(time.Second).String())
		}
	}
	if a.console.Publishing() {
		parts = append(parts, "syncing")
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}

// Root prints the banner and runs the REPL until the user leaves.
func (a *App) Root(ctx context.Context) {
	a.printf("Welcome to the update manifest console %s (type 'help' for commands)\n", buildinfo.Version())
	if kind, weak := a.console.Settings().TokenStorage(); weak {
		a.printf("Note: the GitHub token is stored unencrypted (%s storage); consider -k keyring or -k sealed.\n", kind)
	}
	runREPL(ctx, a, a.getStatus, a.reader)
}
