package cli

import (
	"context"
	"strconv"
	"time"
)

// History lists snapshots newest first. The index shown can be passed to
// restore instead of the id.
func (a *App) History(_ context.Context, _ []string) error {
	entries := a.console.History()
	if len(entries) == 0 {
		a.println("No history yet.")
		return nil
	}
	for i, e := range entries {
		latest := e.Data.LatestVersion
		if latest == "" {
			latest = "-"
		}
		a.printf("%2d. %s  %s  latest %s (%d versions)\n",
			i+1, e.ID, e.Timestamp.Format(time.DateTime), latest, len(e.Data.Updates))
	}
	return nil
}

// Restore replaces the working manifest with a snapshot after confirmation.
func (a *App) Restore(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.fail("Error", usage("restore <id|#>"))
	}
	id := args[0]
	if n, err := strconv.Atoi(id); err == nil {
		entries := a.console.History()
		if n >= 1 && n <= len(entries) {
			id = entries[n-1].ID
		}
	}

	ok, err := Confirm(a.reader, "Restore this version? Current changes will be lost.", a.out)
	if err != nil {
		return a.fail("Error", err)
	}
	if !ok {
		a.println("Cancelled.")
		return nil
	}

	m, err := a.console.Restore(ctx, id)
	if err != nil {
		return a.fail("Restore failed", err)
	}
	a.printf("Snapshot restored. Latest version: %s\n", m.LatestVersion)
	return nil
}
