package cli

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophrelease/internal/client/preview"
	"github.com/dmitrijs2005/gophrelease/internal/common"
	"github.com/dmitrijs2005/gophrelease/internal/devices"
)

func (a *App) printDevices(snap devices.Snapshot) {
	now := time.Now()
	if len(snap.Devices) == 0 {
		a.println("No devices.")
	}
	for _, d := range snap.Devices {
		state := "offline"
		if devices.IsOnline(d, now) {
			state = "online"
		}
		a.printf("%-7s %-20s %s %s  Android %s  app %s  last seen %s\n",
			state, d.DeviceID, d.Brand, d.Model, d.AndroidVersion, d.AppVersion,
			d.LastSeen.Local().Format(time.DateTime))
	}
	a.printf("Total: %d, online: %d\n", len(snap.Devices), snap.Online(now))
	if snap.Stale {
		if snap.FetchedAt.IsZero() {
			a.println("(device feed unavailable)")
		} else {
			a.printf("(cached list from %s, device feed unavailable)\n", snap.FetchedAt.Local().Format(time.DateTime))
		}
	}
}

// Devices prints the last known device list without polling.
func (a *App) Devices(_ context.Context, _ []string) error {
	a.printDevices(a.console.Devices())
	return nil
}

// Refresh runs the refresh cycle now, outside the schedule.
func (a *App) Refresh(ctx context.Context, _ []string) error {
	err := a.task.RunNow(ctx)
	if err != nil && !errors.Is(err, common.ErrSourceUnavailable) {
		return a.fail("Refresh failed", err)
	}
	a.printDevices(a.console.Devices())
	if err != nil {
		a.printf("Device feed: %s\n", err)
	}
	a.println("Refreshed.")
	return nil
}

// AutoRefresh starts or stops the periodic refresh and remembers the choice.
func (a *App) AutoRefresh(ctx context.Context, args []string) error {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		return a.fail("Error", usage("autorefresh on|off"))
	}
	on := args[0] == "on"

	if err := a.console.SetAutoRefresh(ctx, on); err != nil {
		return a.fail("Error", err)
	}
	if on {
		a.task.Start(ctx)
		a.printf("Auto-refresh enabled (every %s)\n", a.config.RefreshInterval)
	} else {
		a.task.Stop()
		a.println("Auto-refresh disabled")
	}
	return nil
}

// Status prints an overview of the console state.
func (a *App) Status(ctx context.Context, _ []string) error {
	m := a.console.Manifest()
	latest := m.LatestVersion
	if latest == "" {
		latest = "-"
	}
	a.printf("Versions:      %d (latest %s)\n", len(m.Updates), latest)
	a.printf("History:       %d snapshots\n", len(a.console.History()))
	if at, err := a.console.SavedAt(ctx); err == nil && !at.IsZero() {
		a.printf("Working copy:  saved %s\n", at.Local().Format(time.DateTime))
	}

	if d, ok := a.task.Until(); ok {
		a.printf("Auto-refresh:  on, next refresh in %s\n", d.Round(time.Second))
	} else {
		a.println("Auto-refresh:  off")
	}
	if err := a.task.LastError(); err != nil {
		a.printf("Last refresh:  %s\n", err)
	}

	snap := a.console.Devices()
	a.printf("Devices:       %d online of %d", snap.Online(time.Now()), len(snap.Devices))
	if snap.Stale {
		a.printf(" (stale)")
	}
	a.println()

	if s, err := a.console.Settings().Load(ctx); err == nil {
		a.printf("GitHub:        %s/%s:%s token %s\n", s.Owner, s.Repo, s.FilePath, s.MaskedToken())
	}
	if a.console.Publishing() {
		a.println("Sync:          in progress")
	}
	if a.preview != nil {
		a.printf("Preview:       http://%s%s\n", a.config.PreviewAddr, preview.ManifestPath)
	}
	return nil
}

// Simulate shows what a client running args[0] would be offered.
func (a *App) Simulate(_ context.Context, args []string) error {
	if len(args) != 1 {
		return a.fail("Error", usage("simulate <version>"))
	}
	res := a.console.Simulate(args[0])

	switch {
	case res.LatestVersion == "":
		a.println("The manifest has no versions.")
	case !res.UpdateAvailable:
		a.printf("Client at %s is up to date (latest %s).\n", res.Installed, res.LatestVersion)
	default:
		mode := "optional"
		if res.Forced {
			mode = "forced"
		} else if res.Automatic {
			mode = "automatic"
		}
		a.printf("Client at %s would be offered %s (%s, %s).\n", res.Installed, res.LatestVersion, mode, res.Update.FileSize)
	}
	return nil
}
