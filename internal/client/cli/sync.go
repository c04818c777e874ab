package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophrelease/internal/client/client"
	"github.com/dmitrijs2005/gophrelease/internal/common"
)

// Sync publishes the manifest to GitHub and, when configured, mirrors it.
func (a *App) Sync(ctx context.Context, _ []string) error {
	a.println("Syncing to GitHub...")

	report, err := a.console.Publish(ctx)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrConfiguration):
		a.println("Please configure GitHub settings first")
		return err
	case errors.Is(err, common.ErrPublishInFlight):
		a.println("A sync is already in progress.")
		return err
	default:
		var sf *client.SyncFailure
		if errors.As(err, &sf) {
			a.printf("Sync failed: %s\n", sf.Reason)
			if sf.Conflict() {
				a.println("The remote file changed while publishing; run sync again.")
			}
			return err
		}
		return a.fail("Sync failed", err)
	}

	a.println("Successfully synced to GitHub! Your Android app will now see the updates.")
	if report.Result.CommitSHA != "" {
		a.printf("Commit %s\n", report.Result.CommitSHA)
	}
	switch {
	case report.Mirror != nil:
		a.printf("Mirrored to S3 (ETag %s)\n", report.Mirror.ETag)
	case report.MirrorErr != nil:
		a.printf("Mirror failed: %s\n", report.MirrorErr)
	}
	return nil
}
