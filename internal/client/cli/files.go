package cli

import (
	"context"
)

// Export writes the manifest to args[0] or the configured export path.
func (a *App) Export(_ context.Context, args []string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	}
	abs, err := a.console.Export(path)
	if err != nil {
		return a.fail("Export failed", err)
	}
	a.printf("Manifest written to %s\n", abs)
	return nil
}

// Import merges the versions of a manifest file. Existing versions are kept.
func (a *App) Import(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.fail("Error", usage("import <path>"))
	}
	added, err := a.console.Import(ctx, args[0])
	if err != nil {
		return a.fail("Error loading configuration", err)
	}
	a.printf("Configuration imported successfully! Added %d new updates.\n", added)
	return nil
}
