package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophrelease/internal/common"
	"github.com/dmitrijs2005/gophrelease/internal/manifest"
)

// fail prints a status line for err and returns it.
func (a *App) fail(prefix string, err error) error {
	a.printf("%s: %s\n", prefix, err)
	return err
}

func usage(text string) error {
	return common.NewValidationError("", "usage: "+text)
}

// Add asks for the fields of a version and upserts it. An existing version
// is offered as the defaults, and is fully replaced.
func (a *App) Add(ctx context.Context, args []string) error {
	var version string
	if len(args) > 0 {
		version = args[0]
	} else {
		v, err := GetSimpleText(a.reader, "Version number", a.out)
		if err != nil {
			return a.fail("Error", err)
		}
		version = v
	}
	version = strings.TrimSpace(version)
	if version == "" {
		a.println("Version number is required")
		return common.NewValidationError("version", "version number is required")
	}

	cur := a.console.Manifest().Updates[version]
	f, err := a.readFields(version, cur)
	if err != nil {
		return a.fail("Error", err)
	}

	m, err := a.console.Upsert(ctx, version, f)
	if err != nil {
		if errors.Is(err, common.ErrValidation) && f.Forced && f.Automatic {
			a.println("Update cannot be both forced and automatic. Please choose one option.")
			return err
		}
		return a.fail("Error", err)
	}
	a.printf("Version %s saved. Latest version: %s\n", version, m.LatestVersion)
	return nil
}

// clearChangelog, entered alone, empties the changelog of an edited version.
const clearChangelog = "-"

func (a *App) readFields(version string, cur manifest.UpdateRecord) (manifest.Fields, error) {
	var f manifest.Fields
	var err error

	defDesc := cur.Description
	if defDesc == "" {
		defDesc = "System update v" + version
	}
	if f.Description, err = GetTextDefault(a.reader, "Description", defDesc, a.out); err != nil {
		return f, err
	}
	defSize := cur.FileSize
	if defSize == "" {
		defSize = manifest.DefaultFileSize
	}
	if f.FileSize, err = GetTextDefault(a.reader, "File size", defSize, a.out); err != nil {
		return f, err
	}
	if f.ScriptURL, err = GetTextDefault(a.reader, "Script URL", cur.ScriptURL, a.out); err != nil {
		return f, err
	}
	if f.APKURL, err = GetTextDefault(a.reader, "APK URL", cur.APKURL, a.out); err != nil {
		return f, err
	}
	prompt := "Changelog, one item per line"
	if len(cur.Changelog) > 0 {
		for _, c := range cur.Changelog {
			a.printf("    - %s\n", c)
		}
		prompt += " (empty keeps the list above, '" + clearChangelog + "' clears it)"
	}
	if f.Changelog, err = GetMultiline(a.reader, prompt, a.out); err != nil {
		return f, err
	}
	switch {
	case f.Changelog == clearChangelog:
		f.Changelog = ""
	case f.Changelog == "" && len(cur.Changelog) > 0:
		f.Changelog = strings.Join(cur.Changelog, "\n")
	}

	if f.Forced, err = ConfirmDefault(a.reader, "Forced update?", cur.Forced, a.out); err != nil {
		return f, err
	}
	if f.Automatic, err = ConfirmDefault(a.reader, "Automatic update?", cur.Automatic && !f.Forced, a.out); err != nil {
		return f, err
	}
	return f, nil
}

// Delete removes a version after confirmation.
func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.fail("Error", usage("delete <version>"))
	}
	version := args[0]

	ok, err := Confirm(a.reader, fmt.Sprintf("Are you sure you want to delete version %s?", version), a.out)
	if err != nil {
		return a.fail("Error", err)
	}
	if !ok {
		a.println("Cancelled.")
		return nil
	}

	_, existed, err := a.console.Remove(ctx, version)
	if err != nil {
		return a.fail("Error", err)
	}
	if !existed {
		a.printf("Version %s not found.\n", version)
		return nil
	}
	a.printf("Version %s deleted.\n", version)
	return nil
}

func flags(r manifest.UpdateRecord) string {
	switch {
	case r.Forced:
		return "forced"
	case r.Automatic:
		return "automatic"
	}
	return "optional"
}

// List prints versions latest first.
func (a *App) List(_ context.Context, _ []string) error {
	m := a.console.Manifest()
	if len(m.Updates) == 0 {
		a.println("No updates configured yet. Use 'add' or 'demo'.")
		return nil
	}

	for _, v := range manifest.SortVersions(keys(m.Updates)) {
		r := m.Updates[v]
		marker := " "
		if v == m.LatestVersion {
			marker = "*"
		}
		a.printf("%s %-10s %-9s %-8s %s\n", marker, v, flags(r), r.FileSize, r.Description)
		if r.ScriptURL != "" {
			a.printf("    script: %s\n", r.ScriptURL)
		}
		if r.APKURL != "" {
			a.printf("    apk:    %s\n", r.APKURL)
		}
		for _, c := range r.Changelog {
			a.printf("    - %s\n", c)
		}
	}
	return nil
}

func keys(m map[string]manifest.UpdateRecord) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// JSON prints the manifest exactly as it would be published.
func (a *App) JSON(_ context.Context, _ []string) error {
	data, err := a.console.Serialize()
	if err != nil {
		return a.fail("Error", err)
	}
	a.println(string(data))
	return nil
}

// Demo replaces the manifest with the demo release set.
func (a *App) Demo(ctx context.Context, _ []string) error {
	if len(a.console.Manifest().Updates) > 0 {
		ok, err := Confirm(a.reader, "Replace the current manifest with demo data?", a.out)
		if err != nil {
			return a.fail("Error", err)
		}
		if !ok {
			a.println("Cancelled.")
			return nil
		}
	}
	m, err := a.console.LoadDemo(ctx)
	if err != nil {
		return a.fail("Error", err)
	}
	a.printf("Demo data loaded. Latest version: %s\n", m.LatestVersion)
	return nil
}
