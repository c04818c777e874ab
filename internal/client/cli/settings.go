package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/gophrelease/internal/client/models"
	"github.com/dmitrijs2005/gophrelease/internal/common"
)

func (a *App) showSettings(s models.GitHubSettings) {
	kind, weak := a.console.Settings().TokenStorage()
	storage := kind
	if weak {
		storage += " (unencrypted)"
	}
	a.printf("GitHub token:    %s [%s]\n", s.MaskedToken(), storage)
	a.printf("Repository:      %s/%s\n", s.Owner, s.Repo)
	a.printf("File path:       %s\n", s.FilePath)
}

// Settings shows the GitHub settings and, unless args is "show", lets the
// user edit them. Empty answers keep the current value.
func (a *App) Settings(ctx context.Context, args []string) error {
	svc := a.console.Settings()
	cur, err := svc.Load(ctx)
	if err != nil {
		return a.fail("Error", err)
	}
	a.showSettings(cur)
	if len(args) > 0 && args[0] == "show" {
		return nil
	}

	next := cur
	if next.Owner, err = GetTextDefault(a.reader, "Repository owner", cur.Owner, a.out); err != nil {
		return a.fail("Error", err)
	}
	if next.Repo, err = GetTextDefault(a.reader, "Repository name", cur.Repo, a.out); err != nil {
		return a.fail("Error", err)
	}
	if next.FilePath, err = GetTextDefault(a.reader, "File path", cur.FilePath, a.out); err != nil {
		return a.fail("Error", err)
	}

	tok, err := GetPassword(a.out, "GitHub token (Enter keeps the current one): ")
	if err != nil {
		return a.fail("Error", err)
	}
	defer common.WipeByteArray(tok)
	next.Token = strings.TrimSpace(string(tok))

	if err := svc.Save(ctx, next); err != nil {
		return a.fail("Error", err)
	}
	a.println("Settings saved successfully!")
	return nil
}

// Token replaces ("set") or removes ("clear") the stored token.
func (a *App) Token(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.fail("Error", usage("token set|clear"))
	}
	svc := a.console.Settings()

	switch args[0] {
	case "set":
		tok, err := GetPassword(a.out, "GitHub token: ")
		if err != nil {
			return a.fail("Error", err)
		}
		defer common.WipeByteArray(tok)
		t := strings.TrimSpace(string(tok))
		if t == "" {
			a.println("Please enter a GitHub token first")
			return common.NewValidationError("token", "empty")
		}

		s, err := svc.Load(ctx)
		if err != nil {
			return a.fail("Error", err)
		}
		s.Token = t
		if err := svc.Save(ctx, s); err != nil {
			return a.fail("Error", err)
		}
		a.println("Token saved.")
	case "clear":
		if err := svc.ClearToken(ctx); err != nil {
			return a.fail("Error", err)
		}
		a.println("Token removed.")
	default:
		return a.fail("Error", usage("token set|clear"))
	}
	return nil
}

// Test checks the token against the configured repository.
func (a *App) Test(ctx context.Context, _ []string) error {
	a.println("Testing connection...")
	name, err := a.console.TestConnection(ctx)
	if err != nil {
		var cfgErr *common.ConfigurationError
		if errors.As(err, &cfgErr) {
			if len(cfgErr.Missing) > 0 && cfgErr.Missing[0] == "token" {
				a.println("Please enter a GitHub token first")
			} else {
				a.println("Please enter repository owner and name")
			}
			return err
		}
		return a.fail("Connection failed", err)
	}
	a.printf("Connection successful! Found repository: %s ✓\n", name)
	return nil
}
