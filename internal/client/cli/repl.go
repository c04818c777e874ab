package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to. The real App
// type satisfies this interface; tests can provide a lightweight stub. Every
// handler prints its own status line.
type execIface interface {
	Add(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	JSON(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
	Import(ctx context.Context, args []string) error
	Demo(ctx context.Context, args []string) error
	History(ctx context.Context, args []string) error
	Restore(ctx context.Context, args []string) error
	Settings(ctx context.Context, args []string) error
	Token(ctx context.Context, args []string) error
	Test(ctx context.Context, args []string) error
	Sync(ctx context.Context, args []string) error
	Devices(ctx context.Context, args []string) error
	Refresh(ctx context.Context, args []string) error
	AutoRefresh(ctx context.Context, args []string) error
	Status(ctx context.Context, args []string) error
	Simulate(ctx context.Context, args []string) error
}

const helpText = `Available commands:
  add [version]          add or replace a version
  delete <version>       delete a version
  (l)ist                 list versions, latest first
  json                   print the manifest
  export [path]          write the manifest to a file
  import <path>          merge versions from a manifest file
  demo                   load the demo release set
  history                list saved snapshots
  restore <id|#>         restore a snapshot
  settings [show]        show or edit GitHub settings
  token set|clear        replace or remove the GitHub token
  test                   test the GitHub connection
  sync                   publish the manifest to GitHub
  devices                list devices that checked in
  refresh                re-poll devices now
  autorefresh on|off     toggle periodic refresh
  status                 show console status
  simulate <version>     what would a client at <version> be offered
  exit | quit            leave the program`

// runREPL starts a read–eval–print loop for the release console.
//
// It reads a line from reader, parses the first token as the command and
// passes the rest as arguments. Unknown commands are reported back to the
// user. The loop exits on EOF, when ctx is cancelled or when the user types
// "exit" or "quit".
//
// Errors returned by command handlers are ignored here; handlers report
// their own status. This keeps the loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("gr %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				return
			}
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help", "?":
			printlnFn(helpText)
		case "add":
			_ = a.Add(ctx, args)
		case "delete", "rm":
			_ = a.Delete(ctx, args)
		case "l", "list":
			_ = a.List(ctx, args)
		case "json":
			_ = a.JSON(ctx, args)
		case "export":
			_ = a.Export(ctx, args)
		case "import":
			_ = a.Import(ctx, args)
		case "demo":
			_ = a.Demo(ctx, args)
		case "history":
			_ = a.History(ctx, args)
		case "restore":
			_ = a.Restore(ctx, args)
		case "settings":
			_ = a.Settings(ctx, args)
		case "token":
			_ = a.Token(ctx, args)
		case "test":
			_ = a.Test(ctx, args)
		case "sync", "publish":
			_ = a.Sync(ctx, args)
		case "devices":
			_ = a.Devices(ctx, args)
		case "refresh":
			_ = a.Refresh(ctx, args)
		case "autorefresh":
			_ = a.AutoRefresh(ctx, args)
		case "status":
			_ = a.Status(ctx, args)
		case "simulate":
			_ = a.Simulate(ctx, args)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
