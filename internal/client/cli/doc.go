// Package cli provides the interactive release console.
//
// It wires configuration, local storage, the GitHub and S3 clients, the
// device feed and the preview server around a services.Console, and runs a
// REPL on top of it. A periodic task re-polls devices and re-serializes the
// manifest while auto-refresh is on.
//
// Commands:
//   - add / delete / list / json      manage versions
//   - import / export / demo          move manifests in and out
//   - history / restore               roll back local edits
//   - settings / token / test / sync  publish to GitHub
//   - devices / refresh / autorefresh / status / simulate
//
// The REPL is started via App.Run(ctx), which blocks until the user exits or
// ctx is cancelled.
package cli
