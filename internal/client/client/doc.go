// Package client contains the console's remote and local storage building
// blocks.
//
// # Overview
//
//  1. GitHubClient publishes the manifest through the repository contents
//     API. Each publish reads the file's current sha and sends it back with
//     the write, so a concurrent writer turns into a conflict instead of a
//     lost update. Retrying on conflict is off unless WithConflictRetries is
//     used.
//  2. S3Mirror optionally keeps a copy in an S3-compatible bucket, using the
//     object ETag with If-Match / If-None-Match the same way.
//  3. InitDatabase and RunMigrations open the local SQLite file and apply
//     the embedded goose migrations.
//
// # Error Handling
//
// Remote failures are *SyncFailure values. They match common.ErrSyncFailure,
// and conflicts additionally match common.ErrConflict. Missing settings are
// reported as *common.ConfigurationError before any request is made.
package client
