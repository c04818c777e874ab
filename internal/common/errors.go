// Package common defines shared constants and sentinel errors used across
// the console layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Bad user input; the operation is aborted and state is unchanged.
	ErrValidation = errors.New("validation error")

	// Missing or incomplete sync settings; no network call is attempted.
	ErrConfiguration = errors.New("configuration error")

	// Network, auth or precondition failure while talking to a remote store.
	ErrSyncFailure = errors.New("sync failure")
	ErrConflict    = errors.New("remote content changed")

	// A publish is already running.
	ErrPublishInFlight = errors.New("publish already in progress")

	// Device feed could not be read.
	ErrSourceUnavailable = errors.New("source unavailable")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")
)
