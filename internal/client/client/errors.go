package client

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophrelease/internal/common"
)

// SyncFailure is returned for every remote failure during publish, mirror or
// connection test. Reason carries the remote's own message when it sent one.
type SyncFailure struct {
	Op         string
	StatusCode int
	Reason     string
	Err        error
}

func (e *SyncFailure) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Op, e.Reason, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *SyncFailure) Unwrap() error { return e.Err }

func (e *SyncFailure) Is(target error) bool {
	switch target {
	case common.ErrSyncFailure:
		return true
	case common.ErrConflict:
		return e.Conflict()
	}
	return false
}

// Conflict reports a rejected precondition: the remote file changed after
// its sha was read.
func (e *SyncFailure) Conflict() bool {
	switch e.StatusCode {
	case http.StatusConflict, http.StatusPreconditionFailed:
		return true
	case http.StatusUnprocessableEntity:
		// Returned when the file appeared between our read and write.
		return strings.Contains(e.Reason, "sha")
	}
	return false
}

func transportFailure(op string, err error) *SyncFailure {
	return &SyncFailure{Op: op, Reason: err.Error(), Err: err}
}
