// Package history keeps a short, newest-first list of manifest snapshots so a
// release manager can roll back local edits.
package history

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/dmitrijs2005/gophrelease/internal/common"
	"github.com/dmitrijs2005/gophrelease/internal/manifest"
)

// MaxEntries bounds the log; the oldest snapshot is evicted first.
const MaxEntries = 10

type Entry struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Data      manifest.Manifest `json:"data"`
}

// Repository persists the full list on every change.
type Repository interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, entries []Entry) error
}

type Option func(*Log)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// WithIDSource overrides ULID generation.
func WithIDSource(newID func(time.Time) string) Option {
	return func(l *Log) { l.newID = newID }
}

type Log struct {
	mu      sync.Mutex
	repo    Repository
	entries []Entry
	now     func() time.Time
	newID   func(time.Time) string
}

func NewLog(repo Repository, opts ...Option) *Log {
	l := &Log{repo: repo, now: time.Now}
	l.newID = ulidSource(rand.Reader)
	for _, o := range opts {
		o(l)
	}
	return l
}

// ulidSource returns a generator whose ids sort in creation order even within
// a single millisecond. Callers hold Log.mu.
func ulidSource(r io.Reader) func(time.Time) string {
	entropy := ulid.Monotonic(r, 0)
	return func(t time.Time) string {
		return ulid.MustNew(ulid.Timestamp(t), entropy).String()
	}
}

// Load replaces the in-memory list with the persisted one.
func (l *Log) Load(ctx context.Context) error {
	entries, err := l.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}

	l.mu.Lock()
	l.entries = entries
	l.mu.Unlock()
	return nil
}

// Record prepends a snapshot of m. The in-memory list only changes once the
// repository accepted the new list.
func (l *Log) Record(ctx context.Context, m manifest.Manifest) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UTC().Truncate(time.Millisecond)
	e := Entry{ID: l.newID(now), Timestamp: now, Data: m.Clone()}

	next := make([]Entry, 0, MaxEntries)
	next = append(next, e)
	next = append(next, l.entries...)
	if len(next) > MaxEntries {
		next = next[:MaxEntries]
	}

	if err := l.repo.Save(ctx, next); err != nil {
		return Entry{}, fmt.Errorf("save history: %w", err)
	}
	l.entries = next
	return e, nil
}

// List returns entries newest first.
func (l *Log) List() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		e.Data = e.Data.Clone()
		out[i] = e
	}
	return out
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Restore returns the snapshot stored under id. The log itself is not
// modified; the caller decides whether to apply it.
func (l *Log) Restore(id string) (manifest.Manifest, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range l.entries {
		if e.ID == id {
			return e.Data.Clone(), nil
		}
	}
	return manifest.Manifest{}, &common.NotFoundError{Kind: "history entry", ID: id}
}
