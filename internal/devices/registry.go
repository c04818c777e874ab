package devices

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophrelease/internal/logging"
)

// Cache persists the last list that was read successfully.
type Cache interface {
	Load(ctx context.Context) ([]Device, time.Time, error)
	Store(ctx context.Context, ds []Device, fetchedAt time.Time) error
}

// Snapshot is what the registry currently knows.
type Snapshot struct {
	Devices   []Device
	FetchedAt time.Time
	// Stale is set when the list did not come from the latest refresh.
	Stale bool
}

// Online counts devices seen within OnlineWindow of now.
func (s Snapshot) Online(now time.Time) int {
	return CountOnline(s.Devices, now)
}

type Registry struct {
	source Source
	cache  Cache
	logger logging.Logger
	now    func() time.Time

	mu   sync.RWMutex
	last Snapshot
}

type Option func(*Registry)

func WithCache(c Cache) Option { return func(r *Registry) { r.cache = c } }

func WithLogger(l logging.Logger) Option { return func(r *Registry) { r.logger = l } }

func WithClock(now func() time.Time) Option { return func(r *Registry) { r.now = now } }

func NewRegistry(source Source, opts ...Option) *Registry {
	r := &Registry{source: source, logger: logging.Discard(), now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Warm seeds the registry from the cache. The result is marked stale until
// the first successful refresh.
func (r *Registry) Warm(ctx context.Context) error {
	if r.cache == nil {
		return nil
	}
	ds, at, err := r.cache.Load(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.last = Snapshot{Devices: ds, FetchedAt: at, Stale: true}
	r.mu.Unlock()
	return nil
}

// Refresh polls the source. On failure it returns the last known good list
// marked stale, together with the source error; it never clears the list.
func (r *Registry) Refresh(ctx context.Context) (Snapshot, error) {
	raw, err := r.source.Fetch(ctx)
	if err != nil {
		err = unavailable("device feed", err)
		r.logger.Warn(ctx, "device refresh failed, serving cached list", "error", err)

		r.mu.Lock()
		r.last.Stale = true
		snap := r.copyLocked()
		r.mu.Unlock()
		return snap, err
	}

	snap := Snapshot{Devices: Dedupe(raw), FetchedAt: r.now().UTC()}

	if r.cache != nil {
		if cerr := r.cache.Store(ctx, snap.Devices, snap.FetchedAt); cerr != nil {
			r.logger.Warn(ctx, "device cache write failed", "error", cerr)
		}
	}

	r.mu.Lock()
	r.last = snap
	out := r.copyLocked()
	r.mu.Unlock()

	r.logger.Debug(ctx, "devices refreshed", "count", len(snap.Devices))
	return out, nil
}

// Snapshot returns the current view without touching the source.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.copyLocked()
}

func (r *Registry) copyLocked() Snapshot {
	s := r.last
	s.Devices = append([]Device(nil), r.last.Devices...)
	return s
}
