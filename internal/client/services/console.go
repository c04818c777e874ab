// Package services contains the application services behind the console
// commands: the Console context object that owns the manifest, its history
// and the remote clients, plus settings and token storage.
package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/gophrelease/internal/client/client"
	"github.com/dmitrijs2005/gophrelease/internal/client/models"
	"github.com/dmitrijs2005/gophrelease/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophrelease/internal/common"
	"github.com/dmitrijs2005/gophrelease/internal/devices"
	"github.com/dmitrijs2005/gophrelease/internal/filex"
	"github.com/dmitrijs2005/gophrelease/internal/history"
	"github.com/dmitrijs2005/gophrelease/internal/logging"
	"github.com/dmitrijs2005/gophrelease/internal/manifest"
)

// DefaultExportPath is where Export writes when no path is given.
const DefaultExportPath = "system_update.json"

// Publisher writes the manifest to the remote file.
type Publisher interface {
	Publish(ctx context.Context, s models.GitHubSettings, content []byte) (client.PublishResult, error)
	TestConnection(ctx context.Context, s models.GitHubSettings) (string, error)
}

// Mirror keeps a secondary copy of a published manifest.
type Mirror interface {
	Mirror(ctx context.Context, content []byte) (client.MirrorResult, error)
}

// DeviceView is the device registry as seen by the console.
type DeviceView interface {
	Warm(ctx context.Context) error
	Refresh(ctx context.Context) (devices.Snapshot, error)
	Snapshot() devices.Snapshot
}

type ConsoleDeps struct {
	Metadata   metadata.Repository
	History    history.Repository
	Settings   SettingsService
	Publisher  Publisher
	Mirror     Mirror
	Devices    DeviceView
	Logger     logging.Logger
	ExportPath string
}

// PublishReport is the outcome of a publish and of the optional mirror.
type PublishReport struct {
	OpID      string
	Result    client.PublishResult
	Mirror    *client.MirrorResult
	MirrorErr error
}

// RefreshReport is the outcome of one refresh cycle.
type RefreshReport struct {
	Devices  devices.Snapshot
	Manifest []byte
}

// Console is the single owner of the working manifest and its history.
// Lifecycle: NewConsole, Load, operate, Close. All methods are safe for
// concurrent use; mutations are serialized and every mutation is persisted
// before it becomes visible.
type Console struct {
	mu       sync.RWMutex
	store    *manifest.Store
	history  *history.Log
	meta     metadata.Repository
	settings SettingsService
	pub      Publisher
	mirror   Mirror
	devices  DeviceView
	logger   logging.Logger

	exportPath string
	publishing atomic.Bool
	closed     atomic.Bool
}

func NewConsole(d ConsoleDeps, opts ...history.Option) *Console {
	logger := d.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	dv := d.Devices
	if dv == nil {
		dv = devices.NewRegistry(devices.DisabledSource{})
	}
	exportPath := d.ExportPath
	if exportPath == "" {
		exportPath = DefaultExportPath
	}
	return &Console{
		store:      manifest.NewStore(),
		history:    history.NewLog(d.History, opts...),
		meta:       d.Metadata,
		settings:   d.Settings,
		pub:        d.Publisher,
		mirror:     d.Mirror,
		devices:    dv,
		logger:     logger,
		exportPath: exportPath,
	}
}

// Load restores the working manifest, the history list and the device cache
// from local storage.
func (c *Console) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := c.meta.Get(ctx, metadata.KeyWorkingManifest)
	if err != nil {
		return fmt.Errorf("load working manifest: %w", err)
	}
	if raw != nil {
		m, err := manifest.Parse(raw)
		if err != nil {
			return fmt.Errorf("load working manifest: %w", err)
		}
		c.store = manifest.NewStoreFrom(m)
	}

	if err := c.history.Load(ctx); err != nil {
		return err
	}

	if err := c.devices.Warm(ctx); err != nil {
		c.logger.Warn(ctx, "device cache unavailable", "error", err)
	}

	c.logger.Info(ctx, "console loaded", "versions", c.store.Len(), "history", c.history.Len())
	return nil
}

// Close releases the console. The working copy is already persisted by
// every mutation, so there is nothing to flush.
func (c *Console) Close(ctx context.Context) error {
	if c.closed.Swap(true) {
		return nil
	}
	c.logger.Debug(ctx, "console closed")
	return nil
}

// commit persists next as the working copy, records it in history and only
// then swaps it in. Callers hold c.mu.
func (c *Console) commit(ctx context.Context, next *manifest.Store) (manifest.Manifest, error) {
	m := next.Manifest()
	data, err := manifest.Marshal(m)
	if err != nil {
		return manifest.Manifest{}, err
	}

	previous, err := c.meta.Get(ctx, metadata.KeyWorkingManifest)
	if err != nil {
		return manifest.Manifest{}, fmt.Errorf("read working manifest: %w", err)
	}
	if err := c.meta.Set(ctx, metadata.KeyWorkingManifest, data); err != nil {
		return manifest.Manifest{}, fmt.Errorf("save working manifest: %w", err)
	}

	if _, err := c.history.Record(ctx, m); err != nil {
		c.rollbackWorkingCopy(ctx, previous)
		return manifest.Manifest{}, err
	}

	c.store = next
	return m, nil
}

func (c *Console) rollbackWorkingCopy(ctx context.Context, previous []byte) {
	var err error
	if previous == nil {
		err = c.meta.Delete(ctx, metadata.KeyWorkingManifest)
	} else {
		err = c.meta.Set(ctx, metadata.KeyWorkingManifest, previous)
	}
	if err != nil {
		c.logger.Error(ctx, "could not restore previous working manifest", "error", err)
	}
}

func (c *Console) draft() *manifest.Store {
	return manifest.NewStoreFrom(c.store.Manifest())
}

// Upsert adds or replaces version.
func (c *Console) Upsert(ctx context.Context, version string, f manifest.Fields) (manifest.Manifest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.draft()
	if _, err := next.Upsert(version, f); err != nil {
		return manifest.Manifest{}, err
	}
	return c.commit(ctx, next)
}

// Remove deletes version. existed is false when there was nothing to remove;
// no history entry is written in that case.
func (c *Console) Remove(ctx context.Context, version string) (m manifest.Manifest, existed bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.store.Get(version); !ok {
		return c.store.Manifest(), false, nil
	}

	next := c.draft()
	next.Remove(version)
	m, err = c.commit(ctx, next)
	return m, err == nil, err
}

func (c *Console) Manifest() manifest.Manifest {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.Manifest()
}

// Versions returns labels latest first.
func (c *Console) Versions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.Versions()
}

func (c *Console) Serialize() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.Serialize()
}

// ImportData merges the updates of a manifest document without overwriting
// existing versions and returns how many were added.
func (c *Console) ImportData(ctx context.Context, data []byte) (int, error) {
	incoming, err := manifest.Parse(data)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.draft()
	added, err := next.ImportMerge(incoming.Updates)
	if err != nil {
		return 0, err
	}
	if added == 0 {
		return 0, nil
	}
	if _, err := c.commit(ctx, next); err != nil {
		return 0, err
	}
	return added, nil
}

// Import reads path and merges it; see ImportData.
func (c *Console) Import(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	return c.ImportData(ctx, data)
}

// Export writes the serialized manifest to path, or to the configured export
// path when path is empty, and returns the absolute file name.
func (c *Console) Export(path string) (string, error) {
	if path == "" {
		path = c.exportPath
	}
	data, err := c.Serialize()
	if err != nil {
		return "", err
	}

	dir, err := filex.EnsureDir(filepath.Dir(path))
	if err != nil {
		return "", err
	}
	abs := filepath.Join(dir, filepath.Base(path))
	if err := filex.WriteFileAtomic(abs, data, 0o644); err != nil {
		return "", err
	}
	return abs, nil
}

// LoadDemo replaces the working manifest with the demo release set.
func (c *Console) LoadDemo(ctx context.Context) (manifest.Manifest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := manifest.NewStore()
	if _, err := next.Replace(manifest.Manifest{Updates: manifest.Demo()}); err != nil {
		return manifest.Manifest{}, err
	}
	return c.commit(ctx, next)
}

func (c *Console) History() []history.Entry {
	return c.history.List()
}

// Restore replaces the working manifest with the snapshot stored under id.
// Confirmation is the caller's job.
func (c *Console) Restore(ctx context.Context, id string) (manifest.Manifest, error) {
	snap, err := c.history.Restore(id)
	if err != nil {
		return manifest.Manifest{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := manifest.NewStore()
	if _, err := next.Replace(snap); err != nil {
		return manifest.Manifest{}, err
	}
	return c.commit(ctx, next)
}

// Publish pushes the current manifest. Only one publish runs at a time; a
// second call while one is in flight fails with common.ErrPublishInFlight.
func (c *Console) Publish(ctx context.Context) (PublishReport, error) {
	if !c.publishing.CompareAndSwap(false, true) {
		return PublishReport{}, common.ErrPublishInFlight
	}
	defer c.publishing.Store(false)

	opID := uuid.NewString()
	log := c.logger.With("op_id", opID)
	report := PublishReport{OpID: opID}

	s, err := c.settings.Load(ctx)
	if err != nil {
		return report, err
	}
	if err := s.Validate(); err != nil {
		log.Warn(ctx, "publish skipped", "error", err)
		return report, err
	}

	content, err := c.Serialize()
	if err != nil {
		return report, err
	}

	log.Info(ctx, "publishing manifest", "github", s, "bytes", len(content))
	res, err := c.pub.Publish(ctx, s, content)
	report.Result = res
	if err != nil {
		log.Error(ctx, "publish failed", "error", err, "conflict", errors.Is(err, common.ErrConflict))
		return report, err
	}
	log.Info(ctx, "manifest published", "commit", res.CommitSHA, "created", res.Created, "attempts", res.Attempts)

	if c.mirror != nil {
		mr, merr := c.mirror.Mirror(ctx, content)
		if merr != nil {
			log.Warn(ctx, "mirror failed", "error", merr)
			report.MirrorErr = merr
		} else {
			report.Mirror = &mr
		}
	}
	return report, nil
}

// Publishing reports whether a publish is in flight.
func (c *Console) Publishing() bool { return c.publishing.Load() }

// TestConnection checks the credential against the repository.
func (c *Console) TestConnection(ctx context.Context) (string, error) {
	s, err := c.settings.Load(ctx)
	if err != nil {
		return "", err
	}
	return c.pub.TestConnection(ctx, s)
}

// Refresh re-polls devices and re-serializes the manifest. A device source
// failure is returned alongside the stale device list; the refresh itself
// still completes.
func (c *Console) Refresh(ctx context.Context) (RefreshReport, error) {
	snap, derr := c.devices.Refresh(ctx)

	data, err := c.Serialize()
	if err != nil {
		return RefreshReport{Devices: snap}, err
	}
	return RefreshReport{Devices: snap, Manifest: data}, derr
}

func (c *Console) Devices() devices.Snapshot {
	return c.devices.Snapshot()
}

// Simulate reports what a client running installed would be offered.
func (c *Console) Simulate(installed string) manifest.CheckResult {
	return c.Manifest().Check(installed)
}

func (c *Console) Settings() SettingsService { return c.settings }

// SavedAt reports when the working copy was last persisted; zero when it
// never was.
func (c *Console) SavedAt(ctx context.Context) (time.Time, error) {
	return c.meta.ModTime(ctx, metadata.KeyWorkingManifest)
}

// AutoRefresh returns the saved auto-refresh preference; found is false when
// the user never toggled it.
func (c *Console) AutoRefresh(ctx context.Context) (on, found bool, err error) {
	found, err = metadata.GetJSON(ctx, c.meta, metadata.KeyAutoRefresh, &on)
	return on, found, err
}

func (c *Console) SetAutoRefresh(ctx context.Context, on bool) error {
	return metadata.SetJSON(ctx, c.meta, metadata.KeyAutoRefresh, on)
}
