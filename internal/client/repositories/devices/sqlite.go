// Package devices caches the last device list read from the feed so the
// console can show something when the feed is down.
package devices

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophrelease/internal/dbx"
	dev "github.com/dmitrijs2005/gophrelease/internal/devices"
)

type SQLiteCache struct {
	db *sql.DB
}

func NewSQLiteCache(db *sql.DB) *SQLiteCache {
	return &SQLiteCache{db: db}
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// Load returns the cached devices newest first and when they were fetched.
func (c *SQLiteCache) Load(ctx context.Context) ([]dev.Device, time.Time, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT device_id, brand, model, android_version, app_version, last_seen, registration_time, fetched_at
		FROM device_cache
		ORDER BY last_seen DESC, device_id ASC`)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to load device cache: %w", err)
	}
	defer rows.Close()

	var (
		out     []dev.Device
		fetched int64
	)
	for rows.Next() {
		var d dev.Device
		var seen, registered, at int64
		if err := rows.Scan(&d.DeviceID, &d.Brand, &d.Model, &d.AndroidVersion, &d.AppVersion, &seen, &registered, &at); err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to scan device row: %w", err)
		}
		d.LastSeen = fromMillis(seen)
		d.RegistrationTime = fromMillis(registered)
		if at > fetched {
			fetched = at
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to iterate device rows: %w", err)
	}
	return out, fromMillis(fetched), nil
}

// Store replaces the cache with ds.
func (c *SQLiteCache) Store(ctx context.Context, ds []dev.Device, fetchedAt time.Time) error {
	return dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM device_cache`); err != nil {
			return fmt.Errorf("failed to clear device cache: %w", err)
		}
		for _, d := range ds {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO device_cache
					(device_id, brand, model, android_version, app_version, last_seen, registration_time, fetched_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(device_id) DO UPDATE SET last_seen = excluded.last_seen`,
				d.DeviceID, d.Brand, d.Model, d.AndroidVersion, d.AppVersion,
				toMillis(d.LastSeen), toMillis(d.RegistrationTime), toMillis(fetchedAt))
			if err != nil {
				return fmt.Errorf("failed to cache device %s: %w", d.DeviceID, err)
			}
		}
		return nil
	})
}
