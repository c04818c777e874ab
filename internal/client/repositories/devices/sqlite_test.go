package devices

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dev "github.com/dmitrijs2005/gophrelease/internal/devices"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE device_cache (
  device_id         TEXT PRIMARY KEY,
  brand             TEXT NOT NULL DEFAULT '',
  model             TEXT NOT NULL DEFAULT '',
  android_version   TEXT NOT NULL DEFAULT '',
  app_version       TEXT NOT NULL DEFAULT '',
  last_seen         INTEGER NOT NULL,
  registration_time INTEGER NOT NULL DEFAULT 0,
  fetched_at        INTEGER NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestStoreLoad(t *testing.T) {
	c := NewSQLiteCache(setupDB(t))
	ctx := context.Background()
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	in := []dev.Device{
		{DeviceID: "old", Brand: "Nokia", LastSeen: now.Add(-time.Hour)},
		{DeviceID: "new", Brand: "Pixel", Model: "8", AndroidVersion: "14", AppVersion: "1.2",
			LastSeen: now.Add(-time.Minute), RegistrationTime: now.Add(-48 * time.Hour)},
	}
	require.NoError(t, c.Store(ctx, in, now))

	out, at, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, now, at)
	require.Len(t, out, 2)
	assert.Equal(t, in[1], out[0])
	assert.Equal(t, "old", out[1].DeviceID)
	assert.True(t, out[1].RegistrationTime.IsZero())

	require.NoError(t, c.Store(ctx, nil, now.Add(time.Minute)))
	out, at, err = c.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.True(t, at.IsZero())
}

func TestStore_ErrorRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM device_cache").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO device_cache").WillReturnError(errors.New("readonly database"))
	mock.ExpectRollback()

	err = NewSQLiteCache(db).Store(context.Background(), []dev.Device{{DeviceID: "a"}}, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to cache device a")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT device_id").WillReturnError(errors.New("no such table"))

	_, _, err = NewSQLiteCache(db).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load device cache")
}

func TestCache_SatisfiesRegistryCache(t *testing.T) {
	var _ dev.Cache = NewSQLiteCache(setupDB(t))
}
