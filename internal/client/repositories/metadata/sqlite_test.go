package metadata

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key        TEXT PRIMARY KEY,
  value      BLOB NOT NULL,
  updated_at INTEGER NOT NULL DEFAULT 0
);`)
	require.NoError(t, err)
	return db
}

func TestSetAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyAutoRefresh, []byte("true")))

	v, err := r.Get(ctx, KeyAutoRefresh)
	require.NoError(t, err)
	assert.Equal(t, []byte("true"), v)

	require.NoError(t, r.Set(ctx, KeyAutoRefresh, []byte("false")))
	v, err = r.Get(ctx, KeyAutoRefresh)
	require.NoError(t, err)
	assert.Equal(t, []byte("false"), v)
}

func TestGet_AbsentReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDeleteAndModTime(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return at }
	ctx := context.Background()

	mt, err := r.ModTime(ctx, KeyWorkingManifest)
	require.NoError(t, err)
	assert.True(t, mt.IsZero())

	require.NoError(t, r.Set(ctx, KeyToken, []byte("t")))
	require.NoError(t, r.Set(ctx, KeyWorkingManifest, []byte("{}")))
	mt, err = r.ModTime(ctx, KeyWorkingManifest)
	require.NoError(t, err)
	assert.Equal(t, at, mt)

	at = at.Add(time.Minute)
	require.NoError(t, r.Set(ctx, KeyWorkingManifest, []byte(`{"updates":{}}`)))
	mt, err = r.ModTime(ctx, KeyWorkingManifest)
	require.NoError(t, err)
	assert.Equal(t, at, mt)

	require.NoError(t, r.Delete(ctx, KeyToken))
	require.NoError(t, r.Delete(ctx, KeyToken))
	v, err := r.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Nil(t, v)
	mt, err = r.ModTime(ctx, KeyToken)
	require.NoError(t, err)
	assert.True(t, mt.IsZero())
}

func TestJSONHelpers(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	type settings struct {
		Owner string `json:"owner"`
	}

	var got settings
	found, err := GetJSON(ctx, r, KeyGitHubSettings, &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, r, KeyGitHubSettings, settings{Owner: "alltechdev"}))
	found, err = GetJSON(ctx, r, KeyGitHubSettings, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "alltechdev", got.Owner)

	require.NoError(t, r.Set(ctx, KeyGitHubSettings, []byte("{broken")))
	_, err = GetJSON(ctx, r, KeyGitHubSettings, &got)
	require.Error(t, err)
}

func TestErrorsAreWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("disk I/O error")
	mock.ExpectQuery("SELECT value FROM metadata").WillReturnError(boom)
	mock.ExpectExec("INSERT INTO metadata").WillReturnError(boom)
	mock.ExpectExec("DELETE FROM metadata").WillReturnError(boom)
	mock.ExpectQuery("SELECT updated_at FROM metadata").WillReturnError(boom)

	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err = r.Get(ctx, "k")
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to get metadata[k]")

	err = r.Set(ctx, "k", []byte("v"))
	assert.Contains(t, err.Error(), "failed to set metadata[k]")

	err = r.Delete(ctx, "k")
	assert.Contains(t, err.Error(), "failed to delete metadata[k]")

	_, err = r.ModTime(ctx, "k")
	assert.Contains(t, err.Error(), "failed to stat metadata[k]")

	require.NoError(t, mock.ExpectationsWereMet())
}
