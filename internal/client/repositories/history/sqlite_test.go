package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hist "github.com/dmitrijs2005/gophrelease/internal/history"
	"github.com/dmitrijs2005/gophrelease/internal/manifest"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE history (
  id        TEXT PRIMARY KEY,
  position  INTEGER NOT NULL,
  timestamp TEXT NOT NULL,
  data      TEXT NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func entry(i int) hist.Entry {
	v := fmt.Sprintf("1.%d", i)
	return hist.Entry{
		ID:        fmt.Sprintf("01JAAAAAAAAAAAAAAAAAAAAA%02d", i),
		Timestamp: time.Date(2026, 10, 17, 9, 0, i, 5_000_000, time.UTC),
		Data: manifest.Manifest{
			LatestVersion:          v,
			Updates:                map[string]manifest.UpdateRecord{v: {Description: "d", FileSize: "1.0MB", Changelog: []string{"a"}}},
			RequiredAndroidVersion: "21",
		},
	}
}

func TestSaveLoad_PreservesOrderAndContent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	in := []hist.Entry{entry(3), entry(2), entry(1)}
	require.NoError(t, r.Save(ctx, in))

	out, err := r.Load(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, r.Save(ctx, []hist.Entry{entry(4)}))
	out, err = r.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "1.4", out[0].Data.LatestVersion)
}

func TestLoad_Empty(t *testing.T) {
	out, err := NewSQLiteRepository(setupDB(t)).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSave_RollsBackOnInsertError(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	require.NoError(t, r.Save(ctx, []hist.Entry{entry(1)}))

	// Duplicate ids violate the primary key halfway through.
	err := r.Save(ctx, []hist.Entry{entry(2), entry(2)})
	require.Error(t, err)

	out, err := r.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, entry(1).ID, out[0].ID)
}

func TestLoad_CorruptRow(t *testing.T) {
	db := setupDB(t)
	_, err := db.Exec(`INSERT INTO history VALUES ('x', 0, 'yesterday', '{}')`)
	require.NoError(t, err)

	_, err = NewSQLiteRepository(db).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad timestamp")
}

func TestSave_CommitError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM history").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO history").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(errors.New("database is locked"))

	err = NewSQLiteRepository(db).Save(context.Background(), []hist.Entry{entry(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	require.NoError(t, mock.ExpectationsWereMet())
}
