package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/gophrelease/internal/client/migrations"
	"github.com/dmitrijs2005/gophrelease/internal/client/repositories/devices"
	"github.com/dmitrijs2005/gophrelease/internal/client/repositories/history"
	"github.com/dmitrijs2005/gophrelease/internal/client/repositories/metadata"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	DB          *sql.DB
	Metadata    metadata.Repository
	History     *history.SQLiteRepository
	DeviceCache *devices.SQLiteCache
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the SQLite file at dsn and brings
// its schema up to date.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases from splitting across the pool.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dsn, err)
	}

	return &Repositories{
		DB:          db,
		Metadata:    metadata.NewSQLiteRepository(db),
		History:     history.NewSQLiteRepository(db),
		DeviceCache: devices.NewSQLiteCache(db),
	}, nil
}
