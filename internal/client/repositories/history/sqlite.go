// Package history persists the manifest rollback list in SQLite. The whole
// list is rewritten on every save so row positions always match list order.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophrelease/internal/dbx"
	hist "github.com/dmitrijs2005/gophrelease/internal/history"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Load(ctx context.Context) ([]hist.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, timestamp, data FROM history ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	var out []hist.Entry
	for rows.Next() {
		var (
			e    hist.Entry
			ts   string
			data string
		)
		if err := rows.Scan(&e.ID, &ts, &data); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("history %s: bad timestamp: %w", e.ID, err)
		}
		if err := json.Unmarshal([]byte(data), &e.Data); err != nil {
			return nil, fmt.Errorf("history %s: bad snapshot: %w", e.ID, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history rows: %w", err)
	}
	return out, nil
}

// Save replaces the stored list with entries in one transaction.
func (r *SQLiteRepository) Save(ctx context.Context, entries []hist.Entry) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM history`); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		for i, e := range entries {
			data, err := json.Marshal(e.Data)
			if err != nil {
				return fmt.Errorf("history %s: encode snapshot: %w", e.ID, err)
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO history (id, position, timestamp, data) VALUES (?, ?, ?, ?)`,
				e.ID, i, e.Timestamp.UTC().Format(time.RFC3339Nano), string(data))
			if err != nil {
				return fmt.Errorf("failed to insert history %s: %w", e.ID, err)
			}
		}
		return nil
	})
}
