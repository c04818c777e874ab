package devices

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/gophrelease/internal/dbx"
)

const defaultPGLimit = 1000

// PostgresSource reads the check-in table written by the update endpoint.
// One row per check-in; deduplication happens in the Registry.
type PostgresSource struct {
	db    dbx.DBTX
	limit int
}

// OpenPostgres connects through the pgx stdlib driver.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return db, nil
}

func NewPostgresSource(db dbx.DBTX) *PostgresSource {
	return &PostgresSource{db: db, limit: defaultPGLimit}
}

func (s *PostgresSource) Fetch(ctx context.Context) ([]Device, error) {
	query := `
		SELECT device_id, brand, model, android_version, app_version, last_seen, registration_time
		FROM device_checkins
		ORDER BY last_seen DESC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, s.limit)
	if err != nil {
		return nil, unavailable("device database", err)
	}
	defer rows.Close()

	var out []Device
	for rows.Next() {
		var (
			d          Device
			registered sql.NullTime
		)
		if err := rows.Scan(&d.DeviceID, &d.Brand, &d.Model, &d.AndroidVersion, &d.AppVersion, &d.LastSeen, &registered); err != nil {
			return nil, unavailable("device database", err)
		}
		d.LastSeen = d.LastSeen.UTC()
		if registered.Valid {
			d.RegistrationTime = registered.Time.UTC()
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("device database", err)
	}
	return out, nil
}
