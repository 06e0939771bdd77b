package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mmcloughlin/geohash"

	"propscout-engine/internal/domain"
)

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS properties (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  dedup_key TEXT NOT NULL,
  query_location TEXT NOT NULL,
  source TEXT NOT NULL,
  property_type TEXT NOT NULL DEFAULT '',
  geohash TEXT NOT NULL DEFAULT '',
  record TEXT NOT NULL,
  fetched_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS idx_properties_dedup
ON properties(dedup_key);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_properties_location
ON properties(query_location);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_properties_geohash
ON properties(geohash);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}

// InsertPropertyIgnore stores one record, keyed by the aggregation dedup key.
// A record already present is left untouched; added reports whether the row
// was newly inserted.
func InsertPropertyIgnore(db *sql.DB, location string, p domain.PropertyData) (added bool, err error) {
	rec, err := json.Marshal(p)
	if err != nil {
		return false, fmt.Errorf("encode property: %w", err)
	}

	var gh string
	if p.Coordinates != nil {
		gh = geohash.EncodeWithPrecision(p.Coordinates.Lat, p.Coordinates.Lng, 8)
	}

	_, err = db.Exec(`
INSERT OR IGNORE INTO properties (dedup_key, query_location, source, property_type, geohash, record, fetched_at)
VALUES (?, ?, ?, ?, ?, ?, ?);`,
		p.DedupKey(), location, p.Source, p.PropertyType, gh, string(rec),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("insert property: %w", err)
	}

	// INSERT OR IGNORE does not report rows affected reliably across
	// drivers; changes() does.
	var changes int
	if e := db.QueryRow(`SELECT changes();`).Scan(&changes); e == nil {
		return changes > 0, nil
	}
	return true, nil
}

// Properties wraps a DB as the orchestrator's persistence sink.
type Properties struct {
	DB *DB
}

func (s Properties) SaveProperties(ctx context.Context, location string, props []domain.PropertyData) error {
	for _, p := range props {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := InsertPropertyIgnore(s.DB.Pool, location, p); err != nil {
			return err
		}
	}
	return nil
}

type ListPropertiesOpts struct {
	Location string // filter on the query location the sweep ran with
	Source   string
	Limit    int
}

func ListProperties(ctx context.Context, db *sql.DB, opts ListPropertiesOpts) ([]domain.PropertyData, error) {
	if opts.Limit <= 0 || opts.Limit > 2000 {
		opts.Limit = 500
	}

	query := `
SELECT record
FROM properties
WHERE (? = '' OR query_location = ?)
  AND (? = '' OR source = ?)
ORDER BY fetched_at DESC, id DESC
LIMIT ?;
`
	rows, err := db.QueryContext(ctx, query,
		opts.Location, opts.Location, opts.Source, opts.Source, opts.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PropertyData
	for rows.Next() {
		var rec string
		if err := rows.Scan(&rec); err != nil {
			return nil, err
		}
		var p domain.PropertyData
		if err := json.Unmarshal([]byte(rec), &p); err != nil {
			continue
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
