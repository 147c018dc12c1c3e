package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/spencer-p/hightides/pkg/tides"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tides (
	location TEXT NOT NULL,
	time INTEGER NOT NULL,
	high INTEGER NOT NULL,
	height REAL NOT NULL,
	fetched_at INTEGER NOT NULL,
	PRIMARY KEY (location, time)
);
CREATE INDEX IF NOT EXISTS idx_tides_time ON tides(time);
`

// SQLite stores tides in a local database file.
type SQLite struct {
	db *sql.DB
}

var _ tides.Store = (*SQLite)(nil)

// OpenSQLite opens or creates the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One writer; workers save concurrently.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// Save upserts every tide event of r. A refetch of the same week replaces
// the earlier heights.
func (s *SQLite) Save(ctx context.Context, r tides.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tides (location, time, high, height, fetched_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(location, time) DO UPDATE SET
			high = excluded.high, height = excluded.height, fetched_at = excluded.fetched_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range records(r) {
		if _, err := stmt.ExecContext(ctx, t.Location, t.Time.Unix(), t.High, t.Height, t.FetchedAt.Unix()); err != nil {
			return fmt.Errorf("save %s at %s: %w", t.Location, t.Time, err)
		}
	}
	return tx.Commit()
}

// HighTides returns the stored high tides of location in [from, to), in time
// order.
func (s *SQLite) HighTides(ctx context.Context, location string, from, to time.Time) ([]Tide, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT location, time, high, height, fetched_at FROM tides
		WHERE location = ? AND high = 1 AND time >= ? AND time < ?
		ORDER BY time`, location, from.Unix(), to.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Tide
	for rows.Next() {
		var (
			t             Tide
			at, fetchedAt int64
		)
		if err := rows.Scan(&t.Location, &at, &t.High, &t.Height, &fetchedAt); err != nil {
			return nil, err
		}
		t.Time = time.Unix(at, 0).UTC()
		t.FetchedAt = time.Unix(fetchedAt, 0).UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}
