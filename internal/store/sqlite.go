package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/KaramelBytes/hdiview/internal/dataset"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS observations (
	kind      TEXT NOT NULL,
	entity    TEXT NOT NULL COLLATE NOCASE,
	indicator TEXT NOT NULL COLLATE NOCASE,
	year      INTEGER NOT NULL,
	value     REAL NOT NULL,
	PRIMARY KEY (kind, entity, indicator, year)
);
CREATE INDEX IF NOT EXISTS idx_observations_entity ON observations(kind, entity);
`

// SQLiteStore serves lookups from a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path. Use
// ":memory:" for a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Import upserts every observation of a table in one transaction and
// returns the number of rows written.
func (s *SQLiteStore) Import(ctx context.Context, kind Kind, t *dataset.Table) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO observations (kind, entity, indicator, year, value) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(kind, entity, indicator, year) DO UPDATE SET value = excluded.value`)
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()
	n := 0
	for _, o := range t.Observations {
		if _, err := stmt.ExecContext(ctx, string(kind), strings.TrimSpace(o.Entity), strings.TrimSpace(o.Indicator), o.Year, o.Value); err != nil {
			return n, fmt.Errorf("insert %s/%s/%d: %w", o.Entity, o.Indicator, o.Year, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return n, nil
}

// Lookup queries one series ordered by year.
func (s *SQLiteStore) Lookup(ctx context.Context, req Request) (Series, error) {
	q := `SELECT year, value FROM observations WHERE kind = ? AND entity = ? AND indicator = ?`
	args := []any{string(req.Kind), strings.TrimSpace(req.Entity), strings.TrimSpace(req.Metric)}
	if req.Window != nil {
		q += ` AND year BETWEEN ? AND ?`
		args = append(args, req.Window.Start, req.Window.End)
	}
	q += ` ORDER BY year`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", req, err)
	}
	defer rows.Close()
	var out Series
	for rows.Next() {
		var p Point
		if err := rows.Scan(&p.X, &p.Y); err != nil {
			return nil, fmt.Errorf("scan %s: %w", req, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lookup %s: %w", req, err)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// Entities lists entity names of a kind in first-import order.
func (s *SQLiteStore) Entities(ctx context.Context, kind Kind) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entity FROM observations WHERE kind = ? GROUP BY entity ORDER BY MIN(rowid)`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
