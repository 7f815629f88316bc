// Package store handles SQLite persistence of the log load history.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/oradash/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for load history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS loads (
			id INTEGER PRIMARY KEY,
			path TEXT NOT NULL,
			loaded_at TEXT NOT NULL,
			total_lines INTEGER NOT NULL,
			events INTEGER NOT NULL,
			skipped_lines INTEGER NOT NULL,
			error TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_loads_loaded_at ON loads(loaded_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertLoad records one load attempt and returns its id.
func (s *Store) InsertLoad(ctx context.Context, rec model.LoadRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO loads (path, loaded_at, total_lines, events, skipped_lines, error)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Path,
		rec.LoadedAt.UTC().Format(time.RFC3339Nano),
		rec.TotalLines,
		rec.Events,
		rec.SkippedLines,
		rec.Error,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListLoads returns up to limit load records, newest first. A limit of zero returns all.
func (s *Store) ListLoads(ctx context.Context, limit int) ([]model.LoadRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, loaded_at, total_lines, events, skipped_lines, error
		 FROM loads
		 ORDER BY loaded_at DESC, id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.LoadRecord
	for rows.Next() {
		var rec model.LoadRecord
		var loadedAt string
		if err := rows.Scan(&rec.ID, &rec.Path, &loadedAt, &rec.TotalLines, &rec.Events, &rec.SkippedLines, &rec.Error); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, loadedAt)
		if err != nil {
			return nil, err
		}
		rec.LoadedAt = parsed
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// LastSuccessfulPath returns the path of the newest load that produced events.
// The boolean is false when no such load exists.
func (s *Store) LastSuccessfulPath(ctx context.Context) (string, bool, error) {
	var path string
	err := s.db.QueryRowContext(ctx,
		`SELECT path FROM loads
		 WHERE error = '' AND events > 0
		 ORDER BY loaded_at DESC, id DESC
		 LIMIT 1`).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return path, true, nil
}
