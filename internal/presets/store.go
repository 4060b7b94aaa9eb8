// Package presets stores named texture parameter sets in SQLite.
//
// Only request query strings are kept; rendered pixels are never persisted.
package presets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound is returned when no preset has the requested name.
var ErrNotFound = errors.New("preset not found")

// Preset is a named set of request parameters for one mode.
type Preset struct {
	Name      string
	Mode      string
	Query     string
	UpdatedAt time.Time
}

// Values parses the stored query.
func (p Preset) Values() (url.Values, error) {
	v, err := url.ParseQuery(p.Query)
	if err != nil {
		return nil, fmt.Errorf("preset %q: %w", p.Name, err)
	}
	return v, nil
}

// Store is a preset database. It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens or creates the preset database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db, path: path, now: time.Now}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS presets (
			name TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			query TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Put inserts or replaces a preset. The query must parse as a URL query.
func (s *Store) Put(ctx context.Context, p Preset) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("preset name must not be empty")
	}
	if _, err := p.Values(); err != nil {
		return err
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO presets (name, mode, query, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET mode = excluded.mode, query = excluded.query, updated_at = excluded.updated_at`,
		p.Name, p.Mode, p.Query, p.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to store preset %q: %w", p.Name, err)
	}
	return nil
}

// Get returns the named preset or ErrNotFound.
func (s *Store) Get(ctx context.Context, name string) (Preset, error) {
	var (
		p       Preset
		updated int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT name, mode, query, updated_at FROM presets WHERE name = ?",
		strings.TrimSpace(name),
	).Scan(&p.Name, &p.Mode, &p.Query, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Preset{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return Preset{}, fmt.Errorf("failed to query preset %q: %w", name, err)
	}
	p.UpdatedAt = time.Unix(updated, 0)
	return p, nil
}

// List returns all presets ordered by name.
func (s *Store) List(ctx context.Context) ([]Preset, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, mode, query, updated_at FROM presets ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	defer rows.Close()

	var out []Preset
	for rows.Next() {
		var (
			p       Preset
			updated int64
		)
		if err := rows.Scan(&p.Name, &p.Mode, &p.Query, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan preset: %w", err)
		}
		p.UpdatedAt = time.Unix(updated, 0)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate presets: %w", err)
	}
	return out, nil
}

// Delete removes the named preset. Deleting a missing preset returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM presets WHERE name = ?", strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("failed to delete preset %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete preset %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
