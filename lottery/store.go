package lottery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const drawSchema = `
CREATE TABLE IF NOT EXISTS draws (
	date  TEXT PRIMARY KEY,
	n1    INTEGER NOT NULL,
	n2    INTEGER NOT NULL,
	n3    INTEGER NOT NULL,
	n4    INTEGER NOT NULL,
	n5    INTEGER NOT NULL,
	n6    INTEGER NOT NULL,
	bonus INTEGER NOT NULL
);`

// Store caches draws in a sqlite file so the scene survives API outages. One
// row per draw date; re-saving a date overwrites it.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and on first use creates) the draw cache at path.
func OpenStore(path string) (*Store, error) {
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open draw cache: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping draw cache: %w", err)
	}
	if _, err := db.Exec(drawSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init draw cache: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the sqlite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save upserts a draw keyed by its date. Invalid draws are rejected so the
// cache never holds anything the scene cannot show.
func (s *Store) Save(ctx context.Context, d Draw) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("refusing to cache draw: %w", err)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO draws (date, n1, n2, n3, n4, n5, n6, bonus)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.Date, d.Numbers[0], d.Numbers[1], d.Numbers[2],
		d.Numbers[3], d.Numbers[4], d.Numbers[5], d.Bonus)
	if err != nil {
		return fmt.Errorf("cache draw %s: %w", d.Date, err)
	}
	return nil
}

// Latest returns the newest cached draw, or ErrNoDraws when the cache is
// empty. ISO dates order chronologically as text.
func (s *Store) Latest(ctx context.Context) (Draw, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT date, n1, n2, n3, n4, n5, n6, bonus
		 FROM draws ORDER BY date DESC LIMIT 1`)
	var d Draw
	err := row.Scan(&d.Date, &d.Numbers[0], &d.Numbers[1], &d.Numbers[2],
		&d.Numbers[3], &d.Numbers[4], &d.Numbers[5], &d.Bonus)
	if errors.Is(err, sql.ErrNoRows) {
		return Draw{}, ErrNoDraws
	}
	if err != nil {
		return Draw{}, fmt.Errorf("read draw cache: %w", err)
	}
	return d, nil
}

// Recent returns up to n cached draws, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Draw, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, n1, n2, n3, n4, n5, n6, bonus
		 FROM draws ORDER BY date DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("read draw cache: %w", err)
	}
	defer rows.Close()

	var draws []Draw
	for rows.Next() {
		var d Draw
		if err := rows.Scan(&d.Date, &d.Numbers[0], &d.Numbers[1], &d.Numbers[2],
			&d.Numbers[3], &d.Numbers[4], &d.Numbers[5], &d.Bonus); err != nil {
			return nil, fmt.Errorf("scan cached draw: %w", err)
		}
		draws = append(draws, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read draw cache: %w", err)
	}
	return draws, nil
}
