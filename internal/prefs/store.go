// Package prefs persists per-device user preferences in a local SQLite
// database, with a write-through to the hosted profile when a session
// is active. The local copy is the source of truth for display: it
// keeps the chosen currency available offline and before sign-in.
package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// LocalOwner keys the preference row used before anyone signs in.
const LocalOwner = "local"

// Store is the SQLite-backed preference store.
type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Currency returns the stored currency code for ownerID, or "" when the
// owner has never picked one.
func (s *Store) Currency(ctx context.Context, ownerID string) (string, error) {
	var code string
	err := s.db.QueryRowContext(ctx,
		`SELECT currency FROM preferences WHERE owner_id = ?`, ownerID,
	).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read currency: %w", err)
	}
	return code, nil
}

// SetCurrency stores the currency code for ownerID, replacing any
// previous choice.
func (s *Store) SetCurrency(ctx context.Context, ownerID, code string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (owner_id, currency, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(owner_id) DO UPDATE SET currency = excluded.currency, updated_at = excluded.updated_at`,
		ownerID, code, now,
	)
	if err != nil {
		return fmt.Errorf("write currency: %w", err)
	}
	return nil
}
