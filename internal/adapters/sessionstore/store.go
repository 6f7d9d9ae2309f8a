// Package sessionstore persists the operator session in a local SQLite file.
//
// The store holds at most one record. Writes replace the whole record, so a
// torn half-session can never be read back.
package sessionstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // sqlite driver

	domain "github.com/okian/levelup/internal/domain/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS session (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	username TEXT NOT NULL,
	token TEXT NOT NULL
);`

// SQLiteStore implements session.Store on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the session database at path.
// Use ":memory:" for an ephemeral store.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create session schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// NewSQLiteStore wraps an existing database handle. The schema must exist.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Load retrieves the persisted session.
// POST: Returns session.ErrNoSession when no well-formed record exists.
func (s *SQLiteStore) Load(ctx context.Context) (domain.Session, error) {
	row := s.db.QueryRowContext(ctx, "SELECT username, token FROM session WHERE id = 1")

	var sess domain.Session
	err := row.Scan(&sess.Username, &sess.Token)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, domain.ErrNoSession
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}
	// A partial row is treated the same as no row at all.
	if !sess.Valid() {
		return domain.Session{}, domain.ErrNoSession
	}
	return sess, nil
}

// Save persists the session, replacing any prior record.
// PRE: sess has been validated by the caller
func (s *SQLiteStore) Save(ctx context.Context, sess domain.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	query := `INSERT INTO session (id, username, token) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET username=excluded.username, token=excluded.token`
	if _, err := tx.ExecContext(ctx, query, sess.Username, sess.Token); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return tx.Commit()
}

// Delete removes the persisted session. Deleting an absent record is not an
// error.
func (s *SQLiteStore) Delete(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM session WHERE id = 1"); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
