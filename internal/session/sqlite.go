package session

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ Slot = (*SQLiteSlot)(nil)

// SQLiteSlot stores the session token in a single-row SQLite table, giving
// the client a durable slot that survives restarts.
type SQLiteSlot struct {
	db *sql.DB
}

const sessionSchema = `
CREATE TABLE IF NOT EXISTS session (
	id    INTEGER PRIMARY KEY CHECK (id = 1),
	token TEXT NOT NULL
);`

// OpenSQLiteSlot opens (or creates) the session database at path.
func OpenSQLiteSlot(path string) (*SQLiteSlot, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening session db: %w", err)
	}
	if _, err := db.Exec(sessionSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating session table: %w", err)
	}
	return &SQLiteSlot{db: db}, nil
}

// Load returns the stored token, or "" when the slot is empty.
func (s *SQLiteSlot) Load() (string, error) {
	var token string
	err := s.db.QueryRow(`SELECT token FROM session WHERE id = 1`).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading session token: %w", err)
	}
	return token, nil
}

// Save writes the token, replacing any previous value.
func (s *SQLiteSlot) Save(token string) error {
	_, err := s.db.Exec(
		`INSERT INTO session (id, token) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET token = excluded.token`, token)
	if err != nil {
		return fmt.Errorf("saving session token: %w", err)
	}
	return nil
}

// Clear removes the stored token.
func (s *SQLiteSlot) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM session WHERE id = 1`); err != nil {
		return fmt.Errorf("clearing session token: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteSlot) Close() error {
	return s.db.Close()
}

// MemorySlot is an in-memory Slot for tests and for running without a
// session database.
type MemorySlot struct {
	token string
}

var _ Slot = (*MemorySlot)(nil)

func (m *MemorySlot) Load() (string, error)   { return m.token, nil }
func (m *MemorySlot) Save(token string) error { m.token = token; return nil }
func (m *MemorySlot) Clear() error            { m.token = ""; return nil }
