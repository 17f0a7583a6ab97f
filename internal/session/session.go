// Package session persists the signed-in operator's tokens in SQLite.
package session

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNoSession is returned by Load when nobody is signed in.
var ErrNoSession = errors.New("no stored session")

// Tokens is what a successful login leaves behind.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	Email        string
	ExpiresAt    time.Time
}

// Valid reports whether the access token can still be used at now. A zero
// expiry means the server did not say.
func (t Tokens) Valid(now time.Time) bool {
	if t.AccessToken == "" {
		return false
	}
	return t.ExpiresAt.IsZero() || now.Before(t.ExpiresAt)
}

// Store keeps a single session row and caches it in memory so AccessToken is
// cheap to call on every request.
type Store struct {
	mu      sync.RWMutex
	db      *sql.DB
	current Tokens
}

// Open opens or creates the session database at path. ":memory:" is
// accepted for tests.
func Open(path string) (*Store, error) {
	connStr := path
	if path == ":memory:" {
		connStr = "file::memory:?cache=shared"
	} else if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create session dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping session database: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS session (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		access_token TEXT NOT NULL,
		refresh_token TEXT NOT NULL DEFAULT '',
		id_token TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		expires_at INTEGER NOT NULL DEFAULT 0
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create session table: %w", err)
	}

	s := &Store{db: db}
	if tokens, err := s.read(); err == nil {
		s.current = tokens
	} else if !errors.Is(err, ErrNoSession) {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Save replaces the stored session.
func (s *Store) Save(t Tokens) error {
	var expires int64
	if !t.ExpiresAt.IsZero() {
		expires = t.ExpiresAt.Unix()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`
		INSERT INTO session (id, access_token, refresh_token, id_token, email, expires_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			id_token = excluded.id_token,
			email = excluded.email,
			expires_at = excluded.expires_at`,
		t.AccessToken, t.RefreshToken, t.IDToken, t.Email, expires)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.current = t
	return nil
}

// Load returns the stored session or ErrNoSession.
func (s *Store) Load() (Tokens, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read()
}

func (s *Store) read() (Tokens, error) {
	var (
		t       Tokens
		expires int64
	)
	row := s.db.QueryRow(`SELECT access_token, refresh_token, id_token, email, expires_at FROM session WHERE id = 1`)
	if err := row.Scan(&t.AccessToken, &t.RefreshToken, &t.IDToken, &t.Email, &expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Tokens{}, ErrNoSession
		}
		return Tokens{}, fmt.Errorf("load session: %w", err)
	}
	if expires > 0 {
		t.ExpiresAt = time.Unix(expires, 0)
	}
	return t, nil
}

// Clear forgets the stored session.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(`DELETE FROM session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.current = Tokens{}
	return nil
}

// Valid reports whether the stored session is usable at now.
func (s *Store) Valid(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Valid(now)
}

// Email returns the signed-in operator's email.
func (s *Store) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Email
}

// AccessToken returns the current bearer token, or "" when signed out.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.AccessToken
}
