// Package session persists login and location state between CLI runs,
// the counterpart of the mobile app's local key-value store.
package session

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hireloop/seeker/internal/model"
)

// Store is a sqlite-backed single-user session store.
type Store struct {
	db *sqlx.DB
}

// Open connects to (or creates) the session database at path and ensures
// the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create session dir: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}

	// SQLite doesn't support multiple writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			token TEXT NOT NULL,
			user_id TEXT NOT NULL,
			phone TEXT NOT NULL,
			name TEXT,
			expires_at TIMESTAMP NOT NULL
		);
		CREATE TABLE IF NOT EXISTS locations (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			label TEXT,
			updated_at TIMESTAMP NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("init session schema: %w", err)
	}
	return nil
}

// Save stores the session, replacing any previous one.
func (s *Store) Save(sess *model.Session) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (id, token, user_id, phone, name, expires_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			token = excluded.token,
			user_id = excluded.user_id,
			phone = excluded.phone,
			name = excluded.name,
			expires_at = excluded.expires_at`,
		sess.Token, sess.UserID, sess.Phone, sess.Name, sess.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the stored session, or nil when none exists.
func (s *Store) Load() (*model.Session, error) {
	var row struct {
		Token     string    `db:"token"`
		UserID    string    `db:"user_id"`
		Phone     string    `db:"phone"`
		Name      string    `db:"name"`
		ExpiresAt time.Time `db:"expires_at"`
	}
	err := s.db.Get(&row, `SELECT token, user_id, phone, name, expires_at FROM sessions WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &model.Session{
		Token:     row.Token,
		UserID:    row.UserID,
		Phone:     row.Phone,
		Name:      row.Name,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

// Clear removes the stored session. Clearing an empty store is a no-op.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM sessions WHERE id = 1`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// SaveLocation caches the seeker's last known position.
func (s *Store) SaveLocation(loc *model.Location) error {
	_, err := s.db.Exec(`
		INSERT INTO locations (id, latitude, longitude, label, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			label = excluded.label,
			updated_at = excluded.updated_at`,
		loc.Latitude, loc.Longitude, loc.Label, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save location: %w", err)
	}
	return nil
}

// Location returns the cached position, or nil when none is stored.
func (s *Store) Location() (*model.Location, error) {
	var row struct {
		Latitude  float64   `db:"latitude"`
		Longitude float64   `db:"longitude"`
		Label     string    `db:"label"`
		UpdatedAt time.Time `db:"updated_at"`
	}
	err := s.db.Get(&row, `SELECT latitude, longitude, label, updated_at FROM locations WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load location: %w", err)
	}
	return &model.Location{
		Latitude:  row.Latitude,
		Longitude: row.Longitude,
		Label:     row.Label,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
