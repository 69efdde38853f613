package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/totem/pkg/domain"

	// Registers the "sqlite" driver.
	_ "modernc.org/sqlite"
)

// Store implements ports.SessionStore on a SQLite database.
// Traits are stored as a JSON array to keep their order.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database at path and prepares the schema.
// Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// SQLite serialises writers anyway; one connection also keeps ":memory:" consistent.
	db.SetMaxOpenConns(1)

	store, err := New(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an existing *sql.DB using the modernc "sqlite" driver.
func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to init sqlite schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			user_id TEXT PRIMARY KEY,
			current_index INTEGER NOT NULL,
			traits TEXT NOT NULL,
			started_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	)
	return err
}

// Save upserts the session.
func (s *Store) Save(ctx context.Context, userID string, session *domain.Session) error {
	traits := session.Traits
	if traits == nil {
		traits = []string{}
	}
	encoded, err := json.Marshal(traits)
	if err != nil {
		return fmt.Errorf("failed to marshal traits: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (user_id, current_index, traits, started_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			current_index = excluded.current_index,
			traits = excluded.traits,
			started_at = excluded.started_at,
			updated_at = excluded.updated_at`,
		userID,
		session.CurrentIndex,
		string(encoded),
		formatTime(session.StartedAt),
		formatTime(session.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load retrieves the session for userID.
func (s *Store) Load(ctx context.Context, userID string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, current_index, traits, started_at, updated_at
		FROM sessions
		WHERE user_id = ?`,
		userID,
	)

	var (
		session            domain.Session
		traits             string
		started, updatedAt string
	)
	if err := row.Scan(&session.UserID, &session.CurrentIndex, &traits, &started, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUnknownSession
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if err := json.Unmarshal([]byte(traits), &session.Traits); err != nil {
		return nil, fmt.Errorf("failed to decode traits: %w", err)
	}
	if session.Traits == nil {
		session.Traits = []string{}
	}

	var err error
	if session.StartedAt, err = parseTime(started); err != nil {
		return nil, err
	}
	if session.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete removes the session. Deleting a missing session is not an error.
func (s *Store) Delete(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

// List returns every stored user ID.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM sessions ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", v, err)
	}
	return t, nil
}
