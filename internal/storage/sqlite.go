package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wayfinder-labs/wayfinder/backend/internal/model/interview"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// SQLiteStore persists profiles as JSON payloads keyed by session id.
type SQLiteStore struct {
	db *sql.DB
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS profiles (
	session_id TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	background TEXT NOT NULL DEFAULT '',
	payload    TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// Open opens (creating if needed) the sqlite database at path and runs the
// non-destructive migration.
func Open(path string) (*SQLiteStore, error) {
	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// modernc sqlite serialises writes itself; one connection avoids
	// SQLITE_BUSY churn under concurrent sessions.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate profiles table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load fetches and normalises the stored profile so a hand-edited row can
// never yield a profile missing a dimension key.
func (s *SQLiteStore) Load(ctx context.Context, sessionID string) (*interview.Profile, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM profiles WHERE session_id = ?`, sessionID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load profile %s: %w", sessionID, err)
	}

	profile := &interview.Profile{}
	if err := json.Unmarshal([]byte(payload), profile); err != nil {
		return nil, false, fmt.Errorf("decode profile %s: %w", sessionID, err)
	}
	profile.Normalize()
	return profile, true, nil
}

// Save upserts the profile payload.
func (s *SQLiteStore) Save(ctx context.Context, sessionID string, profile *interview.Profile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile %s: %w", sessionID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (session_id, name, background, payload, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			name = excluded.name,
			background = excluded.background,
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		sessionID, profile.Name, profile.Background, string(payload),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save profile %s: %w", sessionID, err)
	}
	return nil
}
