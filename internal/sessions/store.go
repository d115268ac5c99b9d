// Package sessions persists recording session history in SQLite so that
// past captures survive daemon restarts and can be listed from the CLI.
package sessions

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Session is one recording, open (EndedAt nil) or finished.
type Session struct {
	ID         string
	DeviceID   string
	Backend    string
	SampleRate int
	Channels   int
	StartedAt  time.Time
	EndedAt    *time.Time
	Bytes      int64
}

// Duration returns the session length, or the elapsed time so far for a
// session still recording.
func (s Session) Duration() time.Duration {
	if s.EndedAt == nil {
		return time.Since(s.StartedAt)
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// Store manages session persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS recording_sessions (
    id          TEXT PRIMARY KEY,
    device_id   TEXT NOT NULL,
    backend     TEXT NOT NULL,
    sample_rate INTEGER NOT NULL,
    channels    INTEGER NOT NULL,
    started_at  TEXT NOT NULL,
    ended_at    TEXT,
    bytes       INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_sessions_started_at
    ON recording_sessions(started_at DESC);
`

// Open initializes or connects to the session database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure session db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply session schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// StartSession records the beginning of a recording and returns its ID.
func (s *Store) StartSession(ctx context.Context, deviceID, backend string, sampleRate, channels int) (string, error) {
	id := uuid.NewString()
	startedAt := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO recording_sessions (
            id, device_id, backend, sample_rate, channels, started_at
        ) VALUES (?, ?, ?, ?, ?, ?)`,
		id, deviceID, backend, sampleRate, channels, startedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return id, nil
}

// FinishSession closes an open session with its final byte count.
func (s *Store) FinishSession(ctx context.Context, id string, bytes int64) error {
	endedAt := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(
		ctx,
		`UPDATE recording_sessions SET ended_at = ?, bytes = ? WHERE id = ?`,
		endedAt, bytes, id,
	)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish session: no session with id %s", id)
	}
	return nil
}

// List returns sessions most recent first, at most limit rows. A limit of
// zero or below means no cap.
func (s *Store) List(ctx context.Context, limit int) ([]Session, error) {
	query := `SELECT id, device_id, backend, sample_rate, channels, started_at, ended_at, bytes
        FROM recording_sessions ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var (
			session   Session
			startedAt string
			endedAt   sql.NullString
		)
		if err := rows.Scan(
			&session.ID, &session.DeviceID, &session.Backend,
			&session.SampleRate, &session.Channels,
			&startedAt, &endedAt, &session.Bytes,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		session.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if endedAt.Valid {
			ended, err := time.Parse(time.RFC3339Nano, endedAt.String)
			if err != nil {
				return nil, fmt.Errorf("parse ended_at: %w", err)
			}
			session.EndedAt = &ended
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}
