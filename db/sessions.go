// ABOUTME: Session persistence for signed-in users
// ABOUTME: Stores the OAuth token triple keyed by session id, with expiry purging
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/mindcoach/models"
)

// InitSchema creates the sessions table if it does not exist.
func InitSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL DEFAULT '',
		access_token TEXT NOT NULL DEFAULT '',
		refresh_token TEXT NOT NULL DEFAULT '',
		token_expires_at INTEGER NOT NULL DEFAULT 0,
		token_error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		expires_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create sessions schema: %w", err)
	}
	return nil
}

// CreateSession inserts a new session with a fresh id.
func CreateSession(db *sql.DB, email string, token models.SessionToken, ttl time.Duration) (*models.Session, error) {
	now := time.Now().UTC()
	session := &models.Session{
		ID:        uuid.New(),
		Email:     email,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	_, err := db.Exec(
		`INSERT INTO sessions (id, email, access_token, refresh_token, token_expires_at, token_error, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID.String(), session.Email,
		token.AccessToken, token.RefreshToken, token.ExpiresAt, token.Error,
		session.CreatedAt, session.ExpiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// GetSession fetches a session by id. Returns nil without error when the id
// is unknown or the session has expired.
func GetSession(db *sql.DB, id uuid.UUID) (*models.Session, error) {
	row := db.QueryRow(
		`SELECT id, email, access_token, refresh_token, token_expires_at, token_error, created_at, expires_at
		 FROM sessions WHERE id = ?`,
		id.String(),
	)

	var session models.Session
	var rawID string
	err := row.Scan(
		&rawID, &session.Email,
		&session.Token.AccessToken, &session.Token.RefreshToken,
		&session.Token.ExpiresAt, &session.Token.Error,
		&session.CreatedAt, &session.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	session.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("corrupt session id %q: %w", rawID, err)
	}

	if time.Now().After(session.ExpiresAt) {
		return nil, nil
	}

	return &session, nil
}

// UpdateSessionToken persists a refreshed token triple back to the session.
// Sessions are the system of record for tokens: the refresher hands back a
// value and the caller writes it here, never as a hidden side effect.
func UpdateSessionToken(db *sql.DB, id uuid.UUID, token models.SessionToken) error {
	result, err := db.Exec(
		`UPDATE sessions SET access_token = ?, refresh_token = ?, token_expires_at = ?, token_error = ?
		 WHERE id = ?`,
		token.AccessToken, token.RefreshToken, token.ExpiresAt, token.Error,
		id.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update session token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check session update: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("session %s not found", id)
	}

	return nil
}

// DeleteSession removes a session (sign-out).
func DeleteSession(db *sql.DB, id uuid.UUID) error {
	if _, err := db.Exec(`DELETE FROM sessions WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// PurgeExpiredSessions deletes sessions past their expiry and returns the
// number removed. Run periodically from the sweeper cron.
func PurgeExpiredSessions(db *sql.DB) (int64, error) {
	result, err := db.Exec(`DELETE FROM sessions WHERE expires_at < ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return result.RowsAffected()
}
