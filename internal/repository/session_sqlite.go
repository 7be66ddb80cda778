package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"weddingpress-web/internal/session"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens a SQLite database through the pure-Go driver
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	// one writer avoids SQLITE_BUSY under concurrent requests
	db.SetMaxOpenConns(1)
	return db, nil
}

// SQLiteSessionStore keeps admin sessions in a SQLite file
type SQLiteSessionStore struct {
	db *sql.DB
}

// NewSQLiteSessionStore creates a SQLite session store
func NewSQLiteSessionStore(db *sql.DB) *SQLiteSessionStore {
	return &SQLiteSessionStore{db: db}
}

func (r *SQLiteSessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	var s session.Session
	var userID, expiresAt, createdAt int64
	err := r.db.QueryRowContext(ctx, `
		SELECT id, token, user_id, user_name, user_email, expires_at, created_at
		FROM admin_sessions WHERE id = ?
	`, id).Scan(&s.ID, &s.Token, &userID, &s.User.Name, &s.User.Email, &expiresAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	s.User.ID = uint(userID)
	s.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	s.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &s, nil
}

func (r *SQLiteSessionStore) Save(ctx context.Context, s *session.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admin_sessions (id, token, user_id, user_name, user_email, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			user_id = excluded.user_id,
			user_name = excluded.user_name,
			user_email = excluded.user_email,
			expires_at = excluded.expires_at
	`, s.ID, s.Token, int64(s.User.ID), s.User.Name, s.User.Email, s.ExpiresAt.Unix(), s.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *SQLiteSessionStore) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *SQLiteSessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted sessions: %w", err)
	}
	return n, nil
}
