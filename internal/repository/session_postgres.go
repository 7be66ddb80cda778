package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weddingpress-web/internal/session"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSessionStore keeps admin sessions in PostgreSQL
type PostgresSessionStore struct {
	db *pgxpool.Pool
}

// NewPostgresSessionStore creates a PostgreSQL session store
func NewPostgresSessionStore(db *pgxpool.Pool) *PostgresSessionStore {
	return &PostgresSessionStore{db: db}
}

// Get retrieves a session by ID
func (r *PostgresSessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	query := `
		SELECT id, token, user_id, user_name, user_email, expires_at, created_at
		FROM admin_sessions
		WHERE id = $1
	`
	var s session.Session
	var userID int64
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Token, &userID, &s.User.Name, &s.User.Email, &s.ExpiresAt, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrNoSession
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	s.User.ID = uint(userID)
	return &s, nil
}

// Save inserts or replaces a session
func (r *PostgresSessionStore) Save(ctx context.Context, s *session.Session) error {
	query := `
		INSERT INTO admin_sessions (id, token, user_id, user_name, user_email, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			token = EXCLUDED.token,
			user_id = EXCLUDED.user_id,
			user_name = EXCLUDED.user_name,
			user_email = EXCLUDED.user_email,
			expires_at = EXCLUDED.expires_at
	`
	_, err := r.db.Exec(ctx, query,
		s.ID, s.Token, int64(s.User.ID), s.User.Name, s.User.Email, s.ExpiresAt, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes a session
func (r *PostgresSessionStore) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM admin_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions that expired at or before now
func (r *PostgresSessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM admin_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
