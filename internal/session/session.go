package session

import (
	"context"
	"errors"
	"time"

	"weddingpress-web/internal/models"
)

// ErrNoSession is returned for unknown or expired sessions
var ErrNoSession = errors.New("no active session")

// Session is one logged-in admin: the backend bearer token and its user
type Session struct {
	ID        string
	Token     string
	User      models.User
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is past its expiry at now
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Store persists sessions. Get returns ErrNoSession when id is unknown.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type contextKey string

const sessionKey contextKey = "session"

// WithSession stores the current session in ctx
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext returns the session stored by WithSession, or nil
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey).(*Session)
	return s
}
