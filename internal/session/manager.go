package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weddingpress-web/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Authenticator exchanges admin credentials for a backend token
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
}

// Manager owns the admin session lifecycle
type Manager struct {
	store Store
	auth  Authenticator
	ttl   time.Duration
	now   func() time.Time
}

// NewManager creates a session manager. ttl applies when the token carries no exp claim.
func NewManager(store Store, auth Authenticator, ttl time.Duration) *Manager {
	return &Manager{
		store: store,
		auth:  auth,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Login authenticates against the backend and stores a new session
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	resp, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("backend returned an empty token")
	}

	now := m.now()
	s := &Session{
		ID:        uuid.New().String(),
		Token:     resp.Token,
		User:      resp.User,
		ExpiresAt: m.expiry(resp.Token, now),
		CreatedAt: now,
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	log.Info().
		Uint("user_id", s.User.ID).
		Time("expires_at", s.ExpiresAt).
		Msg("Admin logged in")
	return s, nil
}

// Current returns the live session for id
func (m *Manager) Current(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNoSession
	}
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Expired(m.now()) {
		if err := m.store.Delete(ctx, id); err != nil {
			log.Error().Err(err).Str("session_id", id).Msg("Failed to delete expired session")
		}
		return nil, ErrNoSession
	}
	return s, nil
}

// Logout ends a session
func (m *Manager) Logout(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ForceLogout ends a session after the backend rejected its token
func (m *Manager) ForceLogout(ctx context.Context, id string) {
	if id == "" {
		return
	}
	if err := m.store.Delete(ctx, id); err != nil && !errors.Is(err, ErrNoSession) {
		log.Error().Err(err).Str("session_id", id).Msg("Failed to force logout")
		return
	}
	log.Warn().Str("session_id", id).Msg("Session revoked after backend returned 401")
}

// Sweep removes expired sessions
func (m *Manager) Sweep(ctx context.Context) (int64, error) {
	n, err := m.store.DeleteExpired(ctx, m.now())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep sessions: %w", err)
	}
	return n, nil
}

// RunSweeper sweeps on every tick until ctx is done
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.Sweep(ctx)
			if err != nil {
				log.Error().Err(err).Msg("Session sweep failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("removed", n).Msg("Expired sessions removed")
			}
		}
	}
}

// expiry reads the exp claim without verifying; the backend owns the signing key
func (m *Manager) expiry(token string, now time.Time) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	return now.Add(m.ttl)
}
