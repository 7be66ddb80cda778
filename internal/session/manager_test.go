package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"weddingpress-web/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	SaveErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: map[string]*Session{}}
}

func (f *fakeStore) Get(_ context.Context, id string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, ErrNoSession
	}
	return s, nil
}

func (f *fakeStore) Save(_ context.Context, s *Session) error {
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

func (f *fakeStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, s := range f.sessions {
		if s.Expired(now) {
			delete(f.sessions, id)
			n++
		}
	}
	return n, nil
}

type fakeAuth struct {
	Resp      *models.LoginResponse
	Err       error
	LastEmail string
}

func (f *fakeAuth) Login(_ context.Context, email, _ string) (*models.LoginResponse, error) {
	f.LastEmail = email
	return f.Resp, f.Err
}

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func TestManager_LoginUsesTokenExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	auth := &fakeAuth{Resp: &models.LoginResponse{
		Token: signed(t, jwt.MapClaims{"user_id": 7, "exp": exp.Unix()}),
		User:  models.User{ID: 7, Name: "Rina", Email: "rina@example.com"},
	}}
	store := newFakeStore()
	m := NewManager(store, auth, time.Hour)

	s, err := m.Login(context.Background(), "rina@example.com", "secret")
	require.NoError(t, err)

	assert.Equal(t, "rina@example.com", auth.LastEmail)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, uint(7), s.User.ID)
	assert.True(t, exp.Equal(s.ExpiresAt))

	got, err := m.Current(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Token, got.Token)
}

func TestManager_LoginFallsBackToTTL(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	auth := &fakeAuth{Resp: &models.LoginResponse{Token: "opaque-token"}}
	m := NewManager(newFakeStore(), auth, 72*time.Hour)
	m.now = func() time.Time { return now }

	s, err := m.Login(context.Background(), "a@b.c", "x")
	require.NoError(t, err)
	assert.Equal(t, now.Add(72*time.Hour), s.ExpiresAt)
}

func TestManager_LoginErrors(t *testing.T) {
	backendErr := errors.New("invalid credentials")

	m := NewManager(newFakeStore(), &fakeAuth{Err: backendErr}, time.Hour)
	_, err := m.Login(context.Background(), "a@b.c", "x")
	assert.ErrorIs(t, err, backendErr)

	m = NewManager(newFakeStore(), &fakeAuth{Resp: &models.LoginResponse{}}, time.Hour)
	_, err = m.Login(context.Background(), "a@b.c", "x")
	assert.Error(t, err)

	store := newFakeStore()
	store.SaveErr = errors.New("disk full")
	m = NewManager(store, &fakeAuth{Resp: &models.LoginResponse{Token: "t"}}, time.Hour)
	_, err = m.Login(context.Background(), "a@b.c", "x")
	assert.ErrorIs(t, err, store.SaveErr)
}

func TestManager_CurrentExpiredIsRemoved(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.sessions["old"] = &Session{ID: "old", Token: "t", ExpiresAt: now.Add(-time.Second)}
	m := NewManager(store, &fakeAuth{}, time.Hour)
	m.now = func() time.Time { return now }

	_, err := m.Current(context.Background(), "old")
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Empty(t, store.sessions)

	_, err = m.Current(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = m.Current(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_LogoutAndForceLogout(t *testing.T) {
	store := newFakeStore()
	future := time.Now().Add(time.Hour)
	store.sessions["a"] = &Session{ID: "a", ExpiresAt: future}
	store.sessions["b"] = &Session{ID: "b", ExpiresAt: future}
	m := NewManager(store, &fakeAuth{}, time.Hour)

	require.NoError(t, m.Logout(context.Background(), "a"))
	m.ForceLogout(context.Background(), "b")
	m.ForceLogout(context.Background(), "")

	assert.Empty(t, store.sessions)
}

func TestManager_Sweep(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.sessions["live"] = &Session{ID: "live", ExpiresAt: now.Add(time.Minute)}
	store.sessions["dead"] = &Session{ID: "dead", ExpiresAt: now.Add(-time.Minute)}
	m := NewManager(store, &fakeAuth{}, time.Hour)
	m.now = func() time.Time { return now }

	n, err := m.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Contains(t, store.sessions, "live")
}

func TestContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	s := &Session{ID: "x"}
	assert.Same(t, s, FromContext(WithSession(context.Background(), s)))
}
