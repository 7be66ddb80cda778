package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"weddingpress-web/internal/apiclient"
	"weddingpress-web/internal/middleware"
	"weddingpress-web/internal/session"

	"github.com/rs/zerolog/log"
)

// SessionManager is the part of session.Manager the login pages use
type SessionManager interface {
	Login(ctx context.Context, email, password string) (*session.Session, error)
	Current(ctx context.Context, id string) (*session.Session, error)
	Logout(ctx context.Context, id string) error
}

// AuthHandler handles admin login and logout
type AuthHandler struct {
	sessions SessionManager
	pages    *Pages
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessions SessionManager, pages *Pages) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		pages:    pages,
	}
}

// LoginPage handles GET /admin/login
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	id := middleware.SessionID(h.pages.Cookies, h.pages.CookieName, r)
	if id != "" {
		if _, err := h.sessions.Current(r.Context(), id); err == nil {
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
			return
		}
	}
	h.pages.Render(w, r, "login.html", http.StatusOK, map[string]any{
		"Title": "Login",
		"Email": "",
	})
}

// Login handles POST /admin/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.pages.Redirect(w, r, middleware.LoginPath, "error", "Invalid form")
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")

	fail := func(status int, message string) {
		h.pages.Flash(w, r, "error", message)
		h.pages.Render(w, r, "login.html", status, map[string]any{
			"Title": "Login",
			"Email": email,
		})
	}

	if email == "" || password == "" {
		fail(http.StatusUnprocessableEntity, "Email and password are required")
		return
	}

	s, err := h.sessions.Login(r.Context(), email, password)
	if err != nil {
		log.Info().Err(err).Str("email", email).Msg("Admin login failed")
		if errors.Is(err, apiclient.ErrUnauthorized) {
			fail(http.StatusUnauthorized, apiclient.Message(err, "Invalid email or password"))
			return
		}
		fail(http.StatusBadGateway, apiclient.Message(err, "Login failed, please try again"))
		return
	}

	cookie, _ := h.pages.Cookies.Get(r, h.pages.CookieName)
	cookie.Values[middleware.SessionIDKey] = s.ID
	h.pages.Redirect(w, r, "/admin", "success", "Welcome back, "+s.User.Name)
}

// Logout handles POST /admin/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	id := middleware.SessionID(h.pages.Cookies, h.pages.CookieName, r)
	if id != "" {
		if err := h.sessions.Logout(r.Context(), id); err != nil {
			log.Error().Err(err).Msg("Failed to delete session")
		}
	}

	cookie, _ := h.pages.Cookies.Get(r, h.pages.CookieName)
	delete(cookie.Values, middleware.SessionIDKey)
	h.pages.Redirect(w, r, middleware.LoginPath, "success", "You have been logged out")
}
