package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"weddingpress-web/internal/apiclient"
	"weddingpress-web/internal/session"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"
)

// SessionIDKey is the cookie session value holding the admin session ID
const SessionIDKey = "sid"

// LoginPath is where unauthenticated page requests are sent
const LoginPath = "/admin/login"

// SessionLookup resolves a session ID to a live session
type SessionLookup interface {
	Current(ctx context.Context, id string) (*session.Session, error)
}

// AuthMiddleware loads the admin session from the cookie and puts it and its
// bearer token into the request context
func AuthMiddleware(store sessions.Store, cookieName string, lookup SessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := SessionID(store, cookieName, r)
			s, err := lookup.Current(r.Context(), id)
			if err != nil {
				unauthorized(w, r)
				return
			}

			ctx := session.WithSession(r.Context(), s)
			ctx = apiclient.WithToken(ctx, s.Token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionID reads the admin session ID from the cookie, or ""
func SessionID(store sessions.Store, cookieName string, r *http.Request) string {
	cookie, err := store.Get(r, cookieName)
	if err != nil {
		return ""
	}
	id, _ := cookie.Values[SessionIDKey].(string)
	return id
}

// ForceLogout returns the hook the API client calls on a 401: it ends the
// session found in ctx so the next request goes back to the login page
func ForceLogout(mgr interface {
	ForceLogout(ctx context.Context, id string)
}) func(ctx context.Context) {
	return func(ctx context.Context) {
		s := session.FromContext(ctx)
		if s == nil {
			return
		}
		mgr.ForceLogout(context.WithoutCancel(ctx), s.ID)
	}
}

// WantsJSON reports whether the caller expects a JSON error instead of a page
func WantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/admin/api/")
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	if WantsJSON(r) {
		respondError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	log.Debug().Str("path", r.URL.Path).Msg("Redirecting to login")
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
