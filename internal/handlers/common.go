package handlers

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"weddingpress-web/internal/apiclient"
	"weddingpress-web/internal/middleware"
	"weddingpress-web/internal/session"
	"weddingpress-web/internal/views"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse represents a plain confirmation
type MessageResponse struct {
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, ErrorResponse{Error: message}, statusCode)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, body any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// FlashMessage is a one-shot toast stored in the cookie session
type FlashMessage struct {
	Type    string
	Message string
}

func init() {
	gob.Register(FlashMessage{})
}

// GetFlash pops the flashes of a cookie session; the caller saves the session
func GetFlash(s *sessions.Session) []FlashMessage {
	var out []FlashMessage
	for _, f := range s.Flashes() {
		if msg, ok := f.(FlashMessage); ok {
			out = append(out, msg)
		}
	}
	return out
}

// Pages renders HTML pages with the cookie session's flashes and CSRF field
type Pages struct {
	Templates  *views.TemplateCache
	Cookies    sessions.Store
	CookieName string
}

// Flash queues a message for the next page
func (p *Pages) Flash(w http.ResponseWriter, r *http.Request, typ, message string) {
	s, _ := p.Cookies.Get(r, p.CookieName)
	s.AddFlash(FlashMessage{Type: typ, Message: message})
	if err := s.Save(r, w); err != nil {
		log.Error().Err(err).Msg("Failed to save flash")
	}
}

// Redirect flashes a message and sends the browser to url
func (p *Pages) Redirect(w http.ResponseWriter, r *http.Request, url, typ, message string) {
	if message != "" {
		p.Flash(w, r, typ, message)
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// Render executes a page. data may be nil.
func (p *Pages) Render(w http.ResponseWriter, r *http.Request, name string, status int, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	s, _ := p.Cookies.Get(r, p.CookieName)
	data["Flashes"] = GetFlash(s)
	if err := s.Save(r, w); err != nil {
		log.Error().Err(err).Msg("Failed to save session")
	}

	data["CsrfField"] = csrf.TemplateField(r)
	data["CsrfToken"] = csrf.Token(r)
	if _, ok := data["Nav"]; !ok {
		data["Nav"] = ""
	}
	if sess := session.FromContext(r.Context()); sess != nil {
		data["User"] = &sess.User
	}

	p.render(w, name, status, data)
}

// RenderData executes a page with a typed view model
func (p *Pages) RenderData(w http.ResponseWriter, name string, status int, data any) {
	p.render(w, name, status, data)
}

func (p *Pages) render(w http.ResponseWriter, name string, status int, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var buf bytes.Buffer
	if err := p.Templates.Render(&buf, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("Failed to render page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// BackendFailed handles an error from the REST backend on a page request.
// A rejected token sends the admin back to the login page.
func (p *Pages) BackendFailed(w http.ResponseWriter, r *http.Request, err error, back, fallback string) {
	if errors.Is(err, apiclient.ErrUnauthorized) {
		p.Redirect(w, r, middleware.LoginPath, "error", "Your session has expired, please log in again")
		return
	}
	p.Redirect(w, r, back, "error", apiclient.Message(err, fallback))
}

// idParam parses the {id} URL parameter
func idParam(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// formIDs parses every posted ids value, skipping malformed ones
func formIDs(r *http.Request) []uint {
	var ids []uint
	for _, raw := range r.PostForm["ids"] {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}
