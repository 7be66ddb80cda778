package handlers

import (
	"context"
	"errors"
	"net/http"

	"weddingpress-web/internal/forms"
	"weddingpress-web/internal/models"

	"github.com/go-chi/chi/v5"
)

// GuestBookModerationHandler approves and unapproves guestbook messages
type GuestBookModerationHandler struct {
	def   forms.Definition[models.AdminGuestBookEntry]
	pages *Pages
	live  *LiveRegistry

	// moderated runs after a status change, e.g. to refresh open invitation pages
	moderated func(ctx context.Context)
}

// NewGuestBookModerationHandler creates a new moderation handler
func NewGuestBookModerationHandler(writer forms.StatusWriter, pages *Pages, live *LiveRegistry, moderated func(ctx context.Context)) *GuestBookModerationHandler {
	return &GuestBookModerationHandler{
		def:       forms.GuestBookStatusDefinition(writer),
		pages:     pages,
		live:      live,
		moderated: moderated,
	}
}

// Routes adds the status route under /admin/guestbook
func (h *GuestBookModerationHandler) Routes(r chi.Router) {
	r.Post("/{id}/status", h.SetStatus)
}

// SetStatus handles POST /admin/guestbook/{id}/status
func (h *GuestBookModerationHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.pages.Redirect(w, r, "/admin/guestbook", "error", "Invalid form")
		return
	}

	d := forms.NewDialog(h.def, func(ctx context.Context) {
		h.live.Mutated(ctx, "guestbook")
		if h.moderated != nil {
			h.moderated(ctx)
		}
	})
	if err := d.Open(&models.AdminGuestBookEntry{ID: id}); err != nil {
		h.pages.Redirect(w, r, "/admin/guestbook", "error", err.Error())
		return
	}
	if err := d.Fill(forms.FromPost(d.Schema(), r.PostForm)); err != nil {
		h.pages.Redirect(w, r, "/admin/guestbook", "error", err.Error())
		return
	}

	err := d.Submit(r.Context())
	switch {
	case err == nil:
		message := "Message moved back to pending"
		if models.GuestBookStatus(r.PostForm.Get("status")) == models.GuestBookApproved {
			message = "Message approved"
		}
		h.pages.Redirect(w, r, "/admin/guestbook", "success", message)
	case errors.Is(err, forms.ErrInvalid):
		h.pages.Redirect(w, r, "/admin/guestbook", "error", "Unknown status")
	default:
		h.pages.BackendFailed(w, r, err, "/admin/guestbook", d.State().Toast)
	}
}
