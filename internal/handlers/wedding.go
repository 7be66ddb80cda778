package handlers

import (
	"context"
	"errors"
	"net/http"

	"weddingpress-web/internal/apiclient"
	"weddingpress-web/internal/forms"
	"weddingpress-web/internal/invitation"
	"weddingpress-web/internal/models"
)

// WeddingStore reads and saves the wedding settings
type WeddingStore interface {
	Get(ctx context.Context) (*models.Wedding, error)
	Update(ctx context.Context, body any) error
}

// WeddingHandler serves the wedding settings form
type WeddingHandler struct {
	store WeddingStore
	def   forms.Definition[models.Wedding]
	pages *Pages
}

// NewWeddingHandler creates a new wedding handler
func NewWeddingHandler(store WeddingStore, pages *Pages) *WeddingHandler {
	return &WeddingHandler{
		store: store,
		def:   forms.WeddingDefinition(store),
		pages: pages,
	}
}

func weddingFields() []FieldSpec {
	templates := make([]Option, 0, len(invitation.Templates()))
	for _, t := range invitation.Templates() {
		templates = append(templates, Option{Value: t.String(), Label: t.Label()})
	}
	return []FieldSpec{
		{Name: "wedding_title", Label: "Wedding title", Type: "text"},
		{Name: "template", Label: "Template", Type: "select", Options: templates},
		{Name: "theme_color", Label: "Theme color", Type: "color"},
		{Name: "cover_image_url", Label: "Cover image", Type: "url", Upload: true},
		{Name: "music_url", Label: "Background music", Type: "url", Upload: true},
		{Name: "groom_name", Label: "Groom name", Type: "text"},
		{Name: "groom_photo_url", Label: "Groom photo", Type: "url", Upload: true},
		{Name: "groom_bio", Label: "Groom bio", Type: "textarea"},
		{Name: "bride_name", Label: "Bride name", Type: "text"},
		{Name: "bride_photo_url", Label: "Bride photo", Type: "url", Upload: true},
		{Name: "bride_bio", Label: "Bride bio", Type: "textarea"},
		{Name: "show_events", Label: "Show events", Type: "checkbox"},
		{Name: "show_story", Label: "Show love story", Type: "checkbox"},
		{Name: "show_gallery", Label: "Show gallery", Type: "checkbox"},
		{Name: "show_gifts", Label: "Show digital gifts", Type: "checkbox"},
		{Name: "show_guest_book", Label: "Show guestbook", Type: "checkbox"},
	}
}

func (h *WeddingHandler) render(w http.ResponseWriter, r *http.Request, status int, st forms.State) {
	renderForm(h.pages, w, r, status, formPage{
		Title:  "Wedding settings",
		Nav:    "wedding",
		Action: "/admin/wedding",
		Cancel: "/admin",
		Fields: weddingFields(),
	}, st)
}

// Edit handles GET /admin/wedding
func (h *WeddingHandler) Edit(w http.ResponseWriter, r *http.Request) {
	wedding, err := h.store.Get(r.Context())
	if err != nil {
		h.pages.BackendFailed(w, r, err, "/admin", "Failed to load wedding settings")
		return
	}

	d := forms.NewDialog(h.def, nil)
	if err := d.Open(wedding); err != nil {
		h.pages.Redirect(w, r, "/admin", "error", err.Error())
		return
	}
	h.render(w, r, http.StatusOK, d.State())
}

// Save handles POST /admin/wedding. Every field is posted, so the stored
// wedding is not fetched first.
func (h *WeddingHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.pages.Redirect(w, r, "/admin/wedding", "error", "Invalid form")
		return
	}

	d := forms.NewDialog(h.def, nil)
	if err := d.Open(&models.Wedding{}); err != nil {
		h.pages.Redirect(w, r, "/admin", "error", err.Error())
		return
	}
	if err := d.Fill(forms.FromPost(d.Schema(), r.PostForm)); err != nil {
		h.pages.Redirect(w, r, "/admin/wedding", "error", err.Error())
		return
	}

	err := d.Submit(r.Context())
	switch {
	case err == nil:
		h.pages.Redirect(w, r, "/admin/wedding", "success", "Wedding settings saved")
	case errors.Is(err, forms.ErrInvalid):
		h.render(w, r, http.StatusUnprocessableEntity, d.State())
	case errors.Is(err, apiclient.ErrUnauthorized):
		h.pages.BackendFailed(w, r, err, "/admin/wedding", "")
	default:
		h.render(w, r, http.StatusBadGateway, d.State())
	}
}
