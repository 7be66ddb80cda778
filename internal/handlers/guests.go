package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"weddingpress-web/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const maxImportSize = 10 << 20

// GuestImporter uploads a guest spreadsheet to the backend
type GuestImporter interface {
	Import(ctx context.Context, filename string, file io.Reader) (*models.ImportResult, error)
}

// GuestImportHandler serves the spreadsheet import of the guest list
type GuestImportHandler struct {
	importer GuestImporter
	pages    *Pages
	live     *LiveRegistry
}

// NewGuestImportHandler creates a new guest import handler
func NewGuestImportHandler(importer GuestImporter, pages *Pages, live *LiveRegistry) *GuestImportHandler {
	return &GuestImportHandler{
		importer: importer,
		pages:    pages,
		live:     live,
	}
}

// Routes adds the import pages under /admin/guests
func (h *GuestImportHandler) Routes(r chi.Router) {
	r.Get("/import", h.Form)
	r.Post("/import", h.Import)
}

// Form handles GET /admin/guests/import
func (h *GuestImportHandler) Form(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, "import.html", http.StatusOK, map[string]any{
		"Title":  "Import guests",
		"Nav":    "guests",
		"Action": "/admin/guests/import",
		"Cancel": "/admin/guests",
	})
}

// Import handles POST /admin/guests/import
func (h *GuestImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		h.pages.Redirect(w, r, "/admin/guests/import", "error", "The file is too large or the form is invalid")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.pages.Redirect(w, r, "/admin/guests/import", "error", "Choose a file to import")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		h.pages.Redirect(w, r, "/admin/guests/import", "error", "Only .xlsx files can be imported")
		return
	}

	result, err := h.importer.Import(r.Context(), header.Filename, file)
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("Failed to import guests")
		h.pages.BackendFailed(w, r, err, "/admin/guests/import", "Failed to import guests")
		return
	}

	log.Info().Int("guests_added", result.GuestsAdded).Msg("Guests imported")
	h.live.Mutated(r.Context(), "guests")
	h.pages.Redirect(w, r, "/admin/guests", "success", fmt.Sprintf("%d tamu berhasil diimpor.", result.GuestsAdded))
}
