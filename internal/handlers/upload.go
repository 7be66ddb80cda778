package handlers

import (
	"errors"
	"net/http"

	"weddingpress-web/internal/apiclient"
	"weddingpress-web/internal/services"

	"github.com/rs/zerolog/log"
)

const maxUploadSize = 50 << 20

// UploadHandler handles media uploads from the admin forms
type UploadHandler struct {
	uploader services.Uploader
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploader services.Uploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

// Upload handles POST /admin/api/upload
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, "File is too large", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	url, err := h.uploader.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		log.Error().
			Err(err).
			Str("filename", header.Filename).
			Int64("size", header.Size).
			Msg("Upload failed")
		if errors.Is(err, apiclient.ErrUnauthorized) {
			respondError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		respondError(w, apiclient.Message(err, "Upload Gagal"), http.StatusBadGateway)
		return
	}

	log.Info().Str("filename", header.Filename).Str("url", url).Msg("File uploaded")
	respondJSON(w, MessageResponse{Message: "Upload Berhasil", URL: url}, http.StatusCreated)
}
