package handlers

import (
	"context"
	"errors"
	"net/http"

	"weddingpress-web/internal/apiclient"
	"weddingpress-web/internal/models"
	"weddingpress-web/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// feedUpgrader serves the public invitation pages, which may be embedded anywhere
var feedUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// FeedHub fans guestbook updates out to invitation pages
type FeedHub interface {
	Register(weddingID uint, conn services.Conn)
	Unregister(weddingID uint, conn services.Conn)
}

// InvitationLookup resolves a guest slug
type InvitationLookup interface {
	InvitationBySlug(ctx context.Context, slug string) (*models.InvitationData, error)
}

// WebSocketHandler serves the guestbook feed of the public invitation page
type WebSocketHandler struct {
	hub    FeedHub
	lookup InvitationLookup
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub FeedHub, lookup InvitationLookup) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		lookup: lookup,
	}
}

// Routes adds the feed route under /u/{slug}
func (h *WebSocketHandler) Routes(r chi.Router) {
	r.Get("/feed", h.HandleWebSocket)
}

// HandleWebSocket handles GET /u/{slug}/feed. The page only listens; the hub
// pushes the visible guestbook right away and after every refresh.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	data, err := h.lookup.InvitationBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, apiclient.ErrNotFound) {
			respondError(w, "Invitation not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("slug", slug).Msg("Failed to load invitation for feed")
		respondError(w, "Failed to load invitation", http.StatusBadGateway)
		return
	}
	if !data.Wedding.ShowGuestBook {
		respondError(w, "Guestbook is disabled", http.StatusNotFound)
		return
	}

	conn, err := feedUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	weddingID := data.Wedding.ID
	h.hub.Register(weddingID, conn)
	defer h.hub.Unregister(weddingID, conn)

	log.Info().Uint("wedding_id", weddingID).Uint("guest_id", data.Guest.ID).Msg("WebSocket connection established")

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Uint("wedding_id", weddingID).Msg("WebSocket error")
			}
			return
		}
	}
}
