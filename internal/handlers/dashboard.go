package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"weddingpress-web/internal/apiclient"
	"weddingpress-web/internal/services"
)

// StatsSource computes the dashboard counters
type StatsSource interface {
	Dashboard(ctx context.Context) (*services.Stats, error)
}

// DashboardHandler serves the admin home page
type DashboardHandler struct {
	stats     StatsSource
	pages     *Pages
	publicURL string
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(stats StatsSource, pages *Pages, publicURL string) *DashboardHandler {
	return &DashboardHandler{
		stats:     stats,
		pages:     pages,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Show handles GET /admin
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Dashboard(r.Context())
	if errors.Is(err, apiclient.ErrUnauthorized) {
		h.pages.BackendFailed(w, r, err, "/admin", "")
		return
	}
	if stats == nil {
		stats = &services.Stats{}
	}

	h.pages.Render(w, r, "dashboard.html", http.StatusOK, map[string]any{
		"Title":          "Dashboard",
		"Nav":            "dashboard",
		"Stats":          stats,
		"StatsError":     err != nil,
		"InvitationBase": h.publicURL,
	})
}
