package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"weddingpress-web/internal/apiclient"
	"weddingpress-web/internal/invitation"
	"weddingpress-web/internal/models"
	"weddingpress-web/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// DefaultThemeColor is used when the wedding has no theme color
const DefaultThemeColor = "#333333"

// InvitationSource is the public side of the backend
type InvitationSource interface {
	InvitationBySlug(ctx context.Context, slug string) (*models.InvitationData, error)
	GuestBook(ctx context.Context, weddingID uint) ([]models.PublicGuestBookMessage, error)
	invitation.RSVPPoster
	invitation.GuestBookPoster
}

// GuestBookRefresher asks open pages of a wedding to refetch the guestbook
type GuestBookRefresher interface {
	Refresh(ctx context.Context, weddingID uint)
}

// RSVPView is the RSVP section of a rendered page
type RSVPView struct {
	Submitted bool
	Recorded  int
	Values    validation.Values
	Errors    validation.Errors
	Max       int
}

// GuestBookView is the guestbook section of a rendered page
type GuestBookView struct {
	Values     validation.Values
	Errors     validation.Errors
	LoadFailed bool
	Messages   []models.PublicGuestBookMessage
}

// InvitationHandler serves the public invitation page of a guest
type InvitationHandler struct {
	source  InvitationSource
	refresh GuestBookRefresher
	pages   *Pages
}

// NewInvitationHandler creates a new invitation handler
func NewInvitationHandler(source InvitationSource, refresh GuestBookRefresher, pages *Pages) *InvitationHandler {
	return &InvitationHandler{
		source:  source,
		refresh: refresh,
		pages:   pages,
	}
}

// Routes registers the public routes under /u/{slug}; extra adds routes under the same prefix
func (h *InvitationHandler) Routes(r chi.Router, extra ...func(chi.Router)) {
	r.Route("/u/{slug}", func(r chi.Router) {
		r.Get("/", h.Show)
		r.Post("/rsvp", h.RSVP)
		r.Post("/guestbook", h.PostGuestBook)
		r.Get("/guestbook", h.GuestBook)
		for _, fn := range extra {
			fn(r)
		}
	})
}

// load fetches the guest's invitation; false means a response was already written
func (h *InvitationHandler) load(w http.ResponseWriter, r *http.Request) (*models.InvitationData, bool) {
	slug := chi.URLParam(r, "slug")
	data, err := h.source.InvitationBySlug(r.Context(), slug)
	if err == nil {
		return data, true
	}

	if errors.Is(err, apiclient.ErrNotFound) {
		log.Info().Str("slug", slug).Msg("Invitation not found")
		h.pages.RenderData(w, "not_found.html", http.StatusNotFound, map[string]any{
			"Meta": invitation.NotFoundMetadata,
		})
		return nil, false
	}

	log.Error().Err(err).Str("slug", slug).Msg("Failed to load invitation")
	h.pages.RenderData(w, "not_found.html", http.StatusBadGateway, map[string]any{
		"Meta":    invitation.Metadata{Title: "Undangan Gagal Dimuat"},
		"Message": "Undangan tidak dapat dimuat saat ini. Silakan coba lagi nanti.",
	})
	return nil, false
}

type pageState struct {
	opened    bool
	rsvp      *RSVPView
	guestbook *GuestBookView
}

// render draws the invitation. Sections only render once the guest opened
// the cover, so nothing else is fetched before that.
func (h *InvitationHandler) render(w http.ResponseWriter, r *http.Request, status int, data *models.InvitationData, st pageState) {
	ctx := r.Context()
	wedding := data.Wedding
	slug := chi.URLParam(r, "slug")

	view := invitation.NewView(wedding.MusicURL)
	if st.opened {
		view.OpenInvitation()
	}

	plan := invitation.Plan(wedding)
	sections := make(map[string]bool, len(plan))
	for _, s := range plan {
		sections[string(s)] = true
	}

	stories := make([]models.Story, len(wedding.Stories))
	copy(stories, wedding.Stories)
	sort.SliceStable(stories, func(i, j int) bool { return stories[i].Order < stories[j].Order })

	theme := strings.TrimSpace(wedding.ThemeColor)
	if theme == "" {
		theme = DefaultThemeColor
	}

	rsvp := st.rsvp
	if rsvp == nil {
		state := invitation.NewRSVP(data.Guest, h.source)
		rsvp = &RSVPView{
			Submitted: state.Submitted(),
			Recorded:  state.Recorded(),
			Values:    state.Prefill(),
		}
	}
	if rsvp.Errors == nil {
		rsvp.Errors = validation.Errors{}
	}
	rsvp.Max = invitation.MaxPartySize

	gb := st.guestbook
	if gb == nil {
		gb = &GuestBookView{Values: validation.Values{"message": ""}}
	}
	if gb.Errors == nil {
		gb.Errors = validation.Errors{}
	}
	if st.opened && invitation.Has(plan, invitation.SectionGuestBook) {
		msgs, err := h.source.GuestBook(ctx, wedding.ID)
		if err != nil {
			log.Error().Err(err).Uint("wedding_id", wedding.ID).Msg("Failed to load guestbook")
			gb.LoadFailed = true
		} else {
			gb.Messages = invitation.Visible(msgs)
		}
	}

	tmpl := invitation.ParseTemplate(wedding.Template)
	h.pages.Render(w, r, tmpl.Page(), status, map[string]any{
		"Meta":         invitation.MetadataFor(*data),
		"ThemeColor":   theme,
		"Template":     tmpl.String(),
		"Opened":       view.Phase() == invitation.Opened,
		"MusicURL":     wedding.MusicURL,
		"AudioPlaying": view.AudioPlaying(),
		"Wedding":      wedding,
		"Guest":        data.Guest,
		"Sections":     sections,
		"Stories":      stories,
		"Slug":         slug,
		"RSVP":         rsvp,
		"GuestBook":    gb,
		"FeedPath":     fmt.Sprintf("/u/%s/feed", slug),
		"OpenURL":      fmt.Sprintf("/u/%s?open=1", slug),
	})
}

func openedURL(slug, section string) string {
	return fmt.Sprintf("/u/%s?open=1#%s", slug, section)
}

// Show handles GET /u/{slug}; ?open=1 skips the cover
func (h *InvitationHandler) Show(w http.ResponseWriter, r *http.Request) {
	data, ok := h.load(w, r)
	if !ok {
		return
	}
	opened := r.URL.Query().Get("open") == "1"
	h.render(w, r, http.StatusOK, data, pageState{opened: opened})
}

// RSVP handles POST /u/{slug}/rsvp
func (h *InvitationHandler) RSVP(w http.ResponseWriter, r *http.Request) {
	data, ok := h.load(w, r)
	if !ok {
		return
	}
	slug := chi.URLParam(r, "slug")
	if err := r.ParseForm(); err != nil {
		h.pages.Redirect(w, r, openedURL(slug, "rsvp"), "error", "Gagal Menyimpan RSVP")
		return
	}

	values := validation.Values{
		"attendance_status": r.PostForm.Get("attendance_status"),
		"total_attendance":  r.PostForm.Get("total_attendance"),
	}
	rsvp := invitation.NewRSVP(data.Guest, h.source)
	errs, err := rsvp.Submit(r.Context(), values)
	switch {
	case errors.Is(err, invitation.ErrAlreadySubmitted):
		h.pages.Redirect(w, r, openedURL(slug, "rsvp"), "error", "Anda sudah mengirim konfirmasi kehadiran.")
	case err != nil:
		log.Error().Err(err).Uint("guest_id", data.Guest.ID).Msg("Failed to save rsvp")
		h.pages.Flash(w, r, "error", "Gagal Menyimpan RSVP: "+apiclient.Message(err, "Silakan coba lagi."))
		h.render(w, r, http.StatusBadGateway, data, pageState{
			opened: true,
			rsvp:   &RSVPView{Values: values},
		})
	case len(errs) > 0:
		h.render(w, r, http.StatusUnprocessableEntity, data, pageState{
			opened: true,
			rsvp:   &RSVPView{Values: values, Errors: errs},
		})
	default:
		log.Info().Uint("guest_id", data.Guest.ID).Int("total_attendance", rsvp.Recorded()).Msg("RSVP saved")
		h.pages.Redirect(w, r, openedURL(slug, "rsvp"), "success", "RSVP Berhasil Disimpan")
	}
}

// PostGuestBook handles POST /u/{slug}/guestbook
func (h *InvitationHandler) PostGuestBook(w http.ResponseWriter, r *http.Request) {
	data, ok := h.load(w, r)
	if !ok {
		return
	}
	slug := chi.URLParam(r, "slug")
	if err := r.ParseForm(); err != nil {
		h.pages.Redirect(w, r, openedURL(slug, "guestbook"), "error", "Gagal Mengirim Ucapan")
		return
	}

	message := strings.TrimSpace(r.PostForm.Get("message"))
	gb := invitation.NewGuestBook(data.Guest.ID, data.Wedding.ID, h.source, h.refresh.Refresh)
	errs, err := gb.Submit(r.Context(), message)
	switch {
	case err != nil:
		log.Error().Err(err).Uint("guest_id", data.Guest.ID).Msg("Failed to post guestbook message")
		h.pages.Flash(w, r, "error", "Gagal Mengirim Ucapan: "+apiclient.Message(err, "Silakan coba lagi."))
		h.render(w, r, http.StatusBadGateway, data, pageState{
			opened:    true,
			guestbook: &GuestBookView{Values: validation.Values{"message": message}},
		})
	case len(errs) > 0:
		h.render(w, r, http.StatusUnprocessableEntity, data, pageState{
			opened:    true,
			guestbook: &GuestBookView{Values: validation.Values{"message": message}, Errors: errs},
		})
	default:
		h.pages.Redirect(w, r, openedURL(slug, "guestbook"), "success",
			"Ucapan Berhasil Dikirim. Terima kasih! Ucapan Anda akan tampil setelah disetujui.")
	}
}

// GuestBook handles GET /u/{slug}/guestbook
func (h *InvitationHandler) GuestBook(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	data, err := h.source.InvitationBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, apiclient.ErrNotFound) {
			respondError(w, "Invitation not found", http.StatusNotFound)
			return
		}
		respondError(w, "Failed to load invitation", http.StatusBadGateway)
		return
	}

	msgs, err := h.source.GuestBook(r.Context(), data.Wedding.ID)
	if err != nil {
		log.Error().Err(err).Uint("wedding_id", data.Wedding.ID).Msg("Failed to load guestbook")
		respondError(w, "Failed to load guestbook", http.StatusBadGateway)
		return
	}
	respondJSON(w, invitation.Visible(msgs), http.StatusOK)
}
