package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"weddingpress-web/internal/apiclient"
	"weddingpress-web/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInvitations struct {
	mu         sync.Mutex
	data       map[string]models.InvitationData
	loadErr    error
	messages   []models.PublicGuestBookMessage
	guestbooks int
	rsvps      []int
	posts      []string
	postErr    error
}

func (f *fakeInvitations) InvitationBySlug(_ context.Context, slug string) (*models.InvitationData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	data, ok := f.data[slug]
	if !ok {
		return nil, &apiclient.Error{Status: http.StatusNotFound, Message: "guest not found"}
	}
	return &data, nil
}

func (f *fakeInvitations) GuestBook(_ context.Context, _ uint) ([]models.PublicGuestBookMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.guestbooks++
	return f.messages, nil
}

func (f *fakeInvitations) PostRSVP(_ context.Context, _ uint, total int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postErr != nil {
		return f.postErr
	}
	f.rsvps = append(f.rsvps, total)
	return nil
}

func (f *fakeInvitations) PostGuestBook(_ context.Context, _ uint, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postErr != nil {
		return f.postErr
	}
	f.posts = append(f.posts, message)
	return nil
}

type fakeRefresher struct {
	mu  sync.Mutex
	ids []uint
}

func (f *fakeRefresher) Refresh(_ context.Context, weddingID uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, weddingID)
}

func newInvitationFixture() *fakeInvitations {
	return &fakeInvitations{
		data: map[string]models.InvitationData{
			"budi-1a2b": {
				Guest: models.Guest{ID: 3, Name: "Budi", Slug: "budi-1a2b", Group: "Keluarga"},
				Wedding: models.Wedding{
					ID:            7,
					WeddingTitle:  "Andi & Sari",
					Template:      "classic",
					ShowGuestBook: true,
					GroomBride:    models.GroomBride{GroomName: "Andi", BrideName: "Sari"},
				},
			},
			"citra-3c4d": {
				Guest:   models.Guest{ID: 4, Name: "Citra", Slug: "citra-3c4d", IsRSVP: true, TotalAttendance: 2},
				Wedding: models.Wedding{ID: 7, ThemeColor: "#b76e79", GroomBride: models.GroomBride{GroomName: "Andi", BrideName: "Sari"}},
			},
		},
		messages: []models.PublicGuestBookMessage{
			{GuestName: "Dewi", Message: "Selamat menempuh hidup baru", Status: models.GuestBookApproved, CreatedAt: time.Now()},
			{GuestName: "Eko", Message: "Masih menunggu persetujuan", Status: models.GuestBookPending, CreatedAt: time.Now()},
			{GuestName: "Fajar", Message: "Semoga sakinah", CreatedAt: time.Now()},
		},
	}
}

func newInvitationRouter(t *testing.T, source *fakeInvitations, refresh *fakeRefresher) http.Handler {
	t.Helper()
	h := NewInvitationHandler(source, refresh, newTestPages(t))
	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func TestInvitationHandler_ShowCover(t *testing.T) {
	source := newInvitationFixture()
	router := newInvitationRouter(t, source, &fakeRefresher{})

	w := serve(router, httptest.NewRequest(http.MethodGet, "/u/budi-1a2b", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Undangan Pernikahan Andi &amp; Sari")
	assert.Contains(t, body, "Budi")
	assert.Contains(t, body, "Buka Undangan")
	assert.Contains(t, body, "/u/budi-1a2b?open=1")
	assert.NotContains(t, body, "Konfirmasi Kehadiran")
	assert.Zero(t, source.guestbooks)
}

func TestInvitationHandler_ShowOpened(t *testing.T) {
	source := newInvitationFixture()
	router := newInvitationRouter(t, source, &fakeRefresher{})

	w := serve(router, httptest.NewRequest(http.MethodGet, "/u/budi-1a2b?open=1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "#333333")
	assert.Contains(t, body, "template-classic")
	assert.Contains(t, body, "Konfirmasi Kehadiran")
	assert.Contains(t, body, "Buku Tamu")
	assert.Contains(t, body, "Selamat menempuh hidup baru")
	assert.Contains(t, body, "Semoga sakinah")
	assert.NotContains(t, body, "Masih menunggu persetujuan")
	assert.Contains(t, body, "/u/budi-1a2b/feed")
	assert.Equal(t, 1, source.guestbooks)
}

func TestInvitationHandler_ShowAnsweredGuest(t *testing.T) {
	router := newInvitationRouter(t, newInvitationFixture(), &fakeRefresher{})

	w := serve(router, httptest.NewRequest(http.MethodGet, "/u/citra-3c4d?open=1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "#b76e79")
	assert.Contains(t, body, "Terima Kasih!")
	assert.Contains(t, body, "<strong>2</strong>")
	assert.NotContains(t, body, "Kirim Konfirmasi")
	assert.NotContains(t, body, "Buku Tamu")
}

func TestInvitationHandler_UnknownSlug(t *testing.T) {
	router := newInvitationRouter(t, newInvitationFixture(), &fakeRefresher{})

	w := serve(router, httptest.NewRequest(http.MethodGet, "/u/nobody", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Tautan undangan ini tidak valid")
}

func TestInvitationHandler_BackendDown(t *testing.T) {
	source := newInvitationFixture()
	source.loadErr = &apiclient.Error{Status: http.StatusServiceUnavailable}
	router := newInvitationRouter(t, source, &fakeRefresher{})

	w := serve(router, httptest.NewRequest(http.MethodGet, "/u/budi-1a2b", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Undangan tidak dapat dimuat saat ini")
}

func TestInvitationHandler_RSVP(t *testing.T) {
	t.Run("missing answer", func(t *testing.T) {
		source := newInvitationFixture()
		router := newInvitationRouter(t, source, &fakeRefresher{})

		w := serve(router, postForm("/u/budi-1a2b/rsvp", url.Values{"total_attendance": {"2"}}))

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "Please choose whether you will attend")
		assert.Empty(t, source.rsvps)
	})

	t.Run("party too large", func(t *testing.T) {
		source := newInvitationFixture()
		router := newInvitationRouter(t, source, &fakeRefresher{})

		w := serve(router, postForm("/u/budi-1a2b/rsvp", url.Values{
			"attendance_status": {"attending"},
			"total_attendance":  {"12"},
		}))

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "At most 10 people")
		assert.Contains(t, w.Body.String(), `value="12"`)
		assert.Empty(t, source.rsvps)
	})

	t.Run("attending", func(t *testing.T) {
		source := newInvitationFixture()
		router := newInvitationRouter(t, source, &fakeRefresher{})

		w := serve(router, postForm("/u/budi-1a2b/rsvp", url.Values{
			"attendance_status": {"attending"},
			"total_attendance":  {"2"},
		}))

		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/u/budi-1a2b?open=1#rsvp", w.Header().Get("Location"))
		assert.Equal(t, []int{2}, source.rsvps)
	})

	t.Run("not attending records zero", func(t *testing.T) {
		source := newInvitationFixture()
		router := newInvitationRouter(t, source, &fakeRefresher{})

		w := serve(router, postForm("/u/budi-1a2b/rsvp", url.Values{
			"attendance_status": {"tidak_hadir"},
			"total_attendance":  {"4"},
		}))

		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, []int{0}, source.rsvps)
	})

	t.Run("already answered", func(t *testing.T) {
		source := newInvitationFixture()
		router := newInvitationRouter(t, source, &fakeRefresher{})

		w := serve(router, postForm("/u/citra-3c4d/rsvp", url.Values{
			"attendance_status": {"attending"},
			"total_attendance":  {"3"},
		}))

		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Empty(t, source.rsvps)
	})

	t.Run("backend failure keeps the answer", func(t *testing.T) {
		source := newInvitationFixture()
		source.postErr = &apiclient.Error{Status: http.StatusInternalServerError, Message: "server sibuk"}
		router := newInvitationRouter(t, source, &fakeRefresher{})

		w := serve(router, postForm("/u/budi-1a2b/rsvp", url.Values{
			"attendance_status": {"attending"},
			"total_attendance":  {"3"},
		}))

		require.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "Gagal Menyimpan RSVP: server sibuk")
		assert.Contains(t, w.Body.String(), `value="3"`)
	})
}

func TestInvitationHandler_PostGuestBook(t *testing.T) {
	t.Run("too short", func(t *testing.T) {
		source := newInvitationFixture()
		refresh := &fakeRefresher{}
		router := newInvitationRouter(t, source, refresh)

		w := serve(router, postForm("/u/budi-1a2b/guestbook", url.Values{"message": {"hi"}}))

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "Message must be at least 5 characters.")
		assert.Empty(t, source.posts)
		assert.Empty(t, refresh.ids)
	})

	t.Run("posted and feed refreshed", func(t *testing.T) {
		source := newInvitationFixture()
		refresh := &fakeRefresher{}
		router := newInvitationRouter(t, source, refresh)

		w := serve(router, postForm("/u/budi-1a2b/guestbook", url.Values{"message": {"  Bahagia selalu  "}}))

		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/u/budi-1a2b?open=1#guestbook", w.Header().Get("Location"))
		assert.Equal(t, []string{"Bahagia selalu"}, source.posts)
		assert.Equal(t, []uint{7}, refresh.ids)
	})
}

func TestInvitationHandler_GuestBookJSON(t *testing.T) {
	router := newInvitationRouter(t, newInvitationFixture(), &fakeRefresher{})

	w := serve(router, httptest.NewRequest(http.MethodGet, "/u/budi-1a2b/guestbook", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var messages []models.PublicGuestBookMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &messages))
	require.Len(t, messages, 2)
	assert.Equal(t, "Dewi", messages[0].GuestName)
	assert.Equal(t, "Fajar", messages[1].GuestName)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/u/nobody/guestbook", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
