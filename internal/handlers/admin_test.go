package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"weddingpress-web/internal/apiclient"
	"weddingpress-web/internal/forms"
	"weddingpress-web/internal/models"
	"weddingpress-web/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStats struct {
	stats *services.Stats
	err   error
}

func (f *fakeStats) Dashboard(context.Context) (*services.Stats, error) {
	return f.stats, f.err
}

func TestDashboardHandler_Show(t *testing.T) {
	stats := &fakeStats{stats: &services.Stats{TotalGuests: 120, RSVPGuests: 45, TotalAttendance: 88, PendingGuestBook: 3}}
	h := NewDashboardHandler(stats, newTestPages(t), "https://undangan.example.com/")

	w := httptest.NewRecorder()
	h.Show(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<strong>120</strong>")
	assert.Contains(t, body, "<strong>88</strong>")
	assert.Contains(t, body, "https://undangan.example.com/u/")
}

func TestDashboardHandler_StatsFailure(t *testing.T) {
	stats := &fakeStats{err: errors.New("connection refused")}
	h := NewDashboardHandler(stats, newTestPages(t), "")

	w := httptest.NewRecorder()
	h.Show(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to load statistics")
}

type fakeWedding struct {
	wedding *models.Wedding
	saved   []any
	err     error
}

func (f *fakeWedding) Get(context.Context) (*models.Wedding, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.wedding, nil
}

func (f *fakeWedding) Update(_ context.Context, body any) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, body)
	return nil
}

func TestWeddingHandler_Edit(t *testing.T) {
	store := &fakeWedding{wedding: &models.Wedding{
		ID:           7,
		WeddingTitle: "Andi & Sari",
		Template:     "rustic",
		ShowEvents:   true,
	}}
	h := NewWeddingHandler(store, newTestPages(t))

	w := httptest.NewRecorder()
	h.Edit(w, httptest.NewRequest(http.MethodGet, "/admin/wedding", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `value="Andi &amp; Sari"`)
	assert.Contains(t, body, `<option value="rustic" selected>Rustic Nature</option>`)
	assert.Contains(t, body, `value="#000000"`)
	assert.Contains(t, body, `name="show_events" value="true" checked`)
}

func TestWeddingHandler_Save(t *testing.T) {
	t.Run("saves every field", func(t *testing.T) {
		store := &fakeWedding{}
		h := NewWeddingHandler(store, newTestPages(t))

		w := httptest.NewRecorder()
		h.Save(w, postForm("/admin/wedding", url.Values{
			"wedding_title": {"Andi & Sari"},
			"template":      {"luxury"},
			"theme_color":   {"#b76e79"},
			"groom_name":    {"Andi"},
			"bride_name":    {"Sari"},
			"show_events":   {"true"},
		}))

		require.Equal(t, http.StatusSeeOther, w.Code)
		require.Len(t, store.saved, 1)
		input, ok := store.saved[0].(forms.WeddingInput)
		require.True(t, ok)
		assert.Equal(t, "luxury", input.Template)
		assert.Equal(t, "Sari", input.GroomBride.BrideName)
		assert.True(t, input.ShowEvents)
		assert.False(t, input.ShowGuestBook)
	})

	t.Run("rejects an unknown template", func(t *testing.T) {
		store := &fakeWedding{}
		h := NewWeddingHandler(store, newTestPages(t))

		w := httptest.NewRecorder()
		h.Save(w, postForm("/admin/wedding", url.Values{
			"wedding_title": {"Andi & Sari"},
			"template":      {"gothic"},
		}))

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "Must be one of: modern, classic, rustic, luxury")
		assert.Empty(t, store.saved)
	})
}

type fakeModeration struct {
	calls map[uint]models.GuestBookStatus
}

func (f *fakeModeration) SetStatus(_ context.Context, id uint, status models.GuestBookStatus) error {
	f.calls[id] = status
	return nil
}

func TestGuestBookModerationHandler_SetStatus(t *testing.T) {
	writer := &fakeModeration{calls: map[uint]models.GuestBookStatus{}}
	live := NewLiveRegistry()
	var open counter
	_, remove := live.Add("guestbook", open.hit)
	defer remove()
	moderated := 0
	h := NewGuestBookModerationHandler(writer, newTestPages(t), live, func(context.Context) { moderated++ })
	r := chi.NewRouter()
	r.Route("/admin/guestbook", h.Routes)

	w := serve(r, postForm("/admin/guestbook/5/status", url.Values{"status": {"approved"}}))

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, models.GuestBookApproved, writer.calls[5])
	assert.Equal(t, 1, open.count())
	assert.Equal(t, 1, moderated)

	w = serve(r, postForm("/admin/guestbook/6/status", url.Values{"status": {"deleted"}}))
	require.Equal(t, http.StatusSeeOther, w.Code)
	_, called := writer.calls[6]
	assert.False(t, called)
	assert.Equal(t, 1, moderated)
}

type fakeImporter struct {
	filenames []string
}

func (f *fakeImporter) Import(_ context.Context, filename string, file io.Reader) (*models.ImportResult, error) {
	if _, err := io.ReadAll(file); err != nil {
		return nil, err
	}
	f.filenames = append(f.filenames, filename)
	return &models.ImportResult{GuestsAdded: 12}, nil
}

func TestGuestImportHandler_Import(t *testing.T) {
	importer := &fakeImporter{}
	live := NewLiveRegistry()
	var open counter
	_, remove := live.Add("guests", open.hit)
	defer remove()
	pages := newTestPages(t)
	h := NewGuestImportHandler(importer, pages, live)
	r := chi.NewRouter()
	r.Route("/admin/guests", h.Routes)

	w := serve(r, postFile(t, "/admin/guests/import", "file", "tamu.csv", "name,group"))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/guests/import", w.Header().Get("Location"))
	assert.Empty(t, importer.filenames)

	w = serve(r, postFile(t, "/admin/guests/import", "file", "tamu.xlsx", "PK\x03\x04"))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/guests", w.Header().Get("Location"))
	assert.Equal(t, []string{"tamu.xlsx"}, importer.filenames)
	assert.Equal(t, 1, open.count())

	form := serve(r, withCookies(httptest.NewRequest(http.MethodGet, "/admin/guests/import", nil), w))
	assert.Contains(t, form.Body.String(), "12 tamu berhasil diimpor.")
}

type fakeUploader struct {
	err      error
	filename string
	body     string
}

func (f *fakeUploader) Upload(_ context.Context, filename, _ string, file io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	f.filename = filename
	f.body = string(data)
	return "https://cdn.example.com/media/" + filename, nil
}

func TestUploadHandler_Upload(t *testing.T) {
	t.Run("returns the file URL", func(t *testing.T) {
		uploader := &fakeUploader{}
		h := NewUploadHandler(uploader)

		w := httptest.NewRecorder()
		h.Upload(w, postFile(t, "/admin/api/upload", "file", "cover.jpg", "jpeg bytes"))

		require.Equal(t, http.StatusCreated, w.Code)
		var resp MessageResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Upload Berhasil", resp.Message)
		assert.Equal(t, "https://cdn.example.com/media/cover.jpg", resp.URL)
		assert.Equal(t, "jpeg bytes", uploader.body)
	})

	t.Run("requires a file", func(t *testing.T) {
		h := NewUploadHandler(&fakeUploader{})

		w := httptest.NewRecorder()
		h.Upload(w, postFile(t, "/admin/api/upload", "other", "cover.jpg", "jpeg bytes"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("backend rejection", func(t *testing.T) {
		h := NewUploadHandler(&fakeUploader{err: &apiclient.Error{Status: http.StatusUnprocessableEntity, Message: "file type not allowed"}})

		w := httptest.NewRecorder()
		h.Upload(w, postFile(t, "/admin/api/upload", "file", "virus.exe", "MZ"))

		require.Equal(t, http.StatusBadGateway, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "file type not allowed", resp.Error)
	})

	t.Run("expired session", func(t *testing.T) {
		h := NewUploadHandler(&fakeUploader{err: &apiclient.Error{Status: http.StatusUnauthorized}})

		w := httptest.NewRecorder()
		h.Upload(w, postFile(t, "/admin/api/upload", "file", "cover.jpg", "jpeg bytes"))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
