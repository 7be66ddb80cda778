package handlers

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"weddingpress-web/internal/listing"
	"weddingpress-web/internal/repository"
	"weddingpress-web/internal/views"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"
)

const testCookieName = "weddingpress_test"

func newTestPages(t *testing.T) *Pages {
	t.Helper()
	templates := views.NewTemplateCache()
	require.NoError(t, templates.Load(views.FS()))
	return &Pages{
		Templates:  templates,
		Cookies:    sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef")),
		CookieName: testCookieName,
	}
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func postFile(t *testing.T, path, field, filename, content string) *http.Request {
	t.Helper()
	var body strings.Builder
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body.String()))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// withCookies copies the cookies a previous response set onto req
func withCookies(req *http.Request, prev *httptest.ResponseRecorder) *http.Request {
	for _, c := range prev.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

// fakeCollection stands in for a backend collection repository
type fakeCollection[T listing.Entity] struct {
	mu       sync.Mutex
	items    []T
	groups   []string
	listErr  error
	writeErr error
	delErr   error
	lists    int
	created  []any
	updated  map[uint]any
	deleted  []uint
	bulk     [][]uint
}

func newFakeCollection[T listing.Entity](items ...T) *fakeCollection[T] {
	return &fakeCollection[T]{items: items, updated: make(map[uint]any)}
}

func (f *fakeCollection[T]) List(_ context.Context, _ repository.Query) ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]T, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeCollection[T]) Create(_ context.Context, body any) (*T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	f.created = append(f.created, body)
	var item T
	return &item, nil
}

func (f *fakeCollection[T]) Update(_ context.Context, id uint, body any) (*T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	f.updated[id] = body
	var item T
	return &item, nil
}

func (f *fakeCollection[T]) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, id)
	f.removeLocked(id)
	return nil
}

func (f *fakeCollection[T]) BulkDelete(_ context.Context, ids []uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	f.bulk = append(f.bulk, ids)
	for _, id := range ids {
		f.removeLocked(id)
	}
	return nil
}

func (f *fakeCollection[T]) removeLocked(id uint) {
	kept := f.items[:0]
	for _, it := range f.items {
		if it.EntityID() != id {
			kept = append(kept, it)
		}
	}
	f.items = kept
}

func (f *fakeCollection[T]) Groups(context.Context) ([]string, error) {
	return f.groups, nil
}

func (f *fakeCollection[T]) bulkCalls() [][]uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]uint, len(f.bulk))
	copy(out, f.bulk)
	return out
}

// counter counts LiveRegistry notifications
type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) hit(context.Context) {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *counter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}
