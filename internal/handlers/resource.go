package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"weddingpress-web/internal/apiclient"
	"weddingpress-web/internal/forms"
	"weddingpress-web/internal/listing"
	"weddingpress-web/internal/repository"
	"weddingpress-web/internal/services"
	"weddingpress-web/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var errItemNotFound = errors.New("item not found")

// Column is one table column of a list page
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// Option is a select choice
type Option struct {
	Value string
	Label string
}

// FieldSpec describes how a form field is drawn
type FieldSpec struct {
	Name    string
	Label   string
	Type    string // text, textarea, date, time, url, number, color, select, checkbox
	Options []Option
	Upload  bool
}

// FormField is a FieldSpec filled with the dialog's current value and error
type FormField struct {
	FieldSpec
	Value   string
	Error   string
	Checked bool
}

// Row is one rendered table row; the live channel sends the same shape
type Row struct {
	ID     uint     `json:"id"`
	Cells  []string `json:"cells"`
	Link   string   `json:"link,omitempty"`
	Status string   `json:"status,omitempty"`
}

// Table is the rendered list
type Table struct {
	Headers []string
	Rows    []Row
}

// LiveSnapshot is the payload of a "snapshot" message
type LiveSnapshot struct {
	Rows       []Row             `json:"rows"`
	Selected   []uint            `json:"selected"`
	Selection  listing.Selection `json:"selection"`
	Loading    bool              `json:"loading"`
	LoadFailed bool              `json:"load_failed"`
	Query      listing.Query     `json:"query"`
}

// ResourceConfig describes one admin collection page
type ResourceConfig[T listing.Entity] struct {
	Name        string // URL segment, e.g. "events"
	Title       string
	Singular    string
	Columns     []Column[T]
	Remote      listing.Remote[T]
	FilterKey   listing.FilterKey
	Match       listing.Match[T]
	FilterLabel string
	Filters     func(ctx context.Context) ([]string, error)

	// Form is nil for collections without a create/edit form
	Form   *forms.Definition[T]
	Fields []FieldSpec

	Link     func(T) string
	Status   func(T) string
	Bulk     bool
	Import   bool
	Moderate bool
}

// ResourceHandler serves the list, form and delete pages of one collection
// plus its live channel
type ResourceHandler[T listing.Entity] struct {
	cfg      ResourceConfig[T]
	pages    *Pages
	live     *LiveRegistry
	debounce time.Duration
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler[T listing.Entity](cfg ResourceConfig[T], pages *Pages, live *LiveRegistry, debounce time.Duration) *ResourceHandler[T] {
	return &ResourceHandler[T]{
		cfg:      cfg,
		pages:    pages,
		live:     live,
		debounce: debounce,
	}
}

// Base returns the collection's page path
func (h *ResourceHandler[T]) Base() string {
	return "/admin/" + h.cfg.Name
}

// LivePath returns the collection's websocket path
func (h *ResourceHandler[T]) LivePath() string {
	return "/admin/live/" + h.cfg.Name
}

// Mount registers the collection routes; extra adds routes under the same base
func (h *ResourceHandler[T]) Mount(r chi.Router, extra ...func(chi.Router)) {
	r.Route(h.Base(), func(r chi.Router) {
		r.Get("/", h.List)
		if h.cfg.Form != nil {
			r.Get("/new", h.New)
			r.Post("/", h.Create)
			if !h.cfg.Form.CreateOnly {
				r.Get("/{id}/edit", h.Edit)
				r.Post("/{id}", h.Update)
			}
		}
		r.Get("/{id}/delete", h.ConfirmDelete)
		r.Post("/{id}/delete", h.Delete)
		if h.cfg.Bulk {
			r.Post("/bulk-delete", h.BulkDelete)
		}
		for _, fn := range extra {
			fn(r)
		}
	})
	r.Get(h.LivePath(), h.Live)
}

func (h *ResourceHandler[T]) controller(notify listing.Notifier) *listing.Controller[T] {
	return listing.New(h.cfg.Name, listing.FromRemote(h.cfg.Remote, h.cfg.FilterKey, h.cfg.Match), listing.Options{
		Debounce: h.debounce,
		Notifier: notify,
	})
}

// flashNotifier turns controller toasts into flash messages of the next page
func (h *ResourceHandler[T]) flashNotifier(w http.ResponseWriter, r *http.Request) listing.Notifier {
	return listing.NotifierFunc(func(_ context.Context, n listing.Notice) {
		h.pages.Flash(w, r, string(n.Kind), n.Message)
	})
}

func (h *ResourceHandler[T]) rows(items []T) []Row {
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		row := Row{ID: it.EntityID(), Cells: make([]string, 0, len(h.cfg.Columns))}
		for _, c := range h.cfg.Columns {
			row.Cells = append(row.Cells, c.Value(it))
		}
		if h.cfg.Link != nil {
			row.Link = h.cfg.Link(it)
		}
		if h.cfg.Status != nil {
			row.Status = h.cfg.Status(it)
		}
		rows = append(rows, row)
	}
	return rows
}

func (h *ResourceHandler[T]) headers() []string {
	out := make([]string, 0, len(h.cfg.Columns))
	for _, c := range h.cfg.Columns {
		out = append(out, c.Header)
	}
	return out
}

func (h *ResourceHandler[T]) filters(ctx context.Context) []string {
	if h.cfg.Filters == nil {
		return nil
	}
	values, err := h.cfg.Filters(ctx)
	if err != nil {
		log.Error().Err(err).Str("resource", h.cfg.Name).Msg("Failed to load list filters")
		return nil
	}
	return values
}

// List handles GET /admin/{resource}
func (h *ResourceHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := listing.Query{
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		Filter: r.URL.Query().Get("filter"),
	}

	ctl := h.controller(nil)
	defer ctl.Close()
	if err := ctl.Load(ctx, q); errors.Is(err, apiclient.ErrUnauthorized) {
		h.pages.BackendFailed(w, r, err, h.Base(), "")
		return
	}
	snap := ctl.Snapshot()

	h.pages.Render(w, r, "list.html", http.StatusOK, map[string]any{
		"Title":       h.cfg.Title,
		"Singular":    h.cfg.Singular,
		"Nav":         h.cfg.Name,
		"Base":        h.Base(),
		"LivePath":    h.LivePath(),
		"Query":       snap.Query,
		"Filters":     h.filters(ctx),
		"FilterLabel": h.cfg.FilterLabel,
		"CanCreate":   h.cfg.Form != nil,
		"CanEdit":     h.cfg.Form != nil && !h.cfg.Form.CreateOnly,
		"CanBulk":     h.cfg.Bulk,
		"CanImport":   h.cfg.Import,
		"Moderate":    h.cfg.Moderate,
		"LoadFailed":  snap.LoadFailed,
		"Selected":    snap.Selected,
		"Selection":   string(snap.Selection),
		"Table":       Table{Headers: h.headers(), Rows: h.rows(snap.Items)},
	})
}

// find looks an item up in the unfiltered list
func (h *ResourceHandler[T]) find(ctx context.Context, id uint) (*T, error) {
	items, err := h.cfg.Remote.List(ctx, repository.Query{})
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].EntityID() == id {
			return &items[i], nil
		}
	}
	return nil, errItemNotFound
}

func (h *ResourceHandler[T]) dialog() *forms.Dialog[T] {
	return forms.NewDialog(*h.cfg.Form, func(ctx context.Context) {
		h.live.Mutated(ctx, h.cfg.Name)
	})
}

func (h *ResourceHandler[T]) renderForm(w http.ResponseWriter, r *http.Request, status int, title, action string, st forms.State) {
	renderForm(h.pages, w, r, status, formPage{
		Title:  title,
		Nav:    h.cfg.Name,
		Action: action,
		Cancel: h.Base(),
		Fields: h.cfg.Fields,
	}, st)
}

type formPage struct {
	Title  string
	Nav    string
	Action string
	Cancel string
	Fields []FieldSpec
}

func renderForm(pages *Pages, w http.ResponseWriter, r *http.Request, status int, page formPage, st forms.State) {
	fields := make([]FormField, 0, len(page.Fields))
	for _, spec := range page.Fields {
		value := st.Values[spec.Name]
		fields = append(fields, FormField{
			FieldSpec: spec,
			Value:     value,
			Error:     st.Errors[spec.Name],
			Checked:   spec.Type == "checkbox" && validation.Bool(value),
		})
	}
	pages.Render(w, r, "form.html", status, map[string]any{
		"Title":  page.Title,
		"Nav":    page.Nav,
		"Toast":  st.Toast,
		"Action": page.Action,
		"Fields": fields,
		"Cancel": page.Cancel,
	})
}

// New handles GET /admin/{resource}/new
func (h *ResourceHandler[T]) New(w http.ResponseWriter, r *http.Request) {
	d := h.dialog()
	if err := d.Open(nil); err != nil {
		h.pages.Redirect(w, r, h.Base(), "error", err.Error())
		return
	}
	h.renderForm(w, r, http.StatusOK, "Add "+h.cfg.Singular, h.Base(), d.State())
}

// Create handles POST /admin/{resource}
func (h *ResourceHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.pages.Redirect(w, r, h.Base(), "error", "Invalid form")
		return
	}
	d := h.dialog()
	if err := d.Open(nil); err != nil {
		h.pages.Redirect(w, r, h.Base(), "error", err.Error())
		return
	}
	h.submit(w, r, d, "Add "+h.cfg.Singular, h.Base())
}

// Edit handles GET /admin/{resource}/{id}/edit
func (h *ResourceHandler[T]) Edit(w http.ResponseWriter, r *http.Request) {
	d, id, ok := h.openEdit(w, r)
	if !ok {
		return
	}
	h.renderForm(w, r, http.StatusOK, "Edit "+h.cfg.Singular, fmt.Sprintf("%s/%d", h.Base(), id), d.State())
}

// Update handles POST /admin/{resource}/{id}
func (h *ResourceHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.pages.Redirect(w, r, h.Base(), "error", "Invalid form")
		return
	}
	d, id, ok := h.openEdit(w, r)
	if !ok {
		return
	}
	h.submit(w, r, d, "Edit "+h.cfg.Singular, fmt.Sprintf("%s/%d", h.Base(), id))
}

func (h *ResourceHandler[T]) openEdit(w http.ResponseWriter, r *http.Request) (*forms.Dialog[T], uint, bool) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return nil, 0, false
	}
	item, err := h.find(r.Context(), id)
	if errors.Is(err, errItemNotFound) {
		h.pages.Redirect(w, r, h.Base(), "error", fmt.Sprintf("%s not found", capitalize(h.cfg.Singular)))
		return nil, 0, false
	}
	if err != nil {
		h.pages.BackendFailed(w, r, err, h.Base(), fmt.Sprintf("Failed to load %s", h.cfg.Singular))
		return nil, 0, false
	}

	d := h.dialog()
	if err := d.Open(item); err != nil {
		h.pages.Redirect(w, r, h.Base(), "error", err.Error())
		return nil, 0, false
	}
	return d, id, true
}

func (h *ResourceHandler[T]) submit(w http.ResponseWriter, r *http.Request, d *forms.Dialog[T], title, action string) {
	if err := d.Fill(forms.FromPost(d.Schema(), r.PostForm)); err != nil {
		h.pages.Redirect(w, r, h.Base(), "error", err.Error())
		return
	}

	err := d.Submit(r.Context())
	switch {
	case err == nil:
		h.pages.Redirect(w, r, h.Base(), "success", fmt.Sprintf("%s saved", capitalize(h.cfg.Singular)))
	case errors.Is(err, forms.ErrInvalid):
		h.renderForm(w, r, http.StatusUnprocessableEntity, title, action, d.State())
	case errors.Is(err, apiclient.ErrUnauthorized):
		h.pages.BackendFailed(w, r, err, h.Base(), "")
	default:
		h.renderForm(w, r, http.StatusBadGateway, title, action, d.State())
	}
}

// ConfirmDelete handles GET /admin/{resource}/{id}/delete
func (h *ResourceHandler[T]) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.renderConfirm(w, r, fmt.Sprintf("%s/%d/delete", h.Base(), id), nil,
		fmt.Sprintf("Are you sure you want to delete this %s? This cannot be undone.", h.cfg.Singular))
}

func (h *ResourceHandler[T]) renderConfirm(w http.ResponseWriter, r *http.Request, action string, ids []uint, message string) {
	h.pages.Render(w, r, "confirm.html", http.StatusOK, map[string]any{
		"Title":   "Delete " + h.cfg.Singular,
		"Nav":     h.cfg.Name,
		"Message": message,
		"Action":  action,
		"IDs":     ids,
		"Cancel":  h.Base(),
	})
}

// Delete handles POST /admin/{resource}/{id}/delete. Without confirm=yes it
// only shows the confirmation page.
func (h *ResourceHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil || r.PostForm.Get("confirm") != "yes" {
		h.ConfirmDelete(w, r)
		return
	}

	ctl := h.controller(h.flashNotifier(w, r))
	defer ctl.Close()
	ctx := listing.Confirmed(r.Context())
	if err := ctl.Delete(ctx, id); err == nil {
		h.live.Mutated(r.Context(), h.cfg.Name)
	}
	http.Redirect(w, r, h.Base(), http.StatusSeeOther)
}

// BulkDelete handles POST /admin/{resource}/bulk-delete
func (h *ResourceHandler[T]) BulkDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.pages.Redirect(w, r, h.Base(), "error", "Invalid form")
		return
	}
	ids := formIDs(r)
	if len(ids) == 0 {
		h.pages.Redirect(w, r, h.Base(), "error", "Select at least one row")
		return
	}
	if r.PostForm.Get("confirm") != "yes" {
		h.renderConfirm(w, r, h.Base()+"/bulk-delete", ids,
			fmt.Sprintf("Are you sure you want to delete %d selected %s? This cannot be undone.", len(ids), h.cfg.Title))
		return
	}

	ctx := r.Context()
	ctl := h.controller(h.flashNotifier(w, r))
	defer ctl.Close()
	if err := ctl.Load(ctx, listing.Query{}); err != nil {
		h.pages.BackendFailed(w, r, err, h.Base(), fmt.Sprintf("Failed to load %s", h.cfg.Title))
		return
	}
	for _, id := range ids {
		ctl.Toggle(id)
	}

	err := ctl.DeleteSelected(listing.Confirmed(ctx))
	switch {
	case err == nil:
		h.live.Mutated(ctx, h.cfg.Name)
	case errors.Is(err, listing.ErrNothingSelected):
		h.pages.Flash(w, r, "error", "The selected rows no longer exist")
	}
	http.Redirect(w, r, h.Base(), http.StatusSeeOther)
}

// Live handles the websocket of a list page. Each connection drives its own
// controller; snapshots and toasts are pushed back as they change.
func (h *ResourceHandler[T]) Live(w http.ResponseWriter, r *http.Request) {
	ws, err := h.live.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("resource", h.cfg.Name).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer ws.Close()
	conn := &liveConn{conn: ws}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ctl := h.controller(listing.NotifierFunc(func(_ context.Context, n listing.Notice) {
		if err := conn.send(services.WSMessage{Type: "notice", Message: n.Message, Data: n.Kind, Timestamp: time.Now().UnixMilli()}); err != nil {
			log.Debug().Err(err).Msg("Failed to send notice")
		}
	}))
	defer ctl.Close()

	unsubscribe := ctl.Subscribe(func(s listing.Snapshot[T]) {
		msg := services.WSMessage{Type: "snapshot", Data: h.liveSnapshot(s), Timestamp: time.Now().UnixMilli()}
		if err := conn.send(msg); err != nil {
			log.Debug().Err(err).Msg("Failed to send snapshot")
		}
	})
	defer unsubscribe()

	self, remove := h.live.Add(h.cfg.Name, func(context.Context) {
		go ctl.Mutated(ctx)
	})
	defer remove()

	log.Info().Str("resource", h.cfg.Name).Msg("Live list connected")

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("resource", h.cfg.Name).Msg("WebSocket error")
			}
			return
		}

		var msg services.WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Error().Err(err).Str("resource", h.cfg.Name).Msg("Failed to parse WebSocket message")
			conn.sendError("Invalid message format")
			continue
		}
		h.handleLive(ctx, ctl, conn, self, msg)
	}
}

// handleLive applies one client event. Fetches run in the background so a slow
// backend never blocks reading the next event.
func (h *ResourceHandler[T]) handleLive(ctx context.Context, ctl *listing.Controller[T], conn *liveConn, self int, msg services.WSMessage) {
	switch msg.Type {
	case "load":
		go ctl.Load(ctx, listing.Query{Search: strings.TrimSpace(msg.Value), Filter: msg.Filter})
	case "search":
		ctl.SetSearch(ctx, strings.TrimSpace(msg.Value))
	case "filter":
		go ctl.SetFilter(ctx, msg.Filter)
	case "refresh":
		go ctl.Refresh(ctx)
	case "toggle":
		ctl.Toggle(msg.ID)
	case "toggle_all":
		ctl.ToggleAll()
	case "select_all":
		ctl.SelectAll()
	case "clear_selection":
		ctl.ClearSelection()
	case "delete":
		if !msg.Confirm {
			conn.sendError("Delete must be confirmed")
			return
		}
		go func() {
			if err := ctl.Delete(listing.Confirmed(ctx), msg.ID); err == nil {
				h.live.MutatedExcept(ctx, h.cfg.Name, self)
			}
		}()
	case "delete_selected":
		if !h.cfg.Bulk {
			conn.sendError("Bulk delete is not available here")
			return
		}
		if !msg.Confirm {
			conn.sendError("Delete must be confirmed")
			return
		}
		go func() {
			err := ctl.DeleteSelected(listing.Confirmed(ctx))
			switch {
			case err == nil:
				h.live.MutatedExcept(ctx, h.cfg.Name, self)
			case errors.Is(err, listing.ErrNothingSelected):
				conn.sendError("Select at least one row")
			}
		}()
	default:
		conn.sendError("Unknown message type")
	}
}

func (h *ResourceHandler[T]) liveSnapshot(s listing.Snapshot[T]) LiveSnapshot {
	return LiveSnapshot{
		Rows:       h.rows(s.Items),
		Selected:   s.Selected,
		Selection:  s.Selection,
		Loading:    s.Loading,
		LoadFailed: s.LoadFailed,
		Query:      s.Query,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
