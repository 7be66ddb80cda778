// Package listing drives the admin list pages: fetching, search and filter,
// row selection and confirmed deletes.
package listing

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"weddingpress-web/internal/apiclient"

	"github.com/rs/zerolog/log"
)

var (
	ErrDeclined        = errors.New("delete was not confirmed")
	ErrNothingSelected = errors.New("no rows selected")
)

// DefaultDebounce is the search input delay
const DefaultDebounce = 500 * time.Millisecond

// Entity is a listable row
type Entity interface {
	EntityID() uint
}

// Query is the list's search text and its single filter (group or status)
type Query struct {
	Search string `json:"search"`
	Filter string `json:"filter"`
}

// Source is the remote collection behind a list
type Source[T Entity] interface {
	List(ctx context.Context, q Query) ([]T, error)
	Delete(ctx context.Context, id uint) error
	BulkDelete(ctx context.Context, ids []uint) error
}

// Selection is the header checkbox state
type Selection string

const (
	SelectionNone Selection = "none"
	SelectionSome Selection = "some"
	SelectionAll  Selection = "all"
)

// Snapshot is the list state handed to views
type Snapshot[T Entity] struct {
	Resource   string    `json:"resource"`
	Items      []T       `json:"items"`
	Loading    bool      `json:"loading"`
	LoadFailed bool      `json:"load_failed"`
	Query      Query     `json:"query"`
	Selected   []uint    `json:"selected"`
	Selection  Selection `json:"selection"`
}

// Options tune a controller
type Options struct {
	Debounce  time.Duration
	Confirmer Confirmer
	Notifier  Notifier
}

// Controller is the state of one list page
type Controller[T Entity] struct {
	name     string
	src      Source[T]
	confirm  Confirmer
	notify   Notifier
	debounce time.Duration

	mu        sync.Mutex
	items     []T
	loading   bool
	failed    bool
	query     Query
	selected  map[uint]struct{}
	seq       uint64
	cancel    context.CancelFunc
	timer     *time.Timer
	observers map[int]func(Snapshot[T])
	nextObs   int
	closed    bool
}

// New creates a controller; nothing is fetched until Refresh
func New[T Entity](name string, src Source[T], opts Options) *Controller[T] {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Confirmer == nil {
		opts.Confirmer = ContextConfirmer{}
	}
	if opts.Notifier == nil {
		opts.Notifier = NotifierFunc(func(context.Context, Notice) {})
	}
	return &Controller[T]{
		name:      name,
		src:       src,
		confirm:   opts.Confirmer,
		notify:    opts.Notifier,
		debounce:  opts.Debounce,
		selected:  make(map[uint]struct{}),
		observers: make(map[int]func(Snapshot[T])),
	}
}

// Subscribe registers fn for every state change and returns its cancel func
func (c *Controller[T]) Subscribe(fn func(Snapshot[T])) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// Snapshot returns the current state
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller[T]) snapshotLocked() Snapshot[T] {
	items := make([]T, len(c.items))
	copy(items, c.items)

	selected := make([]uint, 0, len(c.selected))
	for id := range c.selected {
		selected = append(selected, id)
	}
	sort.Slice(selected, func(i, j int) bool { return selected[i] < selected[j] })

	return Snapshot[T]{
		Resource:   c.name,
		Items:      items,
		Loading:    c.loading,
		LoadFailed: c.failed,
		Query:      c.query,
		Selected:   selected,
		Selection:  c.selectionLocked(),
	}
}

func (c *Controller[T]) selectionLocked() Selection {
	if len(c.selected) == 0 {
		return SelectionNone
	}
	if len(c.items) > 0 && len(c.selected) == len(c.items) {
		for _, it := range c.items {
			if _, ok := c.selected[it.EntityID()]; !ok {
				return SelectionSome
			}
		}
		return SelectionAll
	}
	return SelectionSome
}

func (c *Controller[T]) emit() {
	c.mu.Lock()
	snap := c.snapshotLocked()
	observers := make([]func(Snapshot[T]), 0, len(c.observers))
	for _, fn := range c.observers {
		observers = append(observers, fn)
	}
	c.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}

// Refresh fetches the list for the current query. A newer Refresh cancels
// this one and its result is discarded.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return context.Canceled
	}
	c.seq++
	seq := c.seq
	if c.cancel != nil {
		c.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.loading = true
	q := c.query
	c.mu.Unlock()
	c.emit()

	items, err := c.src.List(fetchCtx, q)

	c.mu.Lock()
	if seq != c.seq {
		// superseded by a newer fetch
		c.mu.Unlock()
		cancel()
		return nil
	}
	cancel()
	c.cancel = nil
	c.loading = false
	if err != nil {
		c.failed = true
	} else {
		c.failed = false
		c.items = items
		c.pruneSelectionLocked()
	}
	c.mu.Unlock()
	c.emit()

	if err != nil {
		log.Error().Err(err).Str("resource", c.name).Msg("Failed to load list")
	}
	return err
}

func (c *Controller[T]) pruneSelectionLocked() {
	visible := make(map[uint]struct{}, len(c.items))
	for _, it := range c.items {
		visible[it.EntityID()] = struct{}{}
	}
	for id := range c.selected {
		if _, ok := visible[id]; !ok {
			delete(c.selected, id)
		}
	}
}

// SetSearch clears the selection now and applies s after the debounce delay.
// A later call within the delay replaces the pending one.
func (c *Controller[T]) SetSearch(ctx context.Context, s string) {
	c.mu.Lock()
	c.selected = make(map[uint]struct{})
	if c.timer != nil {
		c.timer.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		// a newer SetSearch or Load replaced this timer after it fired
		if c.closed || c.timer != t {
			c.mu.Unlock()
			return
		}
		c.query.Search = s
		c.timer = nil
		c.mu.Unlock()
		_ = c.Refresh(ctx)
	})
	c.timer = t
	c.mu.Unlock()
	c.emit()
}

// Load replaces the whole query without the search delay and fetches.
// Used for full page loads where the query comes from the URL.
func (c *Controller[T]) Load(ctx context.Context, q Query) error {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.selected = make(map[uint]struct{})
	c.query = q
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// SetFilter clears the selection and fetches with the new filter immediately
func (c *Controller[T]) SetFilter(ctx context.Context, f string) error {
	c.mu.Lock()
	c.selected = make(map[uint]struct{})
	c.query.Filter = f
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// Toggle flips one visible row
func (c *Controller[T]) Toggle(id uint) {
	c.mu.Lock()
	if _, ok := c.selected[id]; ok {
		delete(c.selected, id)
	} else if c.visibleLocked(id) {
		c.selected[id] = struct{}{}
	}
	c.mu.Unlock()
	c.emit()
}

func (c *Controller[T]) visibleLocked(id uint) bool {
	for _, it := range c.items {
		if it.EntityID() == id {
			return true
		}
	}
	return false
}

// SelectAll selects every visible row; calling it again changes nothing
func (c *Controller[T]) SelectAll() {
	c.mu.Lock()
	c.selected = make(map[uint]struct{}, len(c.items))
	for _, it := range c.items {
		c.selected[it.EntityID()] = struct{}{}
	}
	c.mu.Unlock()
	c.emit()
}

// ToggleAll is the header checkbox: all rows selected clears, otherwise selects all
func (c *Controller[T]) ToggleAll() {
	c.mu.Lock()
	all := c.selectionLocked() == SelectionAll
	c.mu.Unlock()

	if all {
		c.ClearSelection()
		return
	}
	c.SelectAll()
}

// ClearSelection deselects every row
func (c *Controller[T]) ClearSelection() {
	c.mu.Lock()
	c.selected = make(map[uint]struct{})
	c.mu.Unlock()
	c.emit()
}

// Delete removes one row after confirmation
func (c *Controller[T]) Delete(ctx context.Context, id uint) error {
	if !c.confirm.Confirm(ctx, Prompt{Resource: c.name, Count: 1}) {
		return ErrDeclined
	}
	if err := c.src.Delete(ctx, id); err != nil {
		c.fail(ctx, err, "Failed to delete item")
		return err
	}
	return c.afterDelete(ctx, "Item deleted")
}

// DeleteSelected removes every selected row in one call after confirmation
func (c *Controller[T]) DeleteSelected(ctx context.Context) error {
	c.mu.Lock()
	ids := make([]uint, 0, len(c.selected))
	for id := range c.selected {
		ids = append(ids, id)
	}
	c.mu.Unlock()
	if len(ids) == 0 {
		return ErrNothingSelected
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if !c.confirm.Confirm(ctx, Prompt{Resource: c.name, Count: len(ids)}) {
		return ErrDeclined
	}
	if err := c.src.BulkDelete(ctx, ids); err != nil {
		c.fail(ctx, err, "Failed to delete selected items")
		return err
	}
	return c.afterDelete(ctx, "Selected items deleted")
}

// Mutated refreshes after a form dialog saved an item
func (c *Controller[T]) Mutated(ctx context.Context) {
	_ = c.Refresh(ctx)
}

func (c *Controller[T]) afterDelete(ctx context.Context, message string) error {
	c.mu.Lock()
	c.selected = make(map[uint]struct{})
	c.mu.Unlock()
	c.notify.Notify(ctx, Notice{Kind: NoticeSuccess, Message: message})
	return c.Refresh(ctx)
}

func (c *Controller[T]) fail(ctx context.Context, err error, fallback string) {
	log.Error().Err(err).Str("resource", c.name).Msg(fallback)
	c.notify.Notify(ctx, Notice{Kind: NoticeError, Message: apiclient.Message(err, fallback)})
}

// Close stops pending searches and in-flight fetches
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
