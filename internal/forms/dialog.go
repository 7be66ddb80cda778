// Package forms drives the create/edit dialog shared by every admin entity.
package forms

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"weddingpress-web/internal/apiclient"
	"weddingpress-web/internal/validation"

	"github.com/rs/zerolog/log"
)

var (
	ErrInvalid        = errors.New("form input is invalid")
	ErrClosed         = errors.New("form dialog is not open")
	ErrBusy           = errors.New("form is already submitting")
	ErrEditNotAllowed = errors.New("this form only creates new items")
)

// Mode selects the create or update endpoint
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Definition describes one entity's form
type Definition[T any] struct {
	Name       string
	Schema     validation.Schema
	Defaults   func() validation.Values
	FromEntity func(T) validation.Values
	ID         func(T) uint
	Submit     func(ctx context.Context, mode Mode, id uint, v validation.Values) error
	CreateOnly bool
}

// State is a snapshot of the dialog
type State struct {
	Open   bool
	Mode   Mode
	ID     uint
	Values validation.Values
	Errors validation.Errors
	Toast  string
}

// Dialog is a single create/edit form
type Dialog[T any] struct {
	def Definition[T]

	mu         sync.Mutex
	open       bool
	mode       Mode
	id         uint
	values     validation.Values
	errs       validation.Errors
	toast      string
	submitting bool

	// OnSuccess runs once after each successful write, typically the parent list's refresh
	OnSuccess func(ctx context.Context)
}

// NewDialog creates a closed dialog
func NewDialog[T any](def Definition[T], onSuccess func(ctx context.Context)) *Dialog[T] {
	return &Dialog[T]{def: def, OnSuccess: onSuccess}
}

// Open resets the dialog: nil entity opens in create mode with defaults,
// otherwise edit mode prefilled from the entity
func (d *Dialog[T]) Open(entity *T) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if entity != nil && d.def.CreateOnly {
		return ErrEditNotAllowed
	}

	d.errs = validation.Errors{}
	d.toast = ""
	d.open = true
	if entity == nil {
		d.mode = ModeCreate
		d.id = 0
		d.values = d.def.Defaults()
		return nil
	}
	d.mode = ModeEdit
	d.id = 0
	if d.def.ID != nil {
		d.id = d.def.ID(*entity)
	}
	d.values = d.def.FromEntity(*entity)
	return nil
}

// Close discards the dialog's state
func (d *Dialog[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = false
}

// Set changes one field value
func (d *Dialog[T]) Set(field, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return ErrClosed
	}
	d.values[field] = value
	return nil
}

// Fill sets every field of v; fields absent from v keep their value
func (d *Dialog[T]) Fill(v validation.Values) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return ErrClosed
	}
	for k, val := range v {
		d.values[k] = val
	}
	return nil
}

// Submit validates then performs exactly one write.
// Invalid input returns ErrInvalid without any network call.
func (d *Dialog[T]) Submit(ctx context.Context) error {
	d.mu.Lock()
	if !d.open {
		d.mu.Unlock()
		return ErrClosed
	}
	if d.submitting {
		d.mu.Unlock()
		return ErrBusy
	}
	d.toast = ""
	d.errs = d.def.Schema.Validate(d.values)
	if len(d.errs) > 0 {
		errs := d.errs
		d.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrInvalid, errs)
	}
	d.submitting = true
	mode, id, values := d.mode, d.id, d.values.Clone()
	d.mu.Unlock()

	err := d.def.Submit(ctx, mode, id, values)

	d.mu.Lock()
	d.submitting = false
	if err != nil {
		d.toast = apiclient.Message(err, fmt.Sprintf("Failed to save %s", d.def.Name))
		d.mu.Unlock()
		log.Error().
			Err(err).
			Str("form", d.def.Name).
			Str("mode", mode.String()).
			Uint("id", id).
			Msg("Form submit failed")
		return err
	}
	d.open = false
	d.mu.Unlock()

	if d.OnSuccess != nil {
		d.OnSuccess(ctx)
	}
	return nil
}

// State returns a snapshot
func (d *Dialog[T]) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	errs := validation.Errors{}
	for k, v := range d.errs {
		errs[k] = v
	}
	var values validation.Values
	if d.values != nil {
		values = d.values.Clone()
	}
	return State{
		Open:   d.open,
		Mode:   d.mode,
		ID:     d.id,
		Values: values,
		Errors: errs,
		Toast:  d.toast,
	}
}

// Name returns the entity name of the form
func (d *Dialog[T]) Name() string {
	return d.def.Name
}
