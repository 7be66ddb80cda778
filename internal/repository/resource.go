package repository

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"weddingpress-web/internal/apiclient"
)

// ErrUnsupported is returned for operations the backend has no endpoint for
var ErrUnsupported = errors.New("operation not supported by backend")

// Query holds the list filters understood by the backend
type Query struct {
	Search string
	Group  string
	Status string
}

// Values encodes the non-empty filters as query parameters
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Group != "" {
		v.Set("group", q.Group)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	return v
}

// Paths describes one endpoint family. Empty paths mean the operation is unsupported.
type Paths struct {
	List   string // GET
	Create string // POST
	Item   string // PUT, DELETE; formatted with the id
	Bulk   string // DELETE with {"ids": [...]}
	Update bool
}

// Resource is a remote collection of T
type Resource[T any] struct {
	client *apiclient.Client
	name   string
	paths  Paths
}

// NewResource creates a remote collection
func NewResource[T any](client *apiclient.Client, name string, paths Paths) *Resource[T] {
	return &Resource[T]{client: client, name: name, paths: paths}
}

// Name returns the resource name used in logs and errors
func (r *Resource[T]) Name() string {
	return r.name
}

// List fetches the collection
func (r *Resource[T]) List(ctx context.Context, q Query) ([]T, error) {
	var items []T
	if err := r.client.Get(ctx, r.paths.List, q.Values(), &items); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.name, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Create posts a new item
func (r *Resource[T]) Create(ctx context.Context, body any) (*T, error) {
	if r.paths.Create == "" {
		return nil, ErrUnsupported
	}
	var item T
	if err := r.client.Post(ctx, r.paths.Create, body, &item); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", r.name, err)
	}
	return &item, nil
}

// Update replaces an item
func (r *Resource[T]) Update(ctx context.Context, id uint, body any) (*T, error) {
	if !r.paths.Update {
		return nil, ErrUnsupported
	}
	var item T
	if err := r.client.Put(ctx, r.itemPath(id), body, &item); err != nil {
		return nil, fmt.Errorf("failed to update %s %d: %w", r.name, id, err)
	}
	return &item, nil
}

// Delete removes an item
func (r *Resource[T]) Delete(ctx context.Context, id uint) error {
	if err := r.client.Delete(ctx, r.itemPath(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", r.name, id, err)
	}
	return nil
}

// BulkDelete removes several items in one all-or-nothing call
func (r *Resource[T]) BulkDelete(ctx context.Context, ids []uint) error {
	if r.paths.Bulk == "" {
		return ErrUnsupported
	}
	body := struct {
		IDs []uint `json:"ids"`
	}{IDs: ids}
	if err := r.client.Delete(ctx, r.paths.Bulk, body, nil); err != nil {
		return fmt.Errorf("failed to bulk delete %s: %w", r.name, err)
	}
	return nil
}

func (r *Resource[T]) itemPath(id uint) string {
	return fmt.Sprintf(r.paths.Item, id)
}
