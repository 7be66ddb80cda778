package listing

import (
	"context"
	"strings"

	"weddingpress-web/internal/repository"
)

// Remote is a backend collection as exposed by the repository package
type Remote[T any] interface {
	List(ctx context.Context, q repository.Query) ([]T, error)
	Delete(ctx context.Context, id uint) error
	BulkDelete(ctx context.Context, ids []uint) error
}

// FilterKey says which backend parameter the list filter maps to
type FilterKey int

const (
	NoFilter FilterKey = iota
	FilterGroup
	FilterStatus
)

// Match reports whether a row belongs to the result of q
type Match[T any] func(item T, q Query) bool

// ContainsFold reports whether any field contains search, ignoring case.
// An empty search matches everything.
func ContainsFold(search string, fields ...string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

type remoteSource[T Entity] struct {
	remote Remote[T]
	key    FilterKey
	match  Match[T]
}

// FromRemote adapts a repository collection to a list source. The query is
// sent to the backend and applied again with match, since the backend may
// return the whole collection. A nil match keeps every row.
func FromRemote[T Entity](remote Remote[T], key FilterKey, match Match[T]) Source[T] {
	return &remoteSource[T]{remote: remote, key: key, match: match}
}

func (s *remoteSource[T]) List(ctx context.Context, q Query) ([]T, error) {
	rq := repository.Query{Search: q.Search}
	switch s.key {
	case FilterGroup:
		rq.Group = q.Filter
	case FilterStatus:
		rq.Status = q.Filter
	}
	items, err := s.remote.List(ctx, rq)
	if err != nil || s.match == nil || q == (Query{}) {
		return items, err
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if s.match(item, q) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *remoteSource[T]) Delete(ctx context.Context, id uint) error {
	return s.remote.Delete(ctx, id)
}

func (s *remoteSource[T]) BulkDelete(ctx context.Context, ids []uint) error {
	return s.remote.BulkDelete(ctx, ids)
}
