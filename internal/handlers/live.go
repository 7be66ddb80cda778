package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"weddingpress-web/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// LiveRegistry tracks the open live list channels per resource so a save made
// through a page form refreshes every open list of that resource. It also owns
// the upgrader of those channels, which only accepts the admin's own origins.
type LiveRegistry struct {
	mu       sync.Mutex
	next     int
	groups   map[string]map[int]func(ctx context.Context)
	upgrader websocket.Upgrader
}

// NewLiveRegistry creates an empty registry. Besides the request's own host,
// the live channels accept the given origins, as hosts ("localhost:3000") or
// URLs ("https://admin.example.com").
func NewLiveRegistry(origins ...string) *LiveRegistry {
	return &LiveRegistry{
		groups:   make(map[string]map[int]func(ctx context.Context)),
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigins(origins)},
	}
}

func originHost(origin string) string {
	origin = strings.TrimSpace(origin)
	if strings.Contains(origin, "://") {
		u, err := url.Parse(origin)
		if err != nil {
			return ""
		}
		return strings.ToLower(u.Host)
	}
	return strings.ToLower(strings.TrimRight(origin, "/"))
}

// allowOrigins accepts requests without an Origin header (non-browser
// clients), same-host requests and the listed hosts
func allowOrigins(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if h := originHost(o); h != "" {
			allowed[h] = struct{}{}
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return false
		}
		host := strings.ToLower(u.Host)
		if host == strings.ToLower(r.Host) {
			return true
		}
		_, ok := allowed[host]
		if !ok {
			log.Warn().Str("origin", origin).Str("path", r.URL.Path).Msg("Rejected live channel origin")
		}
		return ok
	}
}

// Add registers fn for resource and returns its id and removal func
func (l *LiveRegistry) Add(resource string, fn func(ctx context.Context)) (int, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.next
	l.next++
	if l.groups[resource] == nil {
		l.groups[resource] = make(map[int]func(ctx context.Context))
	}
	l.groups[resource][id] = fn
	return id, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.groups[resource], id)
		if len(l.groups[resource]) == 0 {
			delete(l.groups, resource)
		}
	}
}

// Mutated tells every open channel of resource to refetch
func (l *LiveRegistry) Mutated(ctx context.Context, resource string) {
	l.MutatedExcept(ctx, resource, -1)
}

// MutatedExcept is Mutated for every channel but the one that made the change
func (l *LiveRegistry) MutatedExcept(ctx context.Context, resource string, except int) {
	l.mu.Lock()
	fns := make([]func(ctx context.Context), 0, len(l.groups[resource]))
	for id, fn := range l.groups[resource] {
		if id != except {
			fns = append(fns, fn)
		}
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(ctx)
	}
}

// Open returns how many channels follow resource
func (l *LiveRegistry) Open(resource string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.groups[resource])
}

// liveConn serializes writes to one websocket
type liveConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *liveConn) send(msg services.WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (c *liveConn) sendError(message string) {
	if err := c.send(services.WSMessage{Type: "error", Message: message}); err != nil {
		log.Debug().Err(err).Msg("Failed to send error message")
	}
}
