package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"weddingpress-web/internal/invitation"
	"weddingpress-web/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// DefaultPollInterval is how often an open invitation's guestbook is refetched
const DefaultPollInterval = 60 * time.Second

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`

	// client events on the admin live channel
	Value   string `json:"value,omitempty"`
	Filter  string `json:"filter,omitempty"`
	ID      uint   `json:"id,omitempty"`
	Confirm bool   `json:"confirm,omitempty"`
}

// Conn is the write side of a websocket connection
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// GuestBookSource fetches the public messages of a wedding
type GuestBookSource interface {
	GuestBook(ctx context.Context, weddingID uint) ([]models.PublicGuestBookMessage, error)
}

type feed struct {
	subscribers map[Conn]struct{}
	refresh     chan struct{}
	cancel      context.CancelFunc
}

// WSHub fans guestbook updates out to open invitation pages. There is one
// poller per wedding while at least one page is subscribed.
type WSHub struct {
	mu       sync.RWMutex
	feeds    map[uint]*feed
	source   GuestBookSource
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWSHub creates a new guestbook hub
func NewWSHub(source GuestBookSource, interval time.Duration) *WSHub {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WSHub{
		feeds:    make(map[uint]*feed),
		source:   source,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Register subscribes conn to a wedding's guestbook and starts its poller if needed
func (h *WSHub) Register(weddingID uint, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, exists := h.feeds[weddingID]
	if !exists {
		ctx, cancel := context.WithCancel(h.ctx)
		f = &feed{
			subscribers: make(map[Conn]struct{}),
			refresh:     make(chan struct{}, 1),
			cancel:      cancel,
		}
		h.feeds[weddingID] = f
		h.wg.Add(1)
		go h.poll(ctx, weddingID, f)
	}
	f.subscribers[conn] = struct{}{}

	log.Info().Uint("wedding_id", weddingID).Int("subscribers", len(f.subscribers)).Msg("Guestbook subscriber registered")
}

// Unregister removes conn; the last subscriber stops the poller
func (h *WSHub) Unregister(weddingID uint, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, exists := h.feeds[weddingID]
	if !exists {
		return
	}
	if _, ok := f.subscribers[conn]; !ok {
		return
	}
	delete(f.subscribers, conn)
	conn.Close()
	if len(f.subscribers) == 0 {
		f.cancel()
		delete(h.feeds, weddingID)
	}
	log.Info().Uint("wedding_id", weddingID).Msg("Guestbook subscriber unregistered")
}

// Refresh asks the wedding's poller to fetch now. It never blocks.
func (h *WSHub) Refresh(_ context.Context, weddingID uint) {
	h.mu.RLock()
	f, exists := h.feeds[weddingID]
	h.mu.RUnlock()
	if !exists {
		return
	}
	select {
	case f.refresh <- struct{}{}:
	default:
	}
}

// Subscribers returns how many pages follow the wedding
func (h *WSHub) Subscribers(weddingID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if f, ok := h.feeds[weddingID]; ok {
		return len(f.subscribers)
	}
	return 0
}

// Close stops every poller and closes all connections
func (h *WSHub) Close() {
	h.cancel()
	h.wg.Wait()

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, f := range h.feeds {
		for conn := range f.subscribers {
			conn.Close()
		}
		delete(h.feeds, id)
	}
}

func (h *WSHub) poll(ctx context.Context, weddingID uint, f *feed) {
	defer h.wg.Done()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.push(ctx, weddingID, f)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-f.refresh:
		}
		h.push(ctx, weddingID, f)
	}
}

func (h *WSHub) push(ctx context.Context, weddingID uint, f *feed) {
	msgs, err := h.source.GuestBook(ctx, weddingID)
	if err != nil {
		if ctx.Err() == nil {
			log.Error().Err(err).Uint("wedding_id", weddingID).Msg("Failed to poll guestbook")
		}
		return
	}

	message := WSMessage{
		Type:      "guestbook",
		Timestamp: time.Now().UnixMilli(),
		Data:      invitation.Visible(msgs),
	}
	data, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal guestbook message")
		return
	}

	h.mu.RLock()
	conns := make([]Conn, 0, len(f.subscribers))
	for conn := range f.subscribers {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := send(conn, data); err != nil {
			log.Error().Err(err).Uint("wedding_id", weddingID).Msg("Failed to push guestbook")
			h.Unregister(weddingID, conn)
		}
	}
}

func send(conn Conn, data []byte) error {
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
