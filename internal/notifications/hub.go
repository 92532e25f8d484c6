// Package notifications delivers live view-counter updates to public page
// viewers over websockets, fanned out through Redis pub/sub so every
// instance sees every update.
package notifications

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per profile page
	maxConnsPerProfile = 256
	// Max total connections
	maxTotalConns = 10000
)

// ViewHub maps username -> connected viewers of that public page.
type ViewHub struct {
	mu         sync.RWMutex
	conns      map[string]map[*Client]struct{}
	totalConns int
	shutdown   chan struct{}
	done       chan struct{}
}

// Name returns a human-readable identifier for this hub.
func (h *ViewHub) Name() string { return "view hub" }

// NewViewHub creates a new ViewHub instance.
func NewViewHub() *ViewHub {
	return &ViewHub{
		conns:    make(map[string]map[*Client]struct{}),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Register a connection watching the given username's page. Returns the
// Client or an error if limits are exceeded.
func (h *ViewHub) Register(username string, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()

	if h.totalConns >= maxTotalConns {
		h.mu.Unlock()
		return nil, errors.New("server connection limit reached")
	}

	m, ok := h.conns[username]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[username] = m
	}

	if len(m) >= maxConnsPerProfile {
		h.mu.Unlock()
		return nil, errors.New("profile connection limit reached")
	}

	client := NewClient(h, conn, username)
	m[client] = struct{}{}
	h.totalConns++
	h.mu.Unlock()

	return client, nil
}

// UnregisterClient removes a client from the hub.
func (h *ViewHub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.conns[client.Username]; ok {
		if _, exists := m[client]; exists {
			delete(m, client)
			h.totalConns--
		}
		if len(m) == 0 {
			delete(h.conns, client.Username)
		}
	}
}

// Broadcast sends message to all viewers of username's page.
func (h *ViewHub) Broadcast(username string, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.conns[username]; ok {
		data := []byte(message)
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// ViewerCount reports how many connections currently watch a page.
func (h *ViewHub) ViewerCount(username string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[username])
}

// StartWiring connects the Notifier to this hub: it subscribes to the view
// channels and forwards payloads to the matching page's viewers.
func (h *ViewHub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartViewSubscriber(ctx, func(channel, payload string) {
		username, ok := strings.CutPrefix(channel, viewChannelPrefix)
		if !ok || username == "" {
			log.Printf("invalid view channel: %s", channel)
			return
		}
		h.Broadcast(username, payload)
	})
}

// Shutdown gracefully closes all websocket connections
func (h *ViewHub) Shutdown(_ context.Context) error {
	close(h.shutdown)

	h.mu.Lock()
	for username, viewers := range h.conns {
		for client := range viewers {
			if client.Conn == nil {
				continue
			}
			if err := client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
				log.Printf("failed to write close message for %s viewer: %v", username, err)
			}
			if err := client.Conn.Close(); err != nil {
				log.Printf("failed to close websocket for %s viewer: %v", username, err)
			}
		}
	}
	h.conns = make(map[string]map[*Client]struct{})
	h.mu.Unlock()

	close(h.done)

	return nil
}
