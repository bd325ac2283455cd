package ws

import (
	"log/slog"
	"sync"

	"github.com/okeefe/typeduel/internal/model"
)

// Hub tracks live connections by connection id and delivers outbound
// protocol messages to them. It implements session.Notifier.
type Hub struct {
	mu      sync.RWMutex
	clients map[model.ConnectionID]*client
	logger  *slog.Logger
}

// NewHub creates an empty Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[model.ConnectionID]*client),
		logger:  logger.With(slog.String("component", "ws-hub")),
	}
}

// register adds a connection to the hub
func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("connection registered",
		slog.String("conn", string(c.id)),
		slog.Int("total", count))
}

// unregister removes a connection and closes its send queue, ending the
// write pump. Safe to call for an id that was already removed.
func (h *Hub) unregister(id model.ConnectionID) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		close(c.send)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.logger.Info("connection unregistered",
			slog.String("conn", string(id)),
			slog.Int("total", count))
	}
}

// Send delivers an envelope to one connection. Unknown connections are
// dropped silently (the peer raced a disconnect); a full send queue drops
// the message rather than blocking the session.
func (h *Hub) Send(connID model.ConnectionID, env model.Envelope) {
	h.mu.RLock()
	c, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	if !c.enqueue(env) {
		h.logger.Warn("message dropped, send queue full",
			slog.String("conn", string(connID)),
			slog.String("event", string(env.Event)))
	}
}

// Count returns the number of live connections
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
