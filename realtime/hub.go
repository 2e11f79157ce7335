package realtime

import (
	"context"
	"sync"

	"github.com/chattu/chattu-backend/logger"
	"github.com/chattu/chattu-backend/models"
)

// MessageStore is the one durable-write side effect the session handler
// needs from the document store.
type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
}

// Hub owns the connection registry and fans events out to live
// connections. HTTP handlers hold the same Hub the websocket sessions
// run on, so both paths route through one Emit implementation.
type Hub struct {
	registry *Registry
	messages MessageStore

	mu    sync.RWMutex
	conns map[string]*Connection // connection id -> connection
}

func NewHub(messages MessageStore) *Hub {
	return &Hub{
		registry: NewRegistry(),
		messages: messages,
		conns:    make(map[string]*Connection),
	}
}

func (h *Hub) Registry() *Registry {
	return h.registry
}

// Emit dispatches data under event to the live connections of the given
// users. Users with no connection silently receive nothing; there is no
// queuing or delivery confirmation.
func (h *Hub) Emit(event Event, userIDs []string, data interface{}) {
	h.emitTo(h.registry.LookupMany(userIDs), event, data)
}

// emitExcept is Emit minus one connection, used so typing indicators
// never echo back to their sender.
func (h *Hub) emitExcept(event Event, userIDs []string, skipConnID string, data interface{}) {
	connIDs := h.registry.LookupMany(userIDs)
	filtered := connIDs[:0]
	for _, id := range connIDs {
		if id != skipConnID {
			filtered = append(filtered, id)
		}
	}
	h.emitTo(filtered, event, data)
}

func (h *Hub) emitTo(connIDs []string, event Event, data interface{}) {
	if len(connIDs) == 0 {
		return
	}
	frame, err := EncodeFrame(event, data)
	if err != nil {
		logger.Error().Err(err).Str("event", string(event)).Msg("encoding frame failed")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, id := range connIDs {
		c, ok := h.conns[id]
		if !ok {
			continue
		}
		c.enqueue(frame)
	}
}

// register admits a connection: the connection table and the registry
// are updated together under the hub lock.
func (h *Hub) register(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c.id] = c
	h.registry.Register(c.UserID(), c.id)
	logger.Info().Str("user", c.UserID()).Str("conn", c.id).Msg("connection admitted")
}

// unregister drops a closed connection. The registry entry is removed
// only if it still points at this connection, so a newer registration
// for the same user survives an older tab's disconnect.
func (h *Hub) unregister(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[c.id]; !ok {
		return
	}
	delete(h.conns, c.id)
	close(c.send)
	if current, ok := h.registry.Lookup(c.UserID()); ok && current == c.id {
		h.registry.Remove(c.UserID())
	}
	logger.Info().Str("user", c.UserID()).Str("conn", c.id).Msg("connection closed")
}

// Shutdown closes every live connection.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	conns := make([]*Connection, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}
