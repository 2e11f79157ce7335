// Package realtime bridges HTTP handlers and websocket connections: it
// tracks which authenticated user owns which live connection and routes
// named events to the right subset of connections.
package realtime

import (
	"sync"
)

// Registry maps a user id to the id of their current live connection.
// One entry per connected user; a later registration for the same user
// overwrites the earlier one. All access goes through these four
// operations, guarded by the mutex.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]string // user id -> connection id
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]string)}
}

// Register records the user's live connection, replacing any previous
// mapping for the same user.
func (r *Registry) Register(userID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[userID] = connID
}

// Lookup returns the user's live connection id, if any.
func (r *Registry) Lookup(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.conns[userID]
	return id, ok
}

// LookupMany resolves a set of user ids to live connection ids. Empty
// ids, users with no connection, and duplicates are dropped.
func (r *Registry) LookupMany(userIDs []string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{}, len(userIDs))
	out := make([]string, 0, len(userIDs))
	for _, userID := range userIDs {
		if userID == "" {
			continue
		}
		connID, ok := r.conns[userID]
		if !ok {
			continue
		}
		if _, dup := seen[connID]; dup {
			continue
		}
		seen[connID] = struct{}{}
		out = append(out, connID)
	}
	return out
}

// Remove deletes the user's mapping; a no-op if none exists.
func (r *Registry) Remove(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, userID)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
