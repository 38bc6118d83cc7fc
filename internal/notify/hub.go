// Package notify owns the live subscription registry and the publish
// path that fans order-status events out to connected clients. Delivery
// is at-most-once: events for users with no open connection are dropped.
package notify

import (
	"fmt"
	"sync"

	"github.com/vlasovmax/shopcore/internal/domain"
	"go.uber.org/zap"
)

// Subscriber is one live connection handle. Send must not block; it
// reports whether the event was accepted.
type Subscriber interface {
	Send(event domain.NotificationEvent) bool
}

// UserGroup derives the group key all of a user's connections share.
func UserGroup(userID int64) string {
	return fmt.Sprintf("user_%d", userID)
}

type group struct {
	mu      sync.Mutex
	members map[Subscriber]struct{}
}

// Hub maps group keys to the set of live subscribers for that key.
// The registry lock only guards the map of groups; fan-out runs under
// the per-group lock, so publishing to one user never waits on another.
type Hub struct {
	mu      sync.RWMutex
	groups  map[string]*group
	logger  *zap.Logger
	metrics *Metrics
}

func NewHub(l *zap.Logger, metrics *Metrics) *Hub {
	return &Hub{
		groups:  make(map[string]*group),
		logger:  l,
		metrics: metrics,
	}
}

// Subscribe registers the handle under key. Idempotent per handle.
// The registry lock is held across the member insertion: releasing it
// first would let a concurrent Unsubscribe delete the group between
// lookup and insert, stranding the handle in an unreachable set.
func (h *Hub) Subscribe(key string, sub Subscriber) {
	h.mu.Lock()
	g, ok := h.groups[key]
	if !ok {
		g = &group{members: make(map[Subscriber]struct{})}
		h.groups[key] = g
	}

	g.mu.Lock()
	if _, exists := g.members[sub]; !exists {
		g.members[sub] = struct{}{}
		h.metrics.Subscribers.Inc()
	}
	g.mu.Unlock()
	h.mu.Unlock()
}

// Unsubscribe removes the handle from key's set. Removing a handle that
// was never registered, or from a missing group, is a no-op.
func (h *Hub) Unsubscribe(key string, sub Subscriber) {
	h.mu.Lock()
	g, ok := h.groups[key]
	if !ok {
		h.mu.Unlock()
		return
	}

	g.mu.Lock()
	if _, exists := g.members[sub]; exists {
		delete(g.members, sub)
		h.metrics.Subscribers.Dec()
	}
	empty := len(g.members) == 0
	g.mu.Unlock()

	if empty {
		delete(h.groups, key)
	}
	h.mu.Unlock()
}

// Publish delivers the event to every subscriber currently registered
// under key. An empty or missing group drops the event silently.
func (h *Hub) Publish(key string, event domain.NotificationEvent) {
	h.mu.RLock()
	g, ok := h.groups[key]
	h.mu.RUnlock()

	if !ok {
		h.metrics.Dropped.Inc()
		h.logger.Debug("no subscribers for group, event dropped",
			zap.String("group", key),
			zap.String("type", event.Type),
		)
		return
	}

	g.mu.Lock()
	for sub := range g.members {
		if sub.Send(event) {
			h.metrics.Delivered.Inc()
		} else {
			h.metrics.Dropped.Inc()
			h.logger.Warn("subscriber queue full, event dropped",
				zap.String("group", key),
			)
		}
	}
	g.mu.Unlock()
}

// GroupSize reports how many handles are registered under key.
func (h *Hub) GroupSize(key string) int {
	h.mu.RLock()
	g, ok := h.groups[key]
	h.mu.RUnlock()

	if !ok {
		return 0
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.members)
}
