package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// changeSubject is the NATS subject change notices travel on
const changeSubject = "renteazy.changes"

// Change is a notice that a resource collection was mutated. Clients
// use it to refetch instead of polling on a timer.
type Change struct {
	Resource string    `json:"resource"`
	Action   string    `json:"action"`
	ID       string    `json:"id"`
	At       time.Time `json:"at"`
}

// Actions
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Hub fans change notices out to subscribers. With a NATS connection
// attached, notices travel through NATS so every server instance sees
// them; without one the hub degrades to in-process delivery.
type Hub struct {
	nc *nats.Conn

	mu   sync.RWMutex
	subs map[chan Change]struct{}
}

// NewHub creates a hub. nc may be nil.
func NewHub(nc *nats.Conn) *Hub {
	return &Hub{
		nc:   nc,
		subs: make(map[chan Change]struct{}),
	}
}

// Start runs the hub until the context is cancelled. With NATS attached
// it subscribes to the change subject and fans incoming notices out to
// local subscribers.
func (h *Hub) Start(ctx context.Context) error {
	if h.nc == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	sub, err := h.nc.Subscribe(changeSubject, func(msg *nats.Msg) {
		var change Change
		if err := json.Unmarshal(msg.Data, &change); err != nil {
			log.Error().Err(err).Msg("Failed to unmarshal change notice")
			return
		}
		h.broadcast(change)
	})
	if err != nil {
		return fmt.Errorf("subscribe changes: %w", err)
	}

	log.Info().Str("subject", changeSubject).Msg("Realtime hub started")

	<-ctx.Done()

	sub.Unsubscribe()
	return ctx.Err()
}

// Publish sends a change notice to all subscribers
func (h *Hub) Publish(resource, action, id string) {
	change := Change{
		Resource: resource,
		Action:   action,
		ID:       id,
		At:       time.Now(),
	}

	if h.nc != nil {
		data, err := json.Marshal(change)
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal change notice")
			return
		}
		// Delivery back to local subscribers happens through the
		// NATS subscription.
		if err := h.nc.Publish(changeSubject, data); err != nil {
			log.Error().Err(err).Msg("Failed to publish change notice")
		}
		return
	}

	h.broadcast(change)
}

// Subscribe registers a subscriber. The returned cancel function must
// be called when the subscriber goes away.
func (h *Hub) Subscribe() (<-chan Change, func()) {
	ch := make(chan Change, 16)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}

	return ch, cancel
}

// broadcast delivers a change to all local subscribers. Slow
// subscribers drop notices rather than block the hub.
func (h *Hub) broadcast(change Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs {
		select {
		case ch <- change:
		default:
		}
	}
}
