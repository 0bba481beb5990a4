// Package broadcast fans order changes out to connected real-time clients.
package broadcast

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"orderflow/internal/database/models"
)

const MessageTypeOrderUpdate = "orderUpdate"

type Message struct {
	Type  string        `json:"type"`
	Order *models.Order `json:"order"`
}

// Subscriber is one connected client.
type Subscriber interface {
	ID() string
	// Open reports whether the subscriber can still accept messages.
	Open() bool
	Send(payload []byte) error
	Close()
}

// Mirror receives a copy of every broadcast payload, e.g. to publish it on
// an external bus. Mirror failures never affect local delivery.
type Mirror interface {
	Publish(ctx context.Context, payload []byte) error
}

// Hub is the registry of live subscribers. It is created at server start
// and closed at shutdown; Close disconnects every subscriber.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]Subscriber
	closed bool
	mirror Mirror
	log    zerolog.Logger
}

func NewHub(mirror Mirror, log zerolog.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]Subscriber),
		mirror: mirror,
		log:    log.With().Str("component", "hub").Logger(),
	}
}

// Register adds sub. It reports false when the hub is already closed.
func (h *Hub) Register(sub Subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.subs[sub.ID()] = sub
	h.log.Debug().Str("subscriber", sub.ID()).Int("subscribers", len(h.subs)).Msg("subscriber connected")
	return true
}

func (h *Hub) Unregister(sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub.ID()]; !ok {
		return
	}
	delete(h.subs, sub.ID())
	h.log.Debug().Str("subscriber", sub.ID()).Int("subscribers", len(h.subs)).Msg("subscriber disconnected")
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// BroadcastOrder sends an orderUpdate message for order to every open
// subscriber. Clients filter by order id themselves.
func (h *Hub) BroadcastOrder(order *models.Order) {
	payload, err := json.Marshal(Message{Type: MessageTypeOrderUpdate, Order: order})
	if err != nil {
		h.log.Error().Err(err).Int64("order_id", order.ID).Msg("failed to encode order update")
		return
	}

	h.mu.RLock()
	subs := make([]Subscriber, 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	var failed []Subscriber
	delivered := 0
	for _, sub := range subs {
		if !sub.Open() {
			continue
		}
		if err := sub.Send(payload); err != nil {
			h.log.Warn().Err(err).Str("subscriber", sub.ID()).Msg("dropping subscriber after failed send")
			failed = append(failed, sub)
			continue
		}
		delivered++
	}

	for _, sub := range failed {
		h.Unregister(sub)
		sub.Close()
	}

	h.log.Debug().
		Int64("order_id", order.ID).
		Str("status", string(order.Status)).
		Int("delivered", delivered).
		Msg("order update broadcast")

	if h.mirror != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := h.mirror.Publish(ctx, payload); err != nil {
			h.log.Warn().Err(err).Int64("order_id", order.ID).Msg("failed to mirror order update")
		}
	}
}

// Close disconnects all subscribers and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[string]Subscriber)
	h.closed = true
	h.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
	h.log.Info().Int("subscribers", len(subs)).Msg("hub closed")
}
