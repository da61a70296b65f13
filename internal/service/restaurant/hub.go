package restaurant

import (
	"sync"

	"github.com/foodles/order-api/internal/model"
	"github.com/foodles/order-api/pkg/metrics"
)

// Message is one push frame delivered to subscribers: either the full
// snapshot sent on connect or a batch of changes from a monitor tick.
type Message struct {
	Type     string                            `json:"type"`
	Statuses map[string]model.RestaurantStatus `json:"statuses,omitempty"`
	Changes  []model.StatusChange              `json:"changes,omitempty"`
}

const (
	MessageSnapshot = "snapshot"
	MessageChanges  = "changes"
)

// Subscriber is one connected listener. Closing it marks the connection
// dead; broadcasts skip closed subscribers, and removal from the hub happens
// only through Unsubscribe.
type Subscriber struct {
	ch     chan Message
	mu     sync.Mutex
	closed bool
}

// C is the subscriber's receive channel.
func (s *Subscriber) C() <-chan Message {
	return s.ch
}

// Close marks the subscriber dead. Safe to call more than once.
func (s *Subscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Subscriber) deliver(msg Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- msg:
		return true
	default:
		// Slow consumer: drop the frame rather than stall the broadcast.
		return false
	}
}

// Hub fans status messages out to the subscriber set.
type Hub struct {
	mu      sync.Mutex
	subs    map[*Subscriber]struct{}
	metrics *metrics.Metrics
}

func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{
		subs:    make(map[*Subscriber]struct{}),
		metrics: m,
	}
}

// Subscribe registers a listener and queues the snapshot message so the new
// subscriber starts consistent with current state.
func (h *Hub) Subscribe(snapshot Message) *Subscriber {
	sub := &Subscriber{ch: make(chan Message, 16)}
	sub.deliver(snapshot)

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.Subscribers.Inc()
	}
	return sub
}

// Unsubscribe removes a listener from the set.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	_, ok := h.subs[sub]
	delete(h.subs, sub)
	h.mu.Unlock()

	sub.Close()
	if ok && h.metrics != nil {
		h.metrics.Subscribers.Dec()
	}
}

// Broadcast delivers a message to every open subscriber. Closed subscribers
// are skipped, not removed.
func (h *Hub) Broadcast(msg Message) {
	h.mu.Lock()
	subs := make([]*Subscriber, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(msg)
	}
}

// Len reports the current subscriber count.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
