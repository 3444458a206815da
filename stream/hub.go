// Package stream implements the live-update broadcast channel: a hub
// that fans each published reading out to every open subscription.
package stream

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"envirostream/telemetry"
)

// DefaultQueueLen is the per-subscription delivery queue size.
const DefaultQueueLen = 16

// Subscription is one connected viewer's delivery handle. Readings
// arrive on C in publish order. C is closed when the subscription
// ends, whether by Unsubscribe or by a delivery failure.
type Subscription struct {
	ID string
	C  <-chan telemetry.Reading

	ch chan telemetry.Reading
}

// Hub owns the set of open subscriptions. Delivery to one subscription
// never blocks on, or fails because of, another.
type Hub struct {
	mu       sync.Mutex
	subs     map[string]*Subscription
	queueLen int
	dropped  atomic.Uint64
	log      *slog.Logger
}

func NewHub(queueLen int, log *slog.Logger) *Hub {
	if queueLen <= 0 {
		queueLen = DefaultQueueLen
	}
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		subs:     make(map[string]*Subscription),
		queueLen: queueLen,
		log:      log,
	}
}

// Subscribe creates a new open subscription. Only readings published
// after this call are delivered; there is no backlog replay.
func (h *Hub) Subscribe() *Subscription {
	ch := make(chan telemetry.Reading, h.queueLen)
	sub := &Subscription{
		ID: uuid.NewString(),
		C:  ch,
		ch: ch,
	}

	h.mu.Lock()
	h.subs[sub.ID] = sub
	n := len(h.subs)
	h.mu.Unlock()

	h.log.Info("subscription opened", "id", sub.ID, "active", n)
	return sub
}

// Unsubscribe closes the subscription and releases its resources. It
// is safe to call more than once and after a delivery failure already
// closed the subscription.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	_, open := h.subs[sub.ID]
	if open {
		delete(h.subs, sub.ID)
		close(sub.ch)
	}
	n := len(h.subs)
	h.mu.Unlock()

	if open {
		h.log.Info("subscription closed", "id", sub.ID, "active", n)
	}
}

// Publish delivers the reading to every open subscription. A
// subscription whose queue is full is treated as a failed consumer: it
// is closed and removed within this call, without affecting delivery
// to the others. Returns the delivered and failed counts.
func (h *Hub) Publish(r telemetry.Reading) (delivered, failed int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.subs {
		select {
		case sub.ch <- r:
			delivered++
		default:
			delete(h.subs, id)
			close(sub.ch)
			h.dropped.Add(1)
			failed++
			h.log.Warn("subscription queue full, closing", "id", id)
		}
	}
	return delivered, failed
}

// Len returns the number of open subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Dropped returns the total number of subscriptions closed due to
// delivery failure since the hub was created.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}
