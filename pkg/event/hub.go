package event

import "sync"

// Subscription is one consumer's bounded event queue. The channel is closed
// when the subscriber is removed, either explicitly via Hub.Unsubscribe or by
// the hub itself when the subscriber is too slow to keep a Trade.
type Subscription struct {
	ch     chan Event
	closed bool
}

// C returns the receive side of the subscription queue.
func (s *Subscription) C() <-chan Event { return s.ch }

// Hub fans engine events out to any number of subscribers, each behind a
// bounded channel so a slow consumer can never stall the matching engine.
//
// Backpressure policy: when a subscriber's queue is full, Depth and Cancel
// deltas are dropped (the subscriber can recover from the next snapshot), but
// a Trade is never dropped silently; instead the subscription is closed,
// forcing the transport to resynchronize the client from a fresh snapshot.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	buffer int
}

// NewHub creates a hub whose subscribers each get a queue of the given size.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a new consumer. Transports must send a full book
// snapshot to the client after subscribing and before relaying queued events,
// so the client never misses state published before the subscription existed.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{ch: make(chan Event, h.buffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes a consumer and closes its queue. Safe to call for a
// subscription the hub already closed.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(sub)
}

// Publish implements Publisher.
func (h *Hub) Publish(e Event) {
	_, isTrade := e.(Trade)

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.ch <- e:
		default:
			if isTrade {
				h.remove(sub)
			}
		}
	}
}

// Len reports the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) remove(sub *Subscription) {
	if sub.closed {
		return
	}
	sub.closed = true
	delete(h.subs, sub)
	close(sub.ch)
}
