package queue

import (
	"context"

	"github.com/erain9/limitbook/pkg/event"
	"github.com/rs/zerolog/log"
)

// DepthFeed implements event.Publisher, forwarding book deltas to the
// market-data topic through the pooled senders. Publish never blocks; since
// every delta carries the level's absolute state and a cancel is always
// followed by its level's delta, dropping under pressure loses nothing a
// later message does not restate.
type DepthFeed struct {
	ch   chan *DepthMessage
	done chan struct{}
}

// NewDepthFeed starts the feed's delivery goroutine.
func NewDepthFeed(buffer int) *DepthFeed {
	if buffer <= 0 {
		buffer = 4096
	}
	f := &DepthFeed{
		ch:   make(chan *DepthMessage, buffer),
		done: make(chan struct{}),
	}
	go f.run()
	return f
}

// Publish implements event.Publisher.
func (f *DepthFeed) Publish(ev event.Event) {
	depth, ok := ev.(event.Depth)
	if !ok {
		return
	}
	msg := &DepthMessage{
		Side:     depth.Side,
		Price:    depth.Price,
		Quantity: depth.Quantity,
		Orders:   depth.Orders,
		Seq:      depth.Seq,
	}
	select {
	case f.ch <- msg:
	default:
	}
}

func (f *DepthFeed) run() {
	for {
		select {
		case msg := <-f.ch:
			if err := SendMessage(context.Background(), msg); err != nil {
				log.Error().
					Err(err).
					Str("side", msg.Side).
					Str("price", msg.Price).
					Msg("Failed to deliver depth message")
			}
		case <-f.done:
			return
		}
	}
}

// Close stops the delivery goroutine; queued messages may be discarded.
func (f *DepthFeed) Close() {
	close(f.done)
}
