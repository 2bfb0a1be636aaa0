package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversToAllSubscribers(t *testing.T) {
	h := NewHub(8)
	a := h.Subscribe()
	b := h.Subscribe()
	assert.Equal(t, 2, h.Len())

	h.Publish(Trade{ID: 1, Price: "100.000", Quantity: 5, Seq: 1})

	for _, sub := range []*Subscription{a, b} {
		ev := <-sub.C()
		trade, ok := ev.(Trade)
		require.True(t, ok)
		assert.Equal(t, uint64(1), trade.ID)
	}
}

func TestHubUnsubscribeClosesQueue(t *testing.T) {
	h := NewHub(8)
	sub := h.Subscribe()

	h.Unsubscribe(sub)
	assert.Equal(t, 0, h.Len())

	_, open := <-sub.C()
	assert.False(t, open)

	// Double unsubscribe must not panic.
	h.Unsubscribe(sub)
}

func TestHubDropsDeltasWhenFull(t *testing.T) {
	h := NewHub(1)
	sub := h.Subscribe()

	h.Publish(Depth{Side: "buy", Price: "100.000", Quantity: 10, Seq: 1})
	h.Publish(Depth{Side: "buy", Price: "100.000", Quantity: 20, Seq: 2})

	// Queue held one delta; the overflow was dropped, not queued.
	ev := <-sub.C()
	depth, ok := ev.(Depth)
	require.True(t, ok)
	assert.Equal(t, uint64(1), depth.Seq)

	select {
	case <-sub.C():
		t.Fatal("expected empty queue after overflow drop")
	default:
	}
	assert.Equal(t, 1, h.Len())
}

func TestHubClosesSlowSubscriberOnTrade(t *testing.T) {
	h := NewHub(1)
	slow := h.Subscribe()

	h.Publish(Depth{Side: "buy", Price: "100.000", Quantity: 10, Seq: 1})
	// The queue is full; a trade cannot be dropped, so the subscription goes.
	h.Publish(Trade{ID: 2, Price: "100.000", Quantity: 5, Seq: 2})

	assert.Equal(t, 0, h.Len())

	// The queued delta is still readable, then the channel reports closed.
	ev, open := <-slow.C()
	require.True(t, open)
	_, isDepth := ev.(Depth)
	assert.True(t, isDepth)
	_, open = <-slow.C()
	assert.False(t, open)
}

func TestHubPublishWithoutSubscribers(t *testing.T) {
	h := NewHub(0)
	h.Publish(Trade{ID: 1, Seq: 1})
	assert.Equal(t, 0, h.Len())
}

func TestMultiPublisher(t *testing.T) {
	a := NewHub(4)
	b := NewHub(4)
	subA := a.Subscribe()
	subB := b.Subscribe()

	var pub Publisher = Multi{a, b}
	pub.Publish(Cancel{OrderID: 7, Side: "sell", Price: "99.000", Quantity: 3, Seq: 9})

	evA := <-subA.C()
	evB := <-subB.C()
	assert.Equal(t, evA, evB)
	cancel, ok := evA.(Cancel)
	require.True(t, ok)
	assert.Equal(t, uint64(7), cancel.OrderID)
}
