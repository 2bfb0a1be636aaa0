package messaging

import (
	"testing"
	"time"

	"github.com/erain9/limitbook/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTradeFeedForwardsTrades(t *testing.T) {
	sender := NewMockMessageSender()
	feed := NewTradeFeed(sender, 16)

	feed.Publish(event.Trade{
		ID:          3,
		BuyOrderID:  1,
		SellOrderID: 2,
		Price:       "100.000",
		Quantity:    5,
		TakerSide:   "sell",
		Seq:         3,
	})
	// Non-trade events are not forwarded.
	feed.Publish(event.Depth{Side: "buy", Price: "100.000", Quantity: 5, Seq: 4})

	feed.Close()

	trades := sender.Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, uint64(3), trades[0].TradeID)
	assert.Equal(t, "100.000", trades[0].Price)
	assert.Equal(t, int64(5), trades[0].Quantity)
	assert.Equal(t, "sell", trades[0].TakerSide)
}

func TestTradeFeedDropsOnOverflowWithoutBlocking(t *testing.T) {
	block := make(chan struct{})
	sender := &blockingSender{release: block}
	feed := NewTradeFeed(sender, 1)

	start := time.Now()
	for i := 0; i < 10; i++ {
		feed.Publish(event.Trade{ID: uint64(i + 1), Seq: uint64(i + 1)})
	}
	// All publishes return immediately even though delivery is stuck.
	assert.Less(t, time.Since(start), time.Second)

	close(block)
	feed.Close()
}

type blockingSender struct {
	release chan struct{}
}

func (s *blockingSender) SendTradeMessage(trade *TradeMessage) error {
	<-s.release
	return nil
}
