package messaging

import (
	"github.com/erain9/limitbook/pkg/event"
	"github.com/rs/zerolog/log"
)

// TradeFeed bridges the engine's event stream onto a MessageSender. Publish
// never blocks: trades queue on a bounded channel drained by a background
// goroutine, so a slow broker cannot stall matching. An overflowing queue is
// logged loudly per trade rather than failing silently.
type TradeFeed struct {
	sender MessageSender
	ch     chan *TradeMessage
	done   chan struct{}
}

// NewTradeFeed starts the feed's delivery goroutine.
func NewTradeFeed(sender MessageSender, buffer int) *TradeFeed {
	if buffer <= 0 {
		buffer = 1024
	}
	f := &TradeFeed{
		sender: sender,
		ch:     make(chan *TradeMessage, buffer),
		done:   make(chan struct{}),
	}
	go f.run()
	return f
}

// Publish implements event.Publisher, forwarding trades and ignoring all
// other event kinds.
func (f *TradeFeed) Publish(ev event.Event) {
	trade, ok := ev.(event.Trade)
	if !ok {
		return
	}
	msg := &TradeMessage{
		TradeID:     trade.ID,
		BuyOrderID:  trade.BuyOrderID,
		SellOrderID: trade.SellOrderID,
		Price:       trade.Price,
		Quantity:    trade.Quantity,
		TakerSide:   trade.TakerSide,
		Seq:         trade.Seq,
	}
	select {
	case f.ch <- msg:
	default:
		log.Error().
			Uint64("trade_id", msg.TradeID).
			Msg("Trade feed queue full, dropping trade")
	}
}

func (f *TradeFeed) run() {
	defer close(f.done)
	for msg := range f.ch {
		if err := f.sender.SendTradeMessage(msg); err != nil {
			log.Error().
				Err(err).
				Uint64("trade_id", msg.TradeID).
				Msg("Failed to deliver trade to feed")
		}
	}
}

// Close drains the queue and stops the delivery goroutine.
func (f *TradeFeed) Close() {
	close(f.ch)
	<-f.done
}
