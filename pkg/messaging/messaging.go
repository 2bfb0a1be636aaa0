package messaging

// MessageSender defines an interface for delivering executed trades to an
// external feed. It decouples the engine wiring from the concrete transport
// (Kafka in production, an in-memory recorder in tests).
type MessageSender interface {
	SendTradeMessage(trade *TradeMessage) error
}

// MultiSender fans one trade out to several senders. Delivery continues past
// individual failures; the first error is returned.
type MultiSender []MessageSender

// SendTradeMessage implements MessageSender.
func (m MultiSender) SendTradeMessage(trade *TradeMessage) error {
	var firstErr error
	for _, s := range m {
		if err := s.SendTradeMessage(trade); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// TradeMessage is the wire representation of one execution published to the
// trade feed.
type TradeMessage struct {
	TradeID     uint64 `json:"trade_id"`
	BuyOrderID  uint64 `json:"buy_order_id"`
	SellOrderID uint64 `json:"sell_order_id"`
	Price       string `json:"price"`
	Quantity    int64  `json:"quantity"`
	TakerSide   string `json:"taker_side"`
	Seq         uint64 `json:"seq"`
}
