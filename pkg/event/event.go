// Package event defines the notifications the matching engine emits and the
// fan-out machinery that delivers them to transports. The engine publishes
// through the Publisher interface so that the core package never depends on a
// concrete delivery mechanism (WebSocket, Kafka, Redis).
package event

// Type tags an event on the wire.
type Type string

// Event types
const (
	TypeTrade    Type = "trade"
	TypeDepth    Type = "depth"
	TypeCancel   Type = "cancel"
	TypeSnapshot Type = "orderbook"
)

// Event is implemented by every notification the engine emits.
type Event interface {
	EventType() Type
}

// Trade reports a single execution. Price carries the maker order's price as
// a decimal string; quantities are integral units.
type Trade struct {
	ID          uint64 `json:"id"`
	BuyOrderID  uint64 `json:"buy_order_id"`
	SellOrderID uint64 `json:"sell_order_id"`
	Price       string `json:"price"`
	Quantity    int64  `json:"quantity"`
	TakerSide   string `json:"taker_side"`
	Seq         uint64 `json:"seq"`
}

// EventType implements Event.
func (Trade) EventType() Type { return TypeTrade }

// Depth reports the new aggregate state of one price level. Quantity is the
// absolute remaining quantity at the level after the mutation; zero means the
// level no longer exists. Deltas are idempotent: replaying a Depth event after
// a snapshot that already contains it is harmless.
type Depth struct {
	Side     string `json:"side"`
	Price    string `json:"price"`
	Quantity int64  `json:"quantity"`
	Orders   int    `json:"orders"`
	Seq      uint64 `json:"seq"`
}

// EventType implements Event.
func (Depth) EventType() Type { return TypeDepth }

// Cancel reports the removal of a resting order.
type Cancel struct {
	OrderID  uint64 `json:"order_id"`
	Side     string `json:"side"`
	Price    string `json:"price"`
	Quantity int64  `json:"quantity"`
	Seq      uint64 `json:"seq"`
}

// EventType implements Event.
func (Cancel) EventType() Type { return TypeCancel }
