package core

import (
	"encoding/json"

	"github.com/erain9/limitbook/pkg/event"
	"github.com/nikolaydubina/fpdecimal"
)

// Trade is one execution between a taker and a resting maker. Trades are
// append-only facts: once returned or published they are never mutated.
// The price is always the maker's price, and the id comes from the same
// logical sequence as order ids, so trade ids are unique and monotonic too.
type Trade struct {
	ID          uint64
	BuyOrderID  uint64
	SellOrderID uint64
	Price       fpdecimal.Decimal
	Quantity    int64
	TakerSide   Side
}

// MarshalJSON implements json.Marshaler, rendering the price as a string.
func (t Trade) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          uint64 `json:"id"`
		BuyOrderID  uint64 `json:"buy_order_id"`
		SellOrderID uint64 `json:"sell_order_id"`
		Price       string `json:"price"`
		Quantity    int64  `json:"quantity"`
		TakerSide   string `json:"taker_side"`
	}{
		ID:          t.ID,
		BuyOrderID:  t.BuyOrderID,
		SellOrderID: t.SellOrderID,
		Price:       t.Price.String(),
		Quantity:    t.Quantity,
		TakerSide:   t.TakerSide.String(),
	})
}

// toEvent converts the trade for publication.
func (t Trade) toEvent() event.Trade {
	return event.Trade{
		ID:          t.ID,
		BuyOrderID:  t.BuyOrderID,
		SellOrderID: t.SellOrderID,
		Price:       t.Price.String(),
		Quantity:    t.Quantity,
		TakerSide:   t.TakerSide.String(),
		Seq:         t.ID,
	}
}

// Done describes the outcome of a submit: the assigned order id, the trades
// produced in match order, any resting orders cancelled on the way (self-trade
// policy), and where the remaining quantity ended up.
type Done struct {
	OrderID   uint64
	Trades    []Trade
	Canceled  []uint64
	Processed int64
	Left      int64
	Stored    bool
}

// Level is the aggregated public view of one price level.
type Level struct {
	Price    fpdecimal.Decimal
	Quantity int64
	Orders   int
}

// MarshalJSON implements json.Marshaler.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Price    string `json:"price"`
		Quantity int64  `json:"quantity"`
		Orders   int    `json:"orders"`
	}{
		Price:    l.Price.String(),
		Quantity: l.Quantity,
		Orders:   l.Orders,
	})
}

// Snapshot is a consistent projection of the whole book at one sequence
// number: every level of both sides, best price first.
type Snapshot struct {
	Seq  uint64  `json:"seq"`
	Bids []Level `json:"bids"`
	Asks []Level `json:"asks"`
}

// SelfTradePolicy decides what happens when an incoming order would cross a
// resting order submitted under the same user identity.
type SelfTradePolicy int

const (
	// SelfTradeAllow matches self-crossing orders like any others.
	SelfTradeAllow SelfTradePolicy = iota
	// SelfTradeCancelResting cancels the resting order instead of matching
	// against it and keeps matching through the rest of the level.
	SelfTradeCancelResting
)

// ParseSelfTradePolicy maps a configuration string onto a policy. Unknown
// values fall back to SelfTradeAllow.
func ParseSelfTradePolicy(v string) SelfTradePolicy {
	if v == "cancel_resting" {
		return SelfTradeCancelResting
	}
	return SelfTradeAllow
}
