package core

import (
	"encoding/json"
	"strings"

	"github.com/nikolaydubina/fpdecimal"
)

// Side represents buy or sell side of an order
type Side int

// Order sides
const (
	Sell Side = iota
	Buy
)

// String returns side as string
func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// Opposite returns the counterparty side
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// ParseSide converts a wire string into a Side. Accepts "buy"/"sell" in any
// case; anything else fails with ErrInvalidSide.
func ParseSide(v string) (Side, error) {
	switch strings.ToLower(v) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	default:
		return 0, ErrInvalidSide
	}
}

// Order is a resting limit order. Identity fields are immutable after
// acceptance; only the remaining quantity decreases as the order fills.
// The id doubles as the time-priority tiebreak: ids are assigned from the
// engine's logical sequence, so a smaller id always means earlier arrival.
type Order struct {
	id       uint64
	side     Side
	price    fpdecimal.Decimal
	quantity int64
	original int64
	user     string

	// FIFO links within the price level, owned by the book side.
	next, prev *Order
	level      *priceLevel
}

func newOrder(id uint64, side Side, price fpdecimal.Decimal, quantity int64, user string) *Order {
	return &Order{
		id:       id,
		side:     side,
		price:    price,
		quantity: quantity,
		original: quantity,
		user:     user,
	}
}

// ID returns the engine-assigned order id
func (o *Order) ID() uint64 {
	return o.id
}

// Side returns the side of the order
func (o *Order) Side() Side {
	return o.side
}

// Price returns the limit price
func (o *Order) Price() fpdecimal.Decimal {
	return o.price
}

// Quantity returns the remaining unfilled quantity
func (o *Order) Quantity() int64 {
	return o.quantity
}

// OriginalQty returns the quantity the order was submitted with
func (o *Order) OriginalQty() int64 {
	return o.original
}

// User returns the submitter identity, if any
func (o *Order) User() string {
	return o.user
}

// fill reduces the remaining quantity. Callers guarantee qty <= remaining.
func (o *Order) fill(qty int64) {
	o.quantity -= qty
}

// RestingOrder is the public projection of an order on the book.
type RestingOrder struct {
	ID       uint64 `json:"id"`
	Side     string `json:"side"`
	Price    string `json:"price"`
	Quantity int64  `json:"quantity"`
	User     string `json:"user,omitempty"`
}

// ToResting returns the public projection of the order.
func (o *Order) ToResting() RestingOrder {
	return RestingOrder{
		ID:       o.id,
		Side:     o.side.String(),
		Price:    o.price.String(),
		Quantity: o.quantity,
		User:     o.user,
	}
}

// String implements fmt.Stringer
func (o *Order) String() string {
	j, _ := json.Marshal(o.ToResting())
	return string(j)
}
