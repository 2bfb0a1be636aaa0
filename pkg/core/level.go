package core

import "github.com/nikolaydubina/fpdecimal"

// priceLevel is all resting orders at one exact price, kept in arrival order.
// The FIFO queue is an intrusive doubly-linked list over Order so that both
// head pops (matching) and mid-queue unlinks (cancellation) are O(1).
//
// Invariant: a level is only ever reachable from a bookSide index while it
// holds at least one order; volume equals the sum of remaining quantities.
type priceLevel struct {
	price  fpdecimal.Decimal
	head   *Order
	tail   *Order
	volume int64
	count  int

	// Neighbours in the side's best-first list.
	next, prev *priceLevel
}

func newPriceLevel(price fpdecimal.Decimal) *priceLevel {
	return &priceLevel{price: price}
}

// front returns the oldest order at this level, or nil if empty.
func (l *priceLevel) front() *Order {
	return l.head
}

// append adds an order to the FIFO tail.
func (l *priceLevel) append(o *Order) {
	o.level = l
	o.prev = l.tail
	o.next = nil
	if l.tail != nil {
		l.tail.next = o
	} else {
		l.head = o
	}
	l.tail = o
	l.volume += o.quantity
	l.count++
}

// unlink removes an order from anywhere in the queue.
func (l *priceLevel) unlink(o *Order) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		l.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		l.tail = o.prev
	}
	o.next, o.prev, o.level = nil, nil, nil
	l.volume -= o.quantity
	l.count--
}

// reduce records a partial fill of an order resting at this level.
func (l *priceLevel) reduce(qty int64) {
	l.volume -= qty
}

func (l *priceLevel) empty() bool {
	return l.count == 0
}
