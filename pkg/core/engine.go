package core

import (
	"context"
	"sync"

	"github.com/erain9/limitbook/pkg/event"
	"github.com/erain9/limitbook/pkg/otel"
	"github.com/nikolaydubina/fpdecimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Engine is the limit order book matching engine: it owns both book sides and
// the order registry, executes price/time-priority continuous matching, and
// publishes trades and book deltas through an event.Publisher.
//
// Concurrency model: the book is one logical resource with one writer at a
// time. Submit and Cancel serialize on the write lock; Snapshot and Orders
// take the read lock and therefore always observe a fully-applied state.
// Events are published inside the critical section so their order matches
// mutation order exactly; publishers are required to be non-blocking, so the
// engine never waits on a consumer.
type Engine struct {
	mu sync.RWMutex

	bids *bookSide
	asks *bookSide
	reg  *registry

	// seq is the logical clock: order ids, trade ids and event sequence
	// numbers are all drawn from it, so every fact the engine produces is
	// totally ordered.
	seq uint64

	halted    bool
	selfTrade SelfTradePolicy
	pub       event.Publisher
}

// EngineConfig carries the engine's operational knobs.
type EngineConfig struct {
	// SelfTrade decides how an order crossing the same user's resting order
	// is handled. Default: match normally.
	SelfTrade SelfTradePolicy
	// Publisher receives trades, depth deltas and cancellations. Nil means
	// events are discarded.
	Publisher event.Publisher
}

// NewEngine creates an empty book.
func NewEngine(cfg EngineConfig) *Engine {
	pub := cfg.Publisher
	if pub == nil {
		pub = event.Nop{}
	}
	return &Engine{
		bids:      newBookSide(Buy),
		asks:      newBookSide(Sell),
		reg:       newRegistry(),
		selfTrade: cfg.SelfTrade,
		pub:       pub,
	}
}

// Submit accepts a limit order, matches it against resting liquidity and
// rests any remainder on the book. It returns the assigned order id and the
// trades produced, in match order. Validation failures reject the order
// before any state changes.
func (e *Engine) Submit(ctx context.Context, side Side, price fpdecimal.Decimal, quantity int64, user string) (*Done, error) {
	_, span := otel.StartEngineSpan(ctx, otel.SpanSubmitOrder,
		attribute.String(otel.AttributeOrderSide, side.String()),
		attribute.String(otel.AttributeOrderPrice, price.String()),
		attribute.Int64(otel.AttributeOrderQuantity, quantity),
	)
	defer span.End()

	if side != Buy && side != Sell {
		span.SetStatus(codes.Error, "invalid side")
		return nil, ErrInvalidSide
	}
	if price.LessThanOrEqual(fpdecimal.Zero) {
		span.SetStatus(codes.Error, "invalid price")
		return nil, ErrInvalidPrice
	}
	if quantity <= 0 {
		span.SetStatus(codes.Error, "invalid quantity")
		return nil, ErrInvalidQuantity
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.halted {
		span.SetStatus(codes.Error, "engine halted")
		return nil, ErrHalted
	}

	e.seq++
	incoming := newOrder(e.seq, side, price, quantity, user)
	done := &Done{OrderID: incoming.id}

	events := e.match(incoming, done)

	if incoming.quantity > 0 {
		own := e.sideOf(side)
		l := own.insert(incoming)
		e.reg.register(incoming)
		done.Stored = true
		events = append(events, event.Depth{
			Side:     side.String(),
			Price:    l.price.String(),
			Quantity: l.volume,
			Orders:   l.count,
			Seq:      e.seq,
		})
	}
	done.Left = incoming.quantity

	for _, ev := range events {
		e.pub.Publish(ev)
	}

	otel.GetEngineMetrics().RecordSubmit(ctx, side.String(), int64(len(done.Trades)))
	otel.AddAttributes(span,
		attribute.Int64(otel.AttributeOrderID, int64(done.OrderID)),
		attribute.Int64(otel.AttributeExecutedQuantity, done.Processed),
		attribute.Int64(otel.AttributeRemainingQuantity, done.Left),
		attribute.Int(otel.AttributeTradeCount, len(done.Trades)),
	)
	span.SetStatus(codes.Ok, "order processed")

	return done, nil
}

// match consumes crossing liquidity from the opposite side, recording trades
// on done and returning the event stream in causal order: trades first, then
// the depth delta of each touched level.
func (e *Engine) match(incoming *Order, done *Done) []event.Event {
	opp := e.sideOf(incoming.side.Opposite())
	var events []event.Event

	for incoming.quantity > 0 {
		best := opp.best()
		if best == nil || !matchPrice(incoming.side, incoming.price, best.price) {
			break
		}

		levelPrice := best.price
		touched := false

		for incoming.quantity > 0 && !best.empty() {
			maker := best.front()

			if e.selfTrade == SelfTradeCancelResting && incoming.user != "" && maker.user == incoming.user {
				remaining := maker.quantity
				makerSide := maker.side
				makerID := maker.id
				opp.remove(maker)
				e.reg.unregister(makerID)
				done.Canceled = append(done.Canceled, makerID)
				e.seq++
				events = append(events, event.Cancel{
					OrderID:  makerID,
					Side:     makerSide.String(),
					Price:    levelPrice.String(),
					Quantity: remaining,
					Seq:      e.seq,
				})
				touched = true
				continue
			}

			fill := incoming.quantity
			if maker.quantity < fill {
				fill = maker.quantity
			}
			incoming.fill(fill)
			maker.fill(fill)
			best.reduce(fill)

			e.seq++
			trade := Trade{
				ID:        e.seq,
				Price:     levelPrice,
				Quantity:  fill,
				TakerSide: incoming.side,
			}
			if incoming.side == Buy {
				trade.BuyOrderID = incoming.id
				trade.SellOrderID = maker.id
			} else {
				trade.BuyOrderID = maker.id
				trade.SellOrderID = incoming.id
			}
			done.Trades = append(done.Trades, trade)
			done.Processed += fill
			events = append(events, trade.toEvent())
			touched = true

			if maker.quantity == 0 {
				makerID := maker.id
				opp.remove(maker)
				e.reg.unregister(makerID)
			}
		}

		if touched {
			events = append(events, e.depthEvent(opp, levelPrice))
		}
	}

	return events
}

// Cancel removes the remaining quantity of a resting order. Cancelling an
// unknown, already-filled or already-cancelled id fails with ErrOrderNotFound
// and changes nothing; trades already produced by the order are unaffected.
func (e *Engine) Cancel(ctx context.Context, id uint64) error {
	_, span := otel.StartEngineSpan(ctx, otel.SpanCancelOrder,
		attribute.Int64(otel.AttributeOrderID, int64(id)),
	)
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.halted {
		span.SetStatus(codes.Error, "engine halted")
		return ErrHalted
	}

	o := e.reg.locate(id)
	if o == nil {
		span.SetStatus(codes.Error, "order not found")
		return ErrOrderNotFound
	}

	side := e.sideOf(o.side)
	price := o.price
	remaining := o.quantity
	sideName := o.side.String()

	side.remove(o)
	e.reg.unregister(id)

	e.seq++
	e.pub.Publish(event.Cancel{
		OrderID:  id,
		Side:     sideName,
		Price:    price.String(),
		Quantity: remaining,
		Seq:      e.seq,
	})
	e.pub.Publish(e.depthEvent(side, price))

	otel.GetEngineMetrics().RecordCancel(ctx, sideName)
	span.SetStatus(codes.Ok, "order cancelled")
	return nil
}

// Snapshot returns a consistent aggregated view of the book, best price
// first on both sides. depth <= 0 means all levels.
func (e *Engine) Snapshot(depth int) Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return Snapshot{
		Seq:  e.seq,
		Bids: e.bids.snapshotLevels(depth),
		Asks: e.asks.snapshotLevels(depth),
	}
}

// Orders lists every resting order, best level first, FIFO within a level.
func (e *Engine) Orders() []RestingOrder {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]RestingOrder, 0, e.reg.size())
	out = e.bids.restingOrders(out)
	out = e.asks.restingOrders(out)
	return out
}

// BestBid returns the highest resting bid price.
func (e *Engine) BestBid() (fpdecimal.Decimal, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if l := e.bids.best(); l != nil {
		return l.price, true
	}
	return fpdecimal.Zero, false
}

// BestAsk returns the lowest resting ask price.
func (e *Engine) BestAsk() (fpdecimal.Decimal, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if l := e.asks.best(); l != nil {
		return l.price, true
	}
	return fpdecimal.Zero, false
}

// Halt makes subsequent Submit and Cancel calls fail with ErrHalted until
// Resume. Read-only queries keep working.
func (e *Engine) Halt() {
	e.mu.Lock()
	e.halted = true
	e.mu.Unlock()
}

// Resume lifts a halt.
func (e *Engine) Resume() {
	e.mu.Lock()
	e.halted = false
	e.mu.Unlock()
}

// Halted reports whether the engine is accepting commands.
func (e *Engine) Halted() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.halted
}

func (e *Engine) sideOf(s Side) *bookSide {
	if s == Buy {
		return e.bids
	}
	return e.asks
}

// depthEvent captures the current aggregate of the level at price on side s;
// a vanished level reports quantity zero.
func (e *Engine) depthEvent(s *bookSide, price fpdecimal.Decimal) event.Depth {
	ev := event.Depth{
		Side:  s.side.String(),
		Price: price.String(),
		Seq:   e.seq,
	}
	if l := s.level(price); l != nil {
		ev.Quantity = l.volume
		ev.Orders = l.count
	}
	return ev
}

// matchPrice reports whether an order at orderPrice crosses the book at
// bookPrice.
func matchPrice(side Side, orderPrice, bookPrice fpdecimal.Decimal) bool {
	if side == Buy {
		return orderPrice.GreaterThanOrEqual(bookPrice)
	}
	return orderPrice.LessThanOrEqual(bookPrice)
}
