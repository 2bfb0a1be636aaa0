package core

import "github.com/nikolaydubina/fpdecimal"

// bookSide is the price-ordered index of one half of the book. The same
// structure serves bids and asks; the only behavioural difference between the
// two is the ordering comparator, so the direction is parameterized rather
// than duplicated (head is always the best price: highest for bids, lowest
// for asks).
//
// Levels live both in a map keyed by the exact price string, for O(1) lookup,
// and in a best-first doubly-linked list, for ordered traversal. Price-keyed
// insertion walks the list, so inserts are O(n) in distinct price levels in
// the worst case but O(1) for the common case of orders arriving at or near
// the top of the book.
type bookSide struct {
	side   Side
	levels map[string]*priceLevel
	head   *priceLevel
	tail   *priceLevel
	depth  int
}

func newBookSide(side Side) *bookSide {
	return &bookSide{
		side:   side,
		levels: make(map[string]*priceLevel),
	}
}

// better reports whether price a has priority over price b on this side.
func (s *bookSide) better(a, b fpdecimal.Decimal) bool {
	if s.side == Buy {
		return a.GreaterThan(b)
	}
	return a.LessThan(b)
}

// best returns the top-of-book level, or nil if the side is empty.
func (s *bookSide) best() *priceLevel {
	return s.head
}

// level returns the level at an exact price, or nil.
func (s *bookSide) level(price fpdecimal.Decimal) *priceLevel {
	return s.levels[price.String()]
}

// insert appends an order to the FIFO tail of its price level, creating and
// splicing in the level if the price is new.
func (s *bookSide) insert(o *Order) *priceLevel {
	key := o.price.String()
	if l, ok := s.levels[key]; ok {
		l.append(o)
		return l
	}

	l := newPriceLevel(o.price)
	l.append(o)
	s.levels[key] = l
	s.depth++

	if s.head == nil {
		s.head = l
		s.tail = l
		return l
	}

	if s.better(l.price, s.head.price) {
		l.next = s.head
		s.head.prev = l
		s.head = l
		return l
	}
	if !s.better(l.price, s.tail.price) {
		l.prev = s.tail
		s.tail.next = l
		s.tail = l
		return l
	}

	cur := s.head.next
	for !s.better(l.price, cur.price) {
		cur = cur.next
	}
	l.next = cur
	l.prev = cur.prev
	cur.prev.next = l
	cur.prev = l
	return l
}

// remove unlinks an order from its level, dropping the level from the index
// the moment it empties.
func (s *bookSide) remove(o *Order) {
	l := o.level
	if l == nil {
		return
	}
	l.unlink(o)
	if l.empty() {
		s.removeLevel(l)
	}
}

func (s *bookSide) removeLevel(l *priceLevel) {
	delete(s.levels, l.price.String())
	s.depth--

	if l.prev != nil {
		l.prev.next = l.next
	} else {
		s.head = l.next
	}
	if l.next != nil {
		l.next.prev = l.prev
	} else {
		s.tail = l.prev
	}
	l.next, l.prev = nil, nil
}

// len returns the number of distinct price levels.
func (s *bookSide) len() int {
	return s.depth
}

// snapshotLevels walks best-first and aggregates each level. max <= 0 means
// no depth limit.
func (s *bookSide) snapshotLevels(max int) []Level {
	out := make([]Level, 0, s.depth)
	for l := s.head; l != nil; l = l.next {
		if max > 0 && len(out) >= max {
			break
		}
		out = append(out, Level{
			Price:    l.price,
			Quantity: l.volume,
			Orders:   l.count,
		})
	}
	return out
}

// restingOrders appends every order on the side, best level first, FIFO
// within a level.
func (s *bookSide) restingOrders(dst []RestingOrder) []RestingOrder {
	for l := s.head; l != nil; l = l.next {
		for o := l.head; o != nil; o = o.next {
			dst = append(dst, o.ToResting())
		}
	}
	return dst
}
