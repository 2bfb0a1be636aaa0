package core

// registry maps a live order id to the order's in-book location. Entries are
// weak back-references: one is created when an order starts resting and is
// removed on full fill or cancellation, so a lookup hit always points at an
// order with quantity > 0 sitting in exactly one price level.
//
// Every registry mutation happens in the same critical section as the book
// mutation it mirrors; a divergence between the two is a programming error,
// not a runtime condition.
type registry struct {
	orders map[uint64]*Order
}

func newRegistry() *registry {
	return &registry{orders: make(map[uint64]*Order)}
}

func (r *registry) register(o *Order) {
	r.orders[o.id] = o
}

// locate returns the resting order for id, or nil if the id is unknown,
// already filled, or already cancelled.
func (r *registry) locate(id uint64) *Order {
	return r.orders[id]
}

func (r *registry) unregister(id uint64) {
	delete(r.orders, id)
}

func (r *registry) size() int {
	return len(r.orders)
}
