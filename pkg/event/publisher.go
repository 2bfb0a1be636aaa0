package event

// Publisher receives events from the matching engine. Publish is called from
// inside the engine's critical section and therefore must never block:
// implementations either hand off to a buffered queue or drop.
type Publisher interface {
	Publish(Event)
}

// Nop discards all events. It is the engine's default publisher.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(Event) {}

// Multi fans one event out to several publishers in order.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(e Event) {
	for _, p := range m {
		p.Publish(e)
	}
}
