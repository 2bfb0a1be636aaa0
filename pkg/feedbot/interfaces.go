package feedbot

import "context"

// Quote is one order the bot wants resting on the book.
type Quote struct {
	Side     string
	Price    string
	Quantity int64
}

// MidpointSource supplies the price the bot quotes around.
type MidpointSource interface {
	// Midpoint returns the current midpoint price of the book.
	Midpoint(ctx context.Context) (float64, error)
	Close() error
}

// OrderPlacer places and cancels orders on the engine.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, quote Quote) (uint64, error)
	CancelOrder(ctx context.Context, orderID uint64) error
	Close() error
}

// QuotingStrategy computes the quotes to rest given the current midpoint.
type QuotingStrategy interface {
	CalculateQuotes(ctx context.Context, midpoint float64) ([]Quote, error)
}
