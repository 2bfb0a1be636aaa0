package feedbot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlacer struct {
	mu       sync.Mutex
	nextID   uint64
	placed   []Quote
	canceled []uint64
	placeErr error
}

func (p *fakePlacer) PlaceOrder(_ context.Context, quote Quote) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.placeErr != nil {
		return 0, p.placeErr
	}
	p.nextID++
	p.placed = append(p.placed, quote)
	return p.nextID, nil
}

func (p *fakePlacer) CancelOrder(_ context.Context, orderID uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.canceled = append(p.canceled, orderID)
	return nil
}

func (p *fakePlacer) Close() error { return nil }

func (p *fakePlacer) placedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.placed)
}

func (p *fakePlacer) canceledCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.canceled)
}

type fakeMidpoints struct {
	price float64
	err   error
}

func (f *fakeMidpoints) Midpoint(context.Context) (float64, error) { return f.price, f.err }
func (f *fakeMidpoints) Close() error                              { return nil }

func newTestBot(t *testing.T, placer OrderPlacer, midpoints MidpointSource) *Bot {
	t.Helper()
	cfg := testConfig()
	cfg.UpdateInterval = 10 * time.Millisecond
	strategy := NewLayeredSymmetricQuoting(cfg, zerolog.Nop())
	return NewBot(cfg, zerolog.Nop(), placer, midpoints, strategy)
}

func TestBotPlacesAndRefreshesQuotes(t *testing.T) {
	placer := &fakePlacer{}
	bot := newTestBot(t, placer, &fakeMidpoints{price: 100.0})

	ctx := context.Background()
	require.NoError(t, bot.Start(ctx))

	// Wait for at least two quoting cycles.
	require.Eventually(t, func() bool {
		return placer.placedCount() >= 12
	}, time.Second, 5*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, bot.Stop(stopCtx))

	// Each refresh cancels the previous ladder before placing the next.
	assert.GreaterOrEqual(t, placer.canceledCount(), 6)
}

func TestBotStopCancelsRestingQuotes(t *testing.T) {
	placer := &fakePlacer{}
	bot := newTestBot(t, placer, &fakeMidpoints{price: 100.0})

	ctx := context.Background()
	require.NoError(t, bot.Start(ctx))

	require.Eventually(t, func() bool {
		return placer.placedCount() >= 6
	}, time.Second, 5*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, bot.Stop(stopCtx))

	// Everything placed was eventually canceled.
	assert.Equal(t, placer.placedCount(), placer.canceledCount())
}

func TestBotKeepsRunningAfterMidpointError(t *testing.T) {
	placer := &fakePlacer{}
	midpoints := &fakeMidpoints{err: errors.New("book unavailable")}
	bot := newTestBot(t, placer, midpoints)

	ctx := context.Background()
	require.NoError(t, bot.Start(ctx))

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, placer.placedCount())

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, bot.Stop(stopCtx))
}
