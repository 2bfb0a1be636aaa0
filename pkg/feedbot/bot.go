package feedbot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Bot keeps a ladder of quotes resting on the book, refreshing it around the
// current midpoint on every update interval.
type Bot struct {
	cfg          *Config
	logger       zerolog.Logger
	placer       OrderPlacer
	midpoints    MidpointSource
	strategy     QuotingStrategy
	activeOrders sync.Map // map[uint64]bool
	stopCh       chan struct{}
	wg           sync.WaitGroup
}

// NewBot creates a new liquidity bot.
func NewBot(cfg *Config, logger zerolog.Logger, placer OrderPlacer, midpoints MidpointSource, strategy QuotingStrategy) *Bot {
	return &Bot{
		cfg:       cfg,
		logger:    logger.With().Str("component", "Bot").Logger(),
		placer:    placer,
		midpoints: midpoints,
		strategy:  strategy,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the quoting loop.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info().
		Str("server_addr", b.cfg.ServerAddr).
		Dur("update_interval", b.cfg.UpdateInterval).
		Msg("Starting liquidity bot")

	b.wg.Add(1)
	go b.run(ctx)

	return nil
}

// Stop gracefully shuts the bot down and pulls its quotes off the book.
func (b *Bot) Stop(ctx context.Context) error {
	b.logger.Info().Msg("Stopping liquidity bot")

	close(b.stopCh)

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info().Msg("Quoting loop stopped")
	case <-ctx.Done():
		return fmt.Errorf("timeout waiting for quoting loop to stop: %w", ctx.Err())
	}

	if err := b.cancelAllOrders(ctx); err != nil {
		b.logger.Error().Err(err).Msg("Failed to cancel quotes during shutdown")
		return fmt.Errorf("failed to cancel quotes during shutdown: %w", err)
	}

	return nil
}

func (b *Bot) run(ctx context.Context) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.cfg.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Context cancelled, stopping quoting loop")
			return
		case <-b.stopCh:
			return
		case <-ticker.C:
			if err := b.refreshQuotes(ctx); err != nil {
				// Keep quoting on the next tick regardless.
				b.logger.Error().Err(err).Msg("Failed to refresh quotes")
			}
		}
	}
}

// refreshQuotes performs a single quoting cycle: read the midpoint, pull the
// previous ladder, rest the new one.
func (b *Bot) refreshQuotes(ctx context.Context) error {
	midpoint, err := b.midpoints.Midpoint(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch midpoint: %w", err)
	}

	quotes, err := b.strategy.CalculateQuotes(ctx, midpoint)
	if err != nil {
		return fmt.Errorf("failed to calculate quotes: %w", err)
	}

	if err := b.cancelAllOrders(ctx); err != nil {
		return fmt.Errorf("failed to cancel previous quotes: %w", err)
	}

	for _, quote := range quotes {
		orderID, err := b.placer.PlaceOrder(ctx, quote)
		if err != nil {
			b.logger.Error().
				Err(err).
				Str("side", quote.Side).
				Str("price", quote.Price).
				Msg("Failed to place quote")
			continue
		}

		b.activeOrders.Store(orderID, true)

		b.logger.Debug().
			Uint64("order_id", orderID).
			Str("side", quote.Side).
			Str("price", quote.Price).
			Int64("quantity", quote.Quantity).
			Msg("Placed quote")
	}

	return nil
}

func (b *Bot) cancelAllOrders(ctx context.Context) error {
	var lastErr error
	b.activeOrders.Range(func(key, _ any) bool {
		orderID := key.(uint64)
		if err := b.placer.CancelOrder(ctx, orderID); err != nil {
			b.logger.Error().Err(err).Uint64("order_id", orderID).Msg("Failed to cancel quote")
			lastErr = err
			return true
		}
		b.activeOrders.Delete(orderID)
		return true
	})
	return lastErr
}
