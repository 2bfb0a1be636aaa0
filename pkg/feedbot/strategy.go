package feedbot

import (
	"context"
	"math"
	"strconv"

	"github.com/rs/zerolog"
)

// LayeredSymmetricQuoting rests an equal ladder of bids and asks around the
// midpoint, spaced by a fixed percentage step.
type LayeredSymmetricQuoting struct {
	cfg    *Config
	logger zerolog.Logger
}

// NewLayeredSymmetricQuoting creates a new LayeredSymmetricQuoting strategy.
func NewLayeredSymmetricQuoting(cfg *Config, logger zerolog.Logger) QuotingStrategy {
	return &LayeredSymmetricQuoting{
		cfg:    cfg,
		logger: logger.With().Str("component", "LayeredSymmetricQuoting").Logger(),
	}
}

// CalculateQuotes implements QuotingStrategy.
func (s *LayeredSymmetricQuoting) CalculateQuotes(ctx context.Context, midpoint float64) ([]Quote, error) {
	baseHalfSpread := midpoint * (s.cfg.BaseSpreadPercent / 2 / 100)
	priceStep := midpoint * (s.cfg.PriceStepPercent / 100)

	quotes := make([]Quote, 0, s.cfg.NumLevels*2)

	for i := 1; i <= s.cfg.NumLevels; i++ {
		bidPrice := midpoint - baseHalfSpread - float64(i-1)*priceStep
		askPrice := midpoint + baseHalfSpread + float64(i-1)*priceStep
		if bidPrice <= 0 {
			continue
		}

		// The engine keeps three fractional digits, so quotes round to match.
		bidPriceStr := strconv.FormatFloat(math.Round(bidPrice*1e3)/1e3, 'f', 3, 64)
		askPriceStr := strconv.FormatFloat(math.Round(askPrice*1e3)/1e3, 'f', 3, 64)

		quotes = append(quotes,
			Quote{Side: "buy", Price: bidPriceStr, Quantity: s.cfg.OrderSize},
			Quote{Side: "sell", Price: askPriceStr, Quantity: s.cfg.OrderSize},
		)

		s.logger.Debug().
			Int("level", i).
			Str("bid_price", bidPriceStr).
			Str("ask_price", askPriceStr).
			Int64("quantity", s.cfg.OrderSize).
			Msg("Calculated quote pair")
	}

	return quotes, nil
}
