package feedbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// HTTPClient talks to the engine's HTTP API. It implements both OrderPlacer
// and MidpointSource.
type HTTPClient struct {
	cfg    *Config
	client *http.Client
	logger zerolog.Logger
}

// NewHTTPClient creates a client for the configured engine address.
func NewHTTPClient(cfg *Config, logger zerolog.Logger) *HTTPClient {
	return &HTTPClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		logger: logger.With().Str("component", "HTTPClient").Logger(),
	}
}

// PlaceOrder implements OrderPlacer.
func (c *HTTPClient) PlaceOrder(ctx context.Context, quote Quote) (uint64, error) {
	payload, err := json.Marshal(map[string]any{
		"side":     quote.Side,
		"price":    quote.Price,
		"quantity": quote.Quantity,
		"user_id":  c.cfg.BotID,
	})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ServerAddr+"/api/orders", bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("submit returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var result struct {
		Success bool   `json:"success"`
		OrderID uint64 `json:"order_id"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, err
	}
	if !result.Success {
		return 0, fmt.Errorf("submit rejected: %s", result.Message)
	}
	return result.OrderID, nil
}

// CancelOrder implements OrderPlacer.
func (c *HTTPClient) CancelOrder(ctx context.Context, orderID uint64) error {
	payload, err := json.Marshal(map[string]any{"order_id": orderID})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ServerAddr+"/api/orders/cancel", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	// A quote that filled since the last cycle is gone already, not an error.
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cancel returned %s", resp.Status)
	}
	return nil
}

// Midpoint implements MidpointSource by reading the top of the book. When
// either side is empty the configured reference price fills in, so the bot
// can seed liquidity into an empty book.
func (c *HTTPClient) Midpoint(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.ServerAddr+"/api/orderbook?depth=1", nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("orderbook returned %s", resp.Status)
	}

	var snap struct {
		Bids []struct {
			Price string `json:"price"`
		} `json:"bids"`
		Asks []struct {
			Price string `json:"price"`
		} `json:"asks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return 0, err
	}

	if len(snap.Bids) == 0 || len(snap.Asks) == 0 {
		c.logger.Debug().Float64("reference_price", c.cfg.ReferencePrice).Msg("Book is one-sided, using reference price")
		return c.cfg.ReferencePrice, nil
	}

	bestBid, err := strconv.ParseFloat(snap.Bids[0].Price, 64)
	if err != nil {
		return 0, fmt.Errorf("bad bid price %q: %w", snap.Bids[0].Price, err)
	}
	bestAsk, err := strconv.ParseFloat(snap.Asks[0].Price, 64)
	if err != nil {
		return 0, fmt.Errorf("bad ask price %q: %w", snap.Asks[0].Price, err)
	}
	return (bestBid + bestAsk) / 2, nil
}

// Close implements OrderPlacer and MidpointSource.
func (c *HTTPClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
