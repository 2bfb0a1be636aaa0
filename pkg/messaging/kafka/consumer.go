package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/erain9/limitbook/pkg/messaging"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// TradeConsumer reads the trade feed topic and hands each decoded message to
// a handler.
type TradeConsumer struct {
	reader *kafka.Reader
}

// NewTradeConsumer creates a consumer joined to the given group.
func NewTradeConsumer(brokerAddr, topic, groupID string) *TradeConsumer {
	return &TradeConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: []string{brokerAddr},
			Topic:   topic,
			GroupID: groupID,
		}),
	}
}

// ConsumeTradeMessages blocks, delivering messages until the context is
// cancelled or the reader is closed. Undecodable messages are skipped.
func (c *TradeConsumer) ConsumeTradeMessages(ctx context.Context, handler func(*messaging.TradeMessage) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read trade message: %w", err)
		}

		var trade messaging.TradeMessage
		if err := json.Unmarshal(msg.Value, &trade); err != nil {
			continue
		}
		if err := handler(&trade); err != nil {
			return err
		}
	}
}

// Close closes the underlying reader.
func (c *TradeConsumer) Close() error {
	return c.reader.Close()
}

// SetupConsumer starts a consumer goroutine that logs every trade seen on the
// feed. Used by the server for feed visibility; failures are soft.
func SetupConsumer(ctx context.Context, logger zerolog.Logger, brokerAddr, topic, groupID string) *TradeConsumer {
	consumer := NewTradeConsumer(brokerAddr, topic, groupID)

	go func() {
		logger.Info().Str("topic", topic).Msg("Starting Kafka trade consumer")
		err := consumer.ConsumeTradeMessages(ctx, func(msg *messaging.TradeMessage) error {
			logger.Info().
				Uint64("trade_id", msg.TradeID).
				Uint64("buy_order_id", msg.BuyOrderID).
				Uint64("sell_order_id", msg.SellOrderID).
				Str("price", msg.Price).
				Int64("quantity", msg.Quantity).
				Str("taker_side", msg.TakerSide).
				Msg("Received trade message")
			return nil
		})
		if err != nil {
			logger.Error().Err(err).Msg("Kafka consumer error")
		}
	}()

	return consumer
}
