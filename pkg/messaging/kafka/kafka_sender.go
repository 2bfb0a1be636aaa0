package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/erain9/limitbook/pkg/messaging"
	"github.com/segmentio/kafka-go"
)

// KafkaMessageSender implements MessageSender using Kafka
type KafkaMessageSender struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaMessageSender creates a new Kafka message sender
func NewKafkaMessageSender(brokerAddr, topic string) (*KafkaMessageSender, error) {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokerAddr),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &KafkaMessageSender{
		writer: writer,
		topic:  topic,
	}, nil
}

// SendTradeMessage publishes a trade to the feed topic, keyed by trade id so
// consumers can partition without reordering a single trade's updates.
func (k *KafkaMessageSender) SendTradeMessage(trade *messaging.TradeMessage) error {
	data, err := json.Marshal(trade)
	if err != nil {
		return fmt.Errorf("failed to marshal trade message: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(trade.TradeID, 10)),
		Value: data,
		Time:  time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka writer
func (k *KafkaMessageSender) Close() error {
	return k.writer.Close()
}
