package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
)

const (
	defaultBrokerList = "localhost:9092"
	defaultTopic      = "limitbook-depth"
	maxRetry          = 5
)

// newSyncProducer is swapped out in tests.
var newSyncProducer = sarama.NewSyncProducer

// DepthMessage is the wire form of one price level update on the market-data
// feed. Quantity is the absolute remaining volume at the level, so consumers
// can apply messages idempotently; zero means the level is gone.
type DepthMessage struct {
	Side     string `json:"side"`
	Price    string `json:"price"`
	Quantity int64  `json:"quantity"`
	Orders   int    `json:"orders"`
	Seq      uint64 `json:"seq"`
}

// QueueMessageSender publishes depth messages to Kafka through a sarama
// synchronous producer.
type QueueMessageSender struct {
	producer sarama.SyncProducer
	topic    string
}

// NewQueueMessageSender connects a producer to the configured brokers.
func NewQueueMessageSender(brokers []string, topic string) (*QueueMessageSender, error) {
	if len(brokers) == 0 {
		brokers = []string{defaultBrokerList}
	}
	if topic == "" {
		topic = defaultTopic
	}

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = maxRetry

	producer, err := newSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &QueueMessageSender{
		producer: producer,
		topic:    topic,
	}, nil
}

// SendDepthMessage publishes one depth update, keyed by side and price so a
// compacted topic retains the latest state of every level.
func (q *QueueMessageSender) SendDepthMessage(ctx context.Context, msg *DepthMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal depth message: %w", err)
	}

	_, _, err = q.producer.SendMessage(&sarama.ProducerMessage{
		Topic: q.topic,
		Key:   sarama.StringEncoder(msg.Side + ":" + msg.Price),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	return nil
}

// Close closes the underlying producer.
func (q *QueueMessageSender) Close() error {
	return q.producer.Close()
}

// QueueMessageConsumer reads depth messages back off the feed topic.
type QueueMessageConsumer struct {
	consumer sarama.Consumer
	topic    string
	done     chan struct{}
}

// NewQueueMessageConsumer connects a partition consumer to the brokers.
func NewQueueMessageConsumer(brokers []string, topic string) (*QueueMessageConsumer, error) {
	if len(brokers) == 0 {
		brokers = []string{defaultBrokerList}
	}
	if topic == "" {
		topic = defaultTopic
	}

	consumer, err := sarama.NewConsumer(brokers, sarama.NewConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer: %w", err)
	}

	return &QueueMessageConsumer{
		consumer: consumer,
		topic:    topic,
		done:     make(chan struct{}),
	}, nil
}

// ConsumeDepthMessages blocks, delivering decoded messages to the handler
// until Close is called. Undecodable payloads are skipped.
func (c *QueueMessageConsumer) ConsumeDepthMessages(handler func(*DepthMessage) error) error {
	partitionConsumer, err := c.consumer.ConsumePartition(c.topic, 0, sarama.OffsetNewest)
	if err != nil {
		return fmt.Errorf("failed to consume partition: %w", err)
	}
	defer partitionConsumer.Close()

	for {
		select {
		case msg, ok := <-partitionConsumer.Messages():
			if !ok {
				return nil
			}
			var depth DepthMessage
			if err := json.Unmarshal(msg.Value, &depth); err != nil {
				continue
			}
			if err := handler(&depth); err != nil {
				return err
			}
		case <-c.done:
			return nil
		}
	}
}

// Close stops consumption and closes the connection.
func (c *QueueMessageConsumer) Close() error {
	close(c.done)
	return c.consumer.Close()
}
