package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/erain9/limitbook/pkg/messaging"
	"github.com/redis/go-redis/v9"
)

const tradesKey = "trades:recent"

// Config holds Redis connection configuration.
type Config struct {
	Addr      string
	Password  string
	DB        int
	PoolSize  int
	MaxTrades int
}

// NewClient creates a Redis client and verifies the connection.
func NewClient(cfg Config) (*redis.Client, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// TradeStore keeps the most recent executions in a Redis sorted set, scored
// by the engine sequence number so retrieval order matches execution order
// exactly, with FIFO eviction beyond MaxTrades.
type TradeStore struct {
	client    *redis.Client
	maxTrades int
}

// NewTradeStore creates a Redis-backed trade store.
func NewTradeStore(cfg Config) (*TradeStore, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return newTradeStore(client, cfg.MaxTrades), nil
}

func newTradeStore(client *redis.Client, maxTrades int) *TradeStore {
	if maxTrades <= 0 {
		maxTrades = 10000
	}
	return &TradeStore{
		client:    client,
		maxTrades: maxTrades,
	}
}

// Save persists one trade and trims the history to the retention limit.
func (s *TradeStore) Save(ctx context.Context, trade *messaging.TradeMessage) error {
	data, err := json.Marshal(trade)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, tradesKey, redis.Z{
		Score:  float64(trade.Seq),
		Member: data,
	})
	pipe.ZRemRangeByRank(ctx, tradesKey, 0, int64(-s.maxTrades-1))

	_, err = pipe.Exec(ctx)
	return err
}

// Recent returns up to limit trades, most recent first.
func (s *TradeStore) Recent(ctx context.Context, limit int) ([]*messaging.TradeMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	results, err := s.client.ZRevRange(ctx, tradesKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	trades := make([]*messaging.TradeMessage, 0, len(results))
	for _, data := range results {
		var trade messaging.TradeMessage
		if err := json.Unmarshal([]byte(data), &trade); err != nil {
			continue
		}
		trades = append(trades, &trade)
	}

	return trades, nil
}

// SendTradeMessage implements messaging.MessageSender, letting the store sit
// directly behind a trade feed.
func (s *TradeStore) SendTradeMessage(trade *messaging.TradeMessage) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return s.Save(ctx, trade)
}

// Close closes the underlying client.
func (s *TradeStore) Close() error {
	return s.client.Close()
}

var _ messaging.MessageSender = (*TradeStore)(nil)
