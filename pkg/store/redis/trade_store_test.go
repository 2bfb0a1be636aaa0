package redis

import (
	"context"
	"testing"

	"github.com/erain9/limitbook/pkg/messaging"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis initializes a Redis client for testing.
// It assumes Redis is running on localhost:6379.
// Flushes the DB before returning the client.
func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   0,
	})
	_, err := client.Ping(context.Background()).Result()
	if err != nil {
		t.Skipf("Skipping Redis tests: Cannot connect to Redis (%v)", err)
	}
	err = client.FlushDB(context.Background()).Err()
	if err != nil {
		t.Fatalf("Failed to flush Redis DB: %v", err)
	}
	return client
}

func tradeMsg(seq uint64, price string) *messaging.TradeMessage {
	return &messaging.TradeMessage{
		TradeID:     seq,
		BuyOrderID:  seq - 1,
		SellOrderID: seq - 2,
		Price:       price,
		Quantity:    10,
		TakerSide:   "buy",
		Seq:         seq,
	}
}

func TestTradeStore_SaveAndRecent(t *testing.T) {
	client := setupTestRedis(t)
	store := newTradeStore(client, 100)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, tradeMsg(3, "100.000")))
	require.NoError(t, store.Save(ctx, tradeMsg(5, "101.000")))
	require.NoError(t, store.Save(ctx, tradeMsg(8, "102.000")))

	trades, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, trades, 3)

	// Most recent execution first.
	assert.Equal(t, uint64(8), trades[0].Seq)
	assert.Equal(t, uint64(5), trades[1].Seq)
	assert.Equal(t, uint64(3), trades[2].Seq)
	assert.Equal(t, "102.000", trades[0].Price)
}

func TestTradeStore_RecentLimit(t *testing.T) {
	client := setupTestRedis(t)
	store := newTradeStore(client, 100)
	defer store.Close()

	ctx := context.Background()
	for seq := uint64(10); seq < 20; seq++ {
		require.NoError(t, store.Save(ctx, tradeMsg(seq, "100.000")))
	}

	trades, err := store.Recent(ctx, 4)
	require.NoError(t, err)
	require.Len(t, trades, 4)
	assert.Equal(t, uint64(19), trades[0].Seq)
	assert.Equal(t, uint64(16), trades[3].Seq)
}

func TestTradeStore_EvictsBeyondRetention(t *testing.T) {
	client := setupTestRedis(t)
	store := newTradeStore(client, 5)
	defer store.Close()

	ctx := context.Background()
	for seq := uint64(3); seq <= 12; seq++ {
		require.NoError(t, store.Save(ctx, tradeMsg(seq, "100.000")))
	}

	trades, err := store.Recent(ctx, 100)
	require.NoError(t, err)
	require.Len(t, trades, 5)
	assert.Equal(t, uint64(12), trades[0].Seq)
	assert.Equal(t, uint64(8), trades[4].Seq)
}

func TestTradeStore_ImplementsMessageSender(t *testing.T) {
	client := setupTestRedis(t)
	store := newTradeStore(client, 100)
	defer store.Close()

	var sender messaging.MessageSender = store
	require.NoError(t, sender.SendTradeMessage(tradeMsg(7, "99.500")))

	trades, err := store.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, uint64(7), trades[0].TradeID)
}
