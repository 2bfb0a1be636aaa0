package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/erain9/limitbook/pkg/core"
	"github.com/erain9/limitbook/pkg/event"
	"github.com/gorilla/websocket"
	"github.com/nikolaydubina/fpdecimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialWS(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) wsEnvelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg wsEnvelope
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

type wsEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func TestBookSocketSnapshotFirst(t *testing.T) {
	hub := event.NewHub(256)
	engine := core.NewEngine(core.EngineConfig{Publisher: hub})
	// Long resync interval so the test only sees event-driven messages.
	srv := New(Config{ResyncInterval: time.Hour}, engine, hub, nil)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	_, err := engine.Submit(context.Background(), core.Buy, fpdecimal.FromFloat(100.0), 10, "")
	require.NoError(t, err)

	conn := dialWS(t, ts, "/ws/orderbook")

	// The first frame is always the full book.
	msg := readMessage(t, conn)
	require.Equal(t, "orderbook", msg.Type)

	var snap core.Snapshot
	require.NoError(t, json.Unmarshal(msg.Payload, &snap))
	require.Len(t, snap.Bids, 1)
	assert.Equal(t, int64(10), snap.Bids[0].Quantity)

	// A new resting order arrives as a depth delta.
	_, err = engine.Submit(context.Background(), core.Sell, fpdecimal.FromFloat(101.0), 5, "")
	require.NoError(t, err)

	msg = readMessage(t, conn)
	require.Equal(t, "depth", msg.Type)

	var depth event.Depth
	require.NoError(t, json.Unmarshal(msg.Payload, &depth))
	assert.Equal(t, "sell", depth.Side)
	assert.Equal(t, "101.000", depth.Price)
	assert.Equal(t, int64(5), depth.Quantity)
}

func TestBookSocketStreamsTradesAndCancels(t *testing.T) {
	hub := event.NewHub(256)
	engine := core.NewEngine(core.EngineConfig{Publisher: hub})
	srv := New(Config{ResyncInterval: time.Hour}, engine, hub, nil)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialWS(t, ts, "/ws/orderbook")
	require.Equal(t, "orderbook", readMessage(t, conn).Type)

	ctx := context.Background()
	maker, err := engine.Submit(ctx, core.Buy, fpdecimal.FromFloat(100.0), 10, "")
	require.NoError(t, err)
	require.Equal(t, "depth", readMessage(t, conn).Type)

	_, err = engine.Submit(ctx, core.Sell, fpdecimal.FromFloat(100.0), 4, "")
	require.NoError(t, err)
	require.Equal(t, "trade", readMessage(t, conn).Type)
	require.Equal(t, "depth", readMessage(t, conn).Type)

	require.NoError(t, engine.Cancel(ctx, maker.OrderID))
	msg := readMessage(t, conn)
	require.Equal(t, "cancel", msg.Type)
	var cancel event.Cancel
	require.NoError(t, json.Unmarshal(msg.Payload, &cancel))
	assert.Equal(t, maker.OrderID, cancel.OrderID)
	assert.Equal(t, int64(6), cancel.Quantity)
	require.Equal(t, "depth", readMessage(t, conn).Type)
}

func TestBookSocketPeriodicResync(t *testing.T) {
	hub := event.NewHub(256)
	engine := core.NewEngine(core.EngineConfig{Publisher: hub})
	srv := New(Config{ResyncInterval: 50 * time.Millisecond}, engine, hub, nil)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialWS(t, ts, "/ws/orderbook")

	// Initial snapshot plus at least one ticker-driven resync.
	require.Equal(t, "orderbook", readMessage(t, conn).Type)
	require.Equal(t, "orderbook", readMessage(t, conn).Type)
}

func TestTradeSocketFiltersToTrades(t *testing.T) {
	hub := event.NewHub(256)
	engine := core.NewEngine(core.EngineConfig{Publisher: hub})
	srv := New(Config{ResyncInterval: time.Hour}, engine, hub, nil)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialWS(t, ts, "/ws/trades")

	ctx := context.Background()
	_, err := engine.Submit(ctx, core.Buy, fpdecimal.FromFloat(100.0), 10, "")
	require.NoError(t, err)
	_, err = engine.Submit(ctx, core.Sell, fpdecimal.FromFloat(100.0), 4, "")
	require.NoError(t, err)

	// Depth deltas are filtered out; the first frame is the execution.
	msg := readMessage(t, conn)
	require.Equal(t, "trade", msg.Type)

	var trade event.Trade
	require.NoError(t, json.Unmarshal(msg.Payload, &trade))
	assert.Equal(t, "100.000", trade.Price)
	assert.Equal(t, int64(4), trade.Quantity)
	assert.Equal(t, "sell", trade.TakerSide)
}
