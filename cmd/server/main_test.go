package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erain9/limitbook/pkg/core"
	"github.com/erain9/limitbook/pkg/event"
	"github.com/erain9/limitbook/pkg/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Smoke test over the same wiring main assembles: hub, engine, HTTP server.
func TestAssembledServerRoundTrip(t *testing.T) {
	hub := event.NewHub(256)
	engine := core.NewEngine(core.EngineConfig{Publisher: hub})
	srv := server.New(server.Config{ResyncInterval: time.Hour}, engine, hub, nil)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := json.Marshal(map[string]any{
		"side":     "buy",
		"price":    "100.0",
		"quantity": 10,
	})
	require.NoError(t, err)

	resp, err = http.Post(ts.URL+"/api/orders", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var submitted struct {
		Success bool   `json:"success"`
		OrderID uint64 `json:"order_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&submitted))
	assert.True(t, submitted.Success)

	cancelBody, err := json.Marshal(map[string]any{"order_id": submitted.OrderID})
	require.NoError(t, err)
	resp, err = http.Post(ts.URL+"/api/orders/cancel", "application/json", bytes.NewReader(cancelBody))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
