package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBookOrdering(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	snap := &bookSnapshot{
		Seq: 42,
		Bids: []bookLevel{
			{Price: "100.000", Quantity: 10, Orders: 2},
			{Price: "99.500", Quantity: 5, Orders: 1},
		},
		Asks: []bookLevel{
			{Price: "100.500", Quantity: 7, Orders: 1},
			{Price: "101.000", Quantity: 3, Orders: 1},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, renderBook(&buf, snap))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// Header, separator, 2 asks, separator, 2 bids.
	require.Len(t, lines, 7)

	// Asks render high to low so the spread sits between the two sides.
	assert.Contains(t, lines[2], "101.000")
	assert.Contains(t, lines[2], "ASK")
	assert.Contains(t, lines[3], "100.500")

	// Bids render best first.
	assert.Contains(t, lines[5], "100.000")
	assert.Contains(t, lines[5], "BID")
	assert.Contains(t, lines[6], "99.500")
}

func TestRenderBookEmpty(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	require.NoError(t, renderBook(&buf, &bookSnapshot{}))

	out := buf.String()
	assert.Contains(t, out, "Price")
	assert.NotContains(t, out, "ASK")
	assert.NotContains(t, out, "BID")
}
