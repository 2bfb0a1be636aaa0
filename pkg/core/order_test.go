package core

import (
	"encoding/json"
	"testing"

	"github.com/nikolaydubina/fpdecimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSideString(t *testing.T) {
	assert.Equal(t, "buy", Buy.String())
	assert.Equal(t, "sell", Sell.String())
	assert.Equal(t, "unknown", Side(42).String())
}

func TestSideOpposite(t *testing.T) {
	assert.Equal(t, Sell, Buy.Opposite())
	assert.Equal(t, Buy, Sell.Opposite())
}

func TestParseSide(t *testing.T) {
	side, err := ParseSide("buy")
	require.NoError(t, err)
	assert.Equal(t, Buy, side)

	side, err = ParseSide("SELL")
	require.NoError(t, err)
	assert.Equal(t, Sell, side)

	_, err = ParseSide("hold")
	assert.ErrorIs(t, err, ErrInvalidSide)

	_, err = ParseSide("")
	assert.ErrorIs(t, err, ErrInvalidSide)
}

func TestOrderAccessors(t *testing.T) {
	o := newOrder(7, Buy, fpdecimal.FromFloat(100.5), 25, "alice")

	assert.Equal(t, uint64(7), o.ID())
	assert.Equal(t, Buy, o.Side())
	assert.True(t, o.Price().Equal(fpdecimal.FromFloat(100.5)))
	assert.Equal(t, int64(25), o.Quantity())
	assert.Equal(t, int64(25), o.OriginalQty())
	assert.Equal(t, "alice", o.User())
}

func TestOrderFillReducesOnlyRemaining(t *testing.T) {
	o := newOrder(1, Sell, fpdecimal.FromFloat(99.0), 10, "")

	o.fill(4)
	assert.Equal(t, int64(6), o.Quantity())
	assert.Equal(t, int64(10), o.OriginalQty())

	o.fill(6)
	assert.Zero(t, o.Quantity())
}

func TestRestingOrderProjection(t *testing.T) {
	o := newOrder(3, Sell, fpdecimal.FromFloat(101.25), 5, "bob")

	r := o.ToResting()
	assert.Equal(t, uint64(3), r.ID)
	assert.Equal(t, "sell", r.Side)
	assert.Equal(t, "101.250", r.Price)
	assert.Equal(t, int64(5), r.Quantity)
	assert.Equal(t, "bob", r.User)
}

func TestRestingOrderJSONOmitsEmptyUser(t *testing.T) {
	o := newOrder(1, Buy, fpdecimal.FromFloat(100.0), 1, "")

	data, err := json.Marshal(o.ToResting())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "user")
	assert.Contains(t, string(data), `"price":"100.000"`)
}

func TestTradeMarshalRendersPriceAsString(t *testing.T) {
	trade := Trade{
		ID:          9,
		BuyOrderID:  1,
		SellOrderID: 2,
		Price:       fpdecimal.FromFloat(100.0),
		Quantity:    4,
		TakerSide:   Sell,
	}

	data, err := json.Marshal(trade)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "100.000", decoded["price"])
	assert.Equal(t, "sell", decoded["taker_side"])
	assert.Equal(t, float64(9), decoded["id"])
}
