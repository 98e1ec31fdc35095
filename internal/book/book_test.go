package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBook_InitialState(t *testing.T) {
	b := New("TEST")
	assert.Equal(t, "TEST", b.Symbol())
	assert.Equal(t, 0, b.GetOrderCount())
	assert.Equal(t, 0, b.GetTradeCount())

	_, ok := b.GetBestBid()
	assert.False(t, ok)
	_, ok = b.GetBestAsk()
	assert.False(t, ok)
	_, ok = b.GetMidPrice()
	assert.False(t, ok)
	_, ok = b.GetSpread()
	assert.False(t, ok)

	assertInvariants(t, b)
}

func TestBook_AddLimitOrder_Rejections(t *testing.T) {
	b := New("TEST")

	assert.False(t, b.AddLimitOrder(1, Buy, 100.0, 0), "zero qty rejected")
	assert.False(t, b.AddLimitOrder(1, Buy, 100.0, -5), "negative qty rejected")
	assert.False(t, b.AddLimitOrder(1, Buy, 0, 10), "non-positive price rejected")
	assert.False(t, b.AddLimitOrder(1, Buy, -1.0, 10), "negative price rejected")
	assert.Equal(t, 0, b.GetOrderCount())

	require.True(t, b.AddLimitOrder(1, Buy, 100.0, 10))
	assert.False(t, b.AddLimitOrder(1, Sell, 101.0, 5), "duplicate live id rejected")
	assert.Equal(t, 1, b.GetOrderCount())

	assertInvariants(t, b)
}

func TestBook_AddMarketOrder_Rejections(t *testing.T) {
	b := New("TEST")
	assert.False(t, b.AddMarketOrder(1, Buy, 0))
	assert.False(t, b.AddMarketOrder(1, Buy, -1))
}

func TestBook_CancelAndModify(t *testing.T) {
	b := New("TEST")
	require.True(t, b.AddLimitOrder(1, Buy, 100.0, 50))

	assert.True(t, b.ModifyOrder(1, 75))
	assert.Equal(t, int64(75), b.GetBidVolumeAtPrice(100.0))

	assert.True(t, b.ModifyOrder(1, 25))
	assert.Equal(t, int64(25), b.GetBidVolumeAtPrice(100.0))

	assert.True(t, b.CancelOrder(1))
	assert.Equal(t, 0, b.GetOrderCount())
	_, ok := b.GetBestBid()
	assert.False(t, ok)

	assert.False(t, b.CancelOrder(1), "cancel idempotence after success")
	assert.False(t, b.ModifyOrder(1, 10), "modify unknown id rejected")
	assert.False(t, b.ModifyOrder(999, 10), "modify unknown id rejected")

	assertInvariants(t, b)
}

func TestBook_ModifyOrder_BadQuantity(t *testing.T) {
	b := New("TEST")
	require.True(t, b.AddLimitOrder(1, Buy, 100.0, 50))
	assert.False(t, b.ModifyOrder(1, 0))
	assert.False(t, b.ModifyOrder(1, -5))
	assert.Equal(t, int64(50), b.GetBidVolumeAtPrice(100.0))
}

func TestBook_ModifyUp_RequeuesAtTail(t *testing.T) {
	b := New("TEST")
	require.True(t, b.AddLimitOrder(1, Buy, 100.0, 10))
	require.True(t, b.AddLimitOrder(2, Buy, 100.0, 10))

	// Grow #1 past #2's priority; #1 must now fill second.
	require.True(t, b.ModifyOrder(1, 30))

	require.True(t, b.AddLimitOrder(3, Sell, 100.0, 10))
	trades := b.GetTrades()
	require.Len(t, trades, 1)
	assert.Equal(t, int64(2), trades[0].BuyOrderID, "order #2 retained priority and fills first")

	assertInvariants(t, b)
}

func TestBook_ModifyDown_PreservesPriority(t *testing.T) {
	b := New("TEST")
	require.True(t, b.AddLimitOrder(1, Buy, 100.0, 10))
	require.True(t, b.AddLimitOrder(2, Buy, 100.0, 10))

	require.True(t, b.ModifyOrder(1, 5))

	require.True(t, b.AddLimitOrder(3, Sell, 100.0, 5))
	trades := b.GetTrades()
	require.Len(t, trades, 1)
	assert.Equal(t, int64(1), trades[0].BuyOrderID, "order #1 kept priority after modify-down")

	assertInvariants(t, b)
}

func TestBook_DepthQueries(t *testing.T) {
	b := New("TEST")
	require.True(t, b.AddLimitOrder(1, Buy, 100.0, 10))
	require.True(t, b.AddLimitOrder(2, Buy, 99.0, 20))
	require.True(t, b.AddLimitOrder(3, Sell, 101.0, 30))
	require.True(t, b.AddLimitOrder(4, Sell, 102.0, 40))

	bids := b.GetBids(10)
	require.Len(t, bids, 2)
	assert.Equal(t, PriceVolume{100.0, 10}, bids[0])
	assert.Equal(t, PriceVolume{99.0, 20}, bids[1])

	asks := b.GetAsks(1)
	require.Len(t, asks, 1)
	assert.Equal(t, PriceVolume{101.0, 30}, asks[0])

	assert.Equal(t, int64(30), b.GetTotalBidVolume())
	assert.Equal(t, int64(70), b.GetTotalAskVolume())

	mid, ok := b.GetMidPrice()
	require.True(t, ok)
	assert.InDelta(t, 100.5, mid, 1e-9)

	spread, ok := b.GetSpread()
	require.True(t, ok)
	assert.InDelta(t, 1.0, spread, 1e-9)

	assertInvariants(t, b)
}

func TestBook_PriceImprovement(t *testing.T) {
	b := New("TEST")
	require.True(t, b.AddLimitOrder(1, Sell, 100.00, 10))
	require.True(t, b.AddLimitOrder(2, Buy, 100.50, 10))

	trades := b.GetTrades()
	require.Len(t, trades, 1)
	assert.Equal(t, 100.00, trades[0].Price, "trade prices at the resting order's price, never the aggressor's")
}
