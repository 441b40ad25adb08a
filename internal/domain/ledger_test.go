package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_Buy_CreatesPosition(t *testing.T) {
	l := NewLedger(1000)

	require.NoError(t, l.Buy("AAPL", 5, 100))

	pos := l.Positions["AAPL"]
	require.NotNil(t, pos)
	assert.Equal(t, 5.0, pos.Quantity)
	assert.Equal(t, 100.0, pos.AvgEntryPrice)
	assert.Equal(t, 100.0, pos.CurrentPrice)
	assert.Equal(t, 500.0, l.BuyingPower)
}

func TestLedger_Buy_WeightedAverage(t *testing.T) {
	l := NewLedger(10000)

	require.NoError(t, l.Buy("AAPL", 10, 100))
	require.NoError(t, l.Buy("AAPL", 5, 130))

	pos := l.Positions["AAPL"]
	assert.Equal(t, 15.0, pos.Quantity)
	// (10*100 + 5*130) / 15
	assert.InDelta(t, 110.0, pos.AvgEntryPrice, 0.0001)
}

func TestLedger_Buy_InsufficientFunds(t *testing.T) {
	l := NewLedger(100)

	err := l.Buy("AAPL", 2, 100)
	require.Error(t, err)

	// Rejection is a no-op.
	assert.Equal(t, 100.0, l.BuyingPower)
	assert.Empty(t, l.Positions)
}

func TestLedger_Buy_NeverNegativePower(t *testing.T) {
	l := NewLedger(1000)

	require.NoError(t, l.Buy("AAPL", 10, 100))
	assert.Equal(t, 0.0, l.BuyingPower)

	err := l.Buy("AAPL", 1, 100)
	require.Error(t, err)
	assert.Equal(t, 0.0, l.BuyingPower)
}

func TestLedger_Sell_ClampsOversell(t *testing.T) {
	l := NewLedger(1000)
	require.NoError(t, l.Buy("AAPL", 5, 100))

	sold, err := l.Sell("AAPL", 50, 110)
	require.NoError(t, err)

	assert.Equal(t, 5.0, sold)
	assert.Equal(t, 0.0, l.Positions["AAPL"].Quantity)
	assert.Equal(t, 500.0+5*110, l.BuyingPower)
}

func TestLedger_Sell_UnknownSymbol(t *testing.T) {
	l := NewLedger(1000)

	_, err := l.Sell("MSFT", 1, 100)
	assert.Error(t, err)
	assert.Equal(t, 1000.0, l.BuyingPower)
}

func TestLedger_Sell_KeepsAvgEntryPrice(t *testing.T) {
	l := NewLedger(10000)
	require.NoError(t, l.Buy("AAPL", 10, 100))
	require.NoError(t, l.Buy("AAPL", 10, 120))

	avg := l.Positions["AAPL"].AvgEntryPrice
	_, err := l.Sell("AAPL", 7, 130)
	require.NoError(t, err)

	assert.Equal(t, avg, l.Positions["AAPL"].AvgEntryPrice)
}

func TestLedger_BuySellRoundTrip(t *testing.T) {
	l := NewLedger(1000)

	require.NoError(t, l.Buy("AAPL", 8, 100))
	sold, err := l.Sell("AAPL", 8, 100)
	require.NoError(t, err)

	assert.Equal(t, 8.0, sold)
	assert.Equal(t, 1000.0, l.BuyingPower)
	assert.Equal(t, 0.0, l.Positions["AAPL"].Quantity)
}

func TestLedger_UpdatePrice(t *testing.T) {
	l := NewLedger(1000)
	require.NoError(t, l.Buy("AAPL", 5, 100))

	l.UpdatePrice("AAPL", 123)
	assert.Equal(t, 123.0, l.Positions["AAPL"].CurrentPrice)
	// avg entry untouched by price refreshes
	assert.Equal(t, 100.0, l.Positions["AAPL"].AvgEntryPrice)

	// unheld symbol: no-op, no panic
	l.UpdatePrice("MSFT", 50)
	assert.NotContains(t, l.Positions, "MSFT")
}

func TestLedger_Equity(t *testing.T) {
	l := NewLedger(1000)
	assert.Equal(t, 1000.0, l.Equity())

	require.NoError(t, l.Buy("AAPL", 5, 100))
	assert.Equal(t, 1000.0, l.Equity())

	l.UpdatePrice("AAPL", 120)
	assert.Equal(t, 500.0+5*120, l.Equity())
}

func TestLedger_LiquidateAll(t *testing.T) {
	l := NewLedger(1000)
	require.NoError(t, l.Buy("AAPL", 5, 100))
	require.NoError(t, l.Buy("MSFT", 2, 200))

	prices := map[string]float64{"AAPL": 110, "MSFT": 190}
	fills := l.LiquidateAll(func(s string) (float64, bool) {
		p, ok := prices[s]
		return p, ok
	})

	require.Len(t, fills, 2)
	assert.Equal(t, "AAPL", fills[0].Symbol)
	assert.Equal(t, "MSFT", fills[1].Symbol)
	assert.Equal(t, 0.0, l.Positions["AAPL"].Quantity)
	assert.Equal(t, 0.0, l.Positions["MSFT"].Quantity)
	assert.Equal(t, 100.0+5*110+2*190, l.BuyingPower)
}

func TestLedger_LiquidateAll_NoPriceSkips(t *testing.T) {
	l := NewLedger(1000)
	require.NoError(t, l.Buy("AAPL", 5, 100))

	fills := l.LiquidateAll(func(string) (float64, bool) { return 0, false })

	assert.Empty(t, fills)
	assert.Equal(t, 5.0, l.Positions["AAPL"].Quantity)
}
