package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBracket_Legs(t *testing.T) {
	legs := NewBracket("AAPL", 100, 10, 104, 98)

	entry, profit, loss := legs[0], legs[1], legs[2]

	assert.Equal(t, SideBuy, entry.Side)
	assert.Equal(t, TriggerInstant, entry.Trigger)
	assert.Equal(t, 100.0, entry.RefPrice)

	assert.Equal(t, SideSell, profit.Side)
	assert.Equal(t, TriggerProfit, profit.Trigger)
	assert.Equal(t, 104.0, profit.RefPrice)

	assert.Equal(t, SideSell, loss.Side)
	assert.Equal(t, TriggerLoss, loss.Trigger)
	assert.Equal(t, 98.0, loss.RefPrice)

	// take-profit above entry, stop below entry — the strategy's
	// contract, checked here as a sanity net.
	assert.Greater(t, profit.RefPrice, entry.RefPrice)
	assert.Less(t, loss.RefPrice, entry.RefPrice)
}

func TestNewBracket_SharedGroupAndQuantity(t *testing.T) {
	legs := NewBracket("AAPL", 100, 10, 104, 98)

	require.NotEmpty(t, legs[0].GroupID)
	for _, leg := range legs {
		assert.Equal(t, legs[0].GroupID, leg.GroupID)
		assert.Equal(t, 10.0, leg.Quantity)
		assert.Equal(t, "AAPL", leg.Symbol)
		assert.Equal(t, StatusPending, leg.Status)
		assert.NotEmpty(t, leg.ID)
	}
	assert.NotEqual(t, legs[0].ID, legs[1].ID)
}

func TestNewBracket_DistinctGroups(t *testing.T) {
	a := NewBracket("AAPL", 100, 10, 104, 98)
	b := NewBracket("AAPL", 100, 10, 104, 98)

	assert.NotEqual(t, a[0].GroupID, b[0].GroupID)
}
