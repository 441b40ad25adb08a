package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icarofreire/bracketbot/internal/domain"
	"github.com/icarofreire/bracketbot/internal/ports"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRun(started time.Time) ports.RunRecord {
	return ports.RunRecord{
		StartedAt:     started,
		Strategy:      "trend",
		Symbols:       []string{"AAPL", "MSFT"},
		StartingPower: 1000,
		FinalEquity:   1050,
		Steps:         5,
		Fills: []domain.FillRecord{
			{Step: 0, GroupID: "g1", Symbol: "AAPL", Side: domain.SideBuy, Trigger: domain.TriggerInstant, Quantity: 10, Price: 100},
			{Step: 4, GroupID: "g1", Symbol: "AAPL", Side: domain.SideSell, Trigger: domain.TriggerProfit, Quantity: 10, Price: 105},
		},
		EquityCurve: []float64{1000, 1000, 1010, 1020, 1050, 1050},
	}
}

func TestSaveRun_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	id, err := store.SaveRun(ctx, sampleRun(started))
	require.NoError(t, err)
	assert.Positive(t, id)

	runs, err := store.GetRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "trend", got.Strategy)
	assert.Equal(t, []string{"AAPL", "MSFT"}, got.Symbols)
	assert.Equal(t, 1000.0, got.StartingPower)
	assert.Equal(t, 1050.0, got.FinalEquity)
	assert.Equal(t, 5, got.Steps)
	assert.Equal(t, 2, got.Fills)
	assert.True(t, got.StartedAt.Equal(started))
}

func TestGetRuns_NewestFirstAndLimited(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := store.SaveRun(ctx, sampleRun(base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}

	runs, err := store.GetRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt))
}

func TestGetEquityCurve(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.SaveRun(ctx, sampleRun(time.Now().UTC()))
	require.NoError(t, err)

	curve, err := store.GetEquityCurve(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []float64{1000, 1000, 1010, 1020, 1050, 1050}, curve)

	missing, err := store.GetEquityCurve(ctx, id+99)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestSaveRun_NoFills(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := sampleRun(time.Now().UTC())
	run.Fills = nil
	run.EquityCurve = nil

	id, err := store.SaveRun(ctx, run)
	require.NoError(t, err)

	runs, err := store.GetRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Zero(t, runs[0].Fills)
}
