package barfile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icarofreire/bracketbot/internal/domain"
)

func day(i int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func sampleBars(n int) []domain.Bar {
	bars := make([]domain.Bar, n)
	for i := range bars {
		bars[i] = domain.Bar{
			Open:      100 + float64(i),
			High:      101 + float64(i),
			Low:       99 + float64(i),
			Close:     100.5 + float64(i),
			Volume:    1000,
			Timestamp: day(i),
		}
	}
	return bars
}

func TestStore_WriteAndFetch(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.WriteBars("aapl", sampleBars(5)))

	series, err := store.FetchBars(context.Background(), []string{"AAPL"}, day(0), day(10))
	require.NoError(t, err)
	require.Len(t, series["AAPL"], 5)
	assert.Equal(t, 100.5, series["AAPL"][0].Close)
	assert.True(t, series["AAPL"][0].Timestamp.Equal(day(0)))
}

func TestStore_FetchHonorsRange(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.WriteBars("AAPL", sampleBars(10)))

	series, err := store.FetchBars(context.Background(), []string{"AAPL"}, day(2), day(4))
	require.NoError(t, err)
	require.Len(t, series["AAPL"], 3)
	assert.True(t, series["AAPL"][0].Timestamp.Equal(day(2)))
}

func TestStore_MissingSymbolAbsent(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.WriteBars("AAPL", sampleBars(2)))

	series, err := store.FetchBars(context.Background(), []string{"AAPL", "MSFT"}, day(0), day(5))
	require.NoError(t, err)
	assert.Contains(t, series, "AAPL")
	assert.NotContains(t, series, "MSFT")
}

func TestStore_MergeDeduplicates(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.WriteBars("AAPL", sampleBars(3)))

	// Overlapping rewrite: same timestamps, new closes win.
	updated := sampleBars(3)
	for i := range updated {
		updated[i].Close = 200
	}
	require.NoError(t, store.WriteBars("AAPL", updated))

	series, err := store.FetchBars(context.Background(), []string{"AAPL"}, day(0), day(5))
	require.NoError(t, err)
	require.Len(t, series["AAPL"], 3)
	for _, b := range series["AAPL"] {
		assert.Equal(t, 200.0, b.Close)
	}
}

func TestStore_WriteEmptyIsNoop(t *testing.T) {
	store := NewStore(t.TempDir())
	assert.NoError(t, store.WriteBars("AAPL", nil))
}
