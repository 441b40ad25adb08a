// Package barfile caches fetched bar series as Parquet files on disk
// so a backtest can replay offline, reproducibly, without a network
// provider.
package barfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/icarofreire/bracketbot/internal/domain"
	"github.com/icarofreire/bracketbot/internal/ports"
)

// Compile-time interface check.
var _ ports.BarProvider = (*Store)(nil)

// Store reads and writes per-symbol bar files under a data directory.
// Layout: <dataDir>/bars/<SYMBOL>.parquet
type Store struct {
	DataDir string
}

// NewStore creates a Store rooted at the given directory.
func NewStore(dataDir string) *Store {
	return &Store{DataDir: dataDir}
}

// barRecord is the on-disk Parquet schema.
type barRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    int64   `parquet:"volume"`
}

// WriteBars persists one symbol's series, merging with any bars
// already cached for it (deduplicated by timestamp, newest wins).
func (s *Store) WriteBars(symbol string, bars []domain.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	records := make([]barRecord, len(bars))
	for i, b := range bars {
		records[i] = barRecord{
			Symbol:    strings.ToUpper(symbol),
			Timestamp: b.Timestamp.UnixMilli(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		}
	}

	path := s.barPath(symbol)
	existing, _ := readParquetFile[barRecord](path)
	merged := mergeRecords(existing, records)

	if err := writeParquetFile(path, merged); err != nil {
		return fmt.Errorf("barfile.WriteBars %s: %w", symbol, err)
	}
	return nil
}

// FetchBars implements ports.BarProvider from the local cache. Symbols
// without a cached file are absent from the result, mirroring a
// provider that has no data for them.
func (s *Store) FetchBars(_ context.Context, symbols []string, start, end time.Time) (map[string][]domain.Bar, error) {
	series := make(map[string][]domain.Bar, len(symbols))
	for _, symbol := range symbols {
		records, err := readParquetFile[barRecord](s.barPath(symbol))
		if err != nil {
			continue
		}
		var bars []domain.Bar
		for _, r := range records {
			ts := time.UnixMilli(r.Timestamp).UTC()
			if ts.Before(start) || ts.After(end) {
				continue
			}
			bars = append(bars, domain.Bar{
				Open:      r.Open,
				High:      r.High,
				Low:       r.Low,
				Close:     r.Close,
				Volume:    r.Volume,
				Timestamp: ts,
			})
		}
		if len(bars) > 0 {
			series[symbol] = bars
		}
	}
	return series, nil
}

func (s *Store) barPath(symbol string) string {
	return filepath.Join(s.DataDir, "bars", strings.ToUpper(symbol)+".parquet")
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	return parquet.ReadFile[T](path)
}

// mergeRecords deduplicates by timestamp, preferring incoming records,
// and returns the result in chronological order.
func mergeRecords(existing, incoming []barRecord) []barRecord {
	seen := make(map[int64]barRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[r.Timestamp] = r
	}
	for _, r := range incoming {
		seen[r.Timestamp] = r
	}
	merged := make([]barRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}
