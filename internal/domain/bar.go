package domain

import (
	"sort"
	"time"
)

// Bar is one OHLCV sample for a symbol at a discrete time index.
type Bar struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
	Timestamp time.Time
}

// History holds the per-symbol bar series a simulation replays.
// Series lengths may differ across symbols (ragged): a symbol whose
// series is shorter than the replay bound simply stops producing bars.
type History struct {
	series  map[string][]Bar
	symbols []string // sorted, for deterministic iteration
}

// NewHistory builds a History from a symbol→bars mapping. The slice
// order of each series is its chronological order.
func NewHistory(series map[string][]Bar) *History {
	symbols := make([]string, 0, len(series))
	for s := range series {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return &History{series: series, symbols: symbols}
}

// At returns the bar for symbol at index t. The second return is false
// when the symbol is unknown or t is past the end of its series —
// callers treat that as "no signal this step", never as an error.
func (h *History) At(symbol string, t int) (Bar, bool) {
	bars, ok := h.series[symbol]
	if !ok || t < 0 || t >= len(bars) {
		return Bar{}, false
	}
	return bars[t], true
}

// Len returns the maximum series length across all tracked symbols.
// It bounds the replay loop.
func (h *History) Len() int {
	max := 0
	for _, bars := range h.series {
		if len(bars) > max {
			max = len(bars)
		}
	}
	return max
}

// Symbols returns the tracked symbols in sorted order.
func (h *History) Symbols() []string {
	return h.symbols
}

// NumSymbols returns how many symbols the history tracks.
func (h *History) NumSymbols() int {
	return len(h.symbols)
}

// LastClose returns the last available close for symbol, used to price
// the end-of-run liquidation.
func (h *History) LastClose(symbol string) (float64, bool) {
	bars, ok := h.series[symbol]
	if !ok || len(bars) == 0 {
		return 0, false
	}
	return bars[len(bars)-1].Close, true
}
