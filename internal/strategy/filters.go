package strategy

import "github.com/icarofreire/bracketbot/internal/domain"

// isCrescent reports whether the trailing window of closes ending at t
// is strictly increasing. The window is clipped to the available
// history, so early steps with little history pass trivially.
func isCrescent(bars *domain.History, symbol string, t, window int) bool {
	if window > t {
		window = t
	}
	for i := 0; i < window; i++ {
		cur, ok := bars.At(symbol, t-i)
		if !ok {
			return false
		}
		prev, ok := bars.At(symbol, t-i-1)
		if !ok {
			return false
		}
		if cur.Close <= prev.Close {
			return false
		}
	}
	return true
}

// smoothedRising computes the maWindow moving average of closes at
// each of the last lookback positions ending at t (clipped to history)
// and reports whether that short series is non-decreasing.
func smoothedRising(bars *domain.History, symbol string, t, maWindow, lookback int) bool {
	if lookback > t+1 {
		lookback = t + 1
	}
	prev := 0.0
	for k := lookback - 1; k >= 0; k-- {
		avg, ok := movingAverage(bars, symbol, t-k, maWindow)
		if !ok {
			return false
		}
		if k < lookback-1 && avg < prev {
			return false
		}
		prev = avg
	}
	return true
}

// movingAverage averages the closes of the maWindow bars ending at
// pos, clipped at the start of the series.
func movingAverage(bars *domain.History, symbol string, pos, maWindow int) (float64, bool) {
	start := pos - maWindow + 1
	if start < 0 {
		start = 0
	}
	sum, n := 0.0, 0
	for i := start; i <= pos; i++ {
		bar, ok := bars.At(symbol, i)
		if !ok {
			return 0, false
		}
		sum += bar.Close
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
