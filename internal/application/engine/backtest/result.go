package backtest

import "github.com/icarofreire/bracketbot/internal/domain"

// Result is everything one run produces: the equity curve (one sample
// per step plus the post-liquidation value), the append-only
// fill/rejection log and the final ledger.
type Result struct {
	StartingPower float64
	Steps         int
	EquityCurve   []float64
	Fills         []domain.FillRecord
	Ledger        *domain.Ledger
}

// FinalEquity returns the last equity sample, or the starting power
// when the run produced no steps.
func (r *Result) FinalEquity() float64 {
	if len(r.EquityCurve) == 0 {
		return r.StartingPower
	}
	return r.EquityCurve[len(r.EquityCurve)-1]
}

// TotalReturn is the fractional gain over the starting buying power.
func (r *Result) TotalReturn() float64 {
	if r.StartingPower == 0 {
		return 0
	}
	return (r.FinalEquity() - r.StartingPower) / r.StartingPower
}

// MaxDrawdown is the largest fractional fall from a running equity
// peak across the curve.
func (r *Result) MaxDrawdown() float64 {
	peak, maxDD := 0.0, 0.0
	for _, eq := range r.EquityCurve {
		if eq > peak {
			peak = eq
		}
		if peak > 0 {
			if dd := (peak - eq) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// Rejections counts the log entries the ledger refused.
func (r *Result) Rejections() int {
	n := 0
	for _, f := range r.Fills {
		if f.Rejected {
			n++
		}
	}
	return n
}
