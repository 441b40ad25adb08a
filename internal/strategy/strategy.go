// Package strategy holds the pluggable decision functions that turn
// ledger state and bar history into bracket proposals.
package strategy

import (
	"fmt"
	"math"

	"github.com/icarofreire/bracketbot/internal/domain"
)

// stopLimitSlippage is the fixed allowance of the stop limit price
// below its trigger, so the stop still executes through a gap.
const stopLimitSlippage = 0.98

// Limits are the exit multipliers applied to an entry price.
type Limits struct {
	TakeProfitMult float64
	StopLossMult   float64
}

// Proposal is a candidate bracket entry for one symbol at one step.
type Proposal struct {
	Symbol      string
	Price       float64
	Quantity    float64
	TakeProfit  float64
	StopTrigger float64
	StopLimit   float64
}

// ProposeFunc consumes the ledger, the bar history and a time index
// and returns the brackets to open this step. Implementations must be
// pure: same inputs, same proposals.
type ProposeFunc func(ledger *domain.Ledger, bars *domain.History, t int, limits Limits) []Proposal

// filterFunc decides, per symbol, whether a sized proposal is emitted.
type filterFunc func(bars *domain.History, symbol string, t int) bool

// propose applies the shared sizing policy over every symbol with a
// bar at t, then the variant's filter. Capital is split evenly across
// all tracked symbols: qty = floor(buyingPower / (numSymbols*price)).
func propose(ledger *domain.Ledger, bars *domain.History, t int, limits Limits, filter filterFunc) []Proposal {
	var proposals []Proposal
	for _, symbol := range bars.Symbols() {
		bar, ok := bars.At(symbol, t)
		if !ok {
			continue
		}
		price := bar.Close
		if ledger.BuyingPower <= 0 || price <= 0 {
			continue
		}
		quantity := math.Floor(ledger.BuyingPower / (float64(bars.NumSymbols()) * price))
		if quantity <= 0 {
			continue
		}
		if filter != nil && !filter(bars, symbol, t) {
			continue
		}
		stopTrigger := price * limits.StopLossMult
		proposals = append(proposals, Proposal{
			Symbol:      symbol,
			Price:       price,
			Quantity:    quantity,
			TakeProfit:  price * limits.TakeProfitMult,
			StopTrigger: stopTrigger,
			StopLimit:   stopTrigger * stopLimitSlippage,
		})
	}
	return proposals
}

// Unconditional proposes whenever sizing yields a positive quantity.
func Unconditional() ProposeFunc {
	return func(ledger *domain.Ledger, bars *domain.History, t int, limits Limits) []Proposal {
		return propose(ledger, bars, t, limits, nil)
	}
}

// RawTrend proposes only when the trailing window of raw closes is
// strictly increasing (the "crescent" check), clipped to the available
// history.
func RawTrend(window int) ProposeFunc {
	return func(ledger *domain.Ledger, bars *domain.History, t int, limits Limits) []Proposal {
		return propose(ledger, bars, t, limits, func(bars *domain.History, symbol string, t int) bool {
			return isCrescent(bars, symbol, t, window)
		})
	}
}

// SmoothedTrend proposes only when the moving average of closes
// (window maWindow) over the last lookback positions is non-decreasing.
// Averaging first makes the trend check less sensitive to single-bar
// noise than RawTrend.
func SmoothedTrend(maWindow, lookback int) ProposeFunc {
	return func(ledger *domain.Ledger, bars *domain.History, t int, limits Limits) []Proposal {
		return propose(ledger, bars, t, limits, func(bars *domain.History, symbol string, t int) bool {
			return smoothedRising(bars, symbol, t, maWindow, lookback)
		})
	}
}

// ByName looks up a variant by its config name.
func ByName(name string, trendWindow, maWindow, maLookback int) (ProposeFunc, error) {
	switch name {
	case "unconditional":
		return Unconditional(), nil
	case "trend":
		return RawTrend(trendWindow), nil
	case "smoothed":
		return SmoothedTrend(maWindow, maLookback), nil
	default:
		return nil, fmt.Errorf("strategy.ByName: unknown strategy %q", name)
	}
}
