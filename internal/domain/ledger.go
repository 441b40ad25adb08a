package domain

import (
	"fmt"
	"sort"
)

// Position is a held quantity of one symbol. AvgEntryPrice only moves
// on buys (quantity-weighted); CurrentPrice follows every price refresh
// regardless of fills.
type Position struct {
	Quantity      float64
	AvgEntryPrice float64
	CurrentPrice  float64
}

// Ledger tracks cash and positions over a simulation run. It is owned
// by a single replay loop and is not safe for concurrent mutation —
// determinism of a run depends on that.
type Ledger struct {
	BuyingPower float64
	Positions   map[string]*Position
}

// NewLedger creates a Ledger with the given starting buying power and
// no positions.
func NewLedger(buyingPower float64) *Ledger {
	return &Ledger{
		BuyingPower: buyingPower,
		Positions:   make(map[string]*Position),
	}
}

// Buy applies a buy fill. It rejects (no-op) when buying power cannot
// cover quantity*price. Repeat buys recompute the average entry price
// as a quantity-weighted average of prior and incoming cost.
func (l *Ledger) Buy(symbol string, quantity, price float64) error {
	cost := quantity * price
	if cost > l.BuyingPower {
		return fmt.Errorf("ledger.Buy %s: insufficient funds: need %.2f, have %.2f", symbol, cost, l.BuyingPower)
	}
	if pos, ok := l.Positions[symbol]; ok {
		total := pos.Quantity + quantity
		pos.AvgEntryPrice = (pos.Quantity*pos.AvgEntryPrice + cost) / total
		pos.Quantity = total
		pos.CurrentPrice = price
	} else {
		l.Positions[symbol] = &Position{
			Quantity:      quantity,
			AvgEntryPrice: price,
			CurrentPrice:  price,
		}
	}
	l.BuyingPower -= cost
	return nil
}

// Sell applies a sell fill and returns the quantity actually sold. An
// oversell is clamped to the held quantity — holdings never go
// negative. Selling an unknown symbol is a rejection. The average
// entry price is never touched by sells.
func (l *Ledger) Sell(symbol string, quantity, price float64) (float64, error) {
	pos, ok := l.Positions[symbol]
	if !ok {
		return 0, fmt.Errorf("ledger.Sell %s: symbol not held", symbol)
	}
	sold := quantity
	if sold > pos.Quantity {
		sold = pos.Quantity
	}
	pos.Quantity -= sold
	pos.CurrentPrice = price
	l.BuyingPower += sold * price
	return sold, nil
}

// UpdatePrice refreshes the mark-to-market price of a held position.
// No-op for symbols not held.
func (l *Ledger) UpdatePrice(symbol string, price float64) {
	if pos, ok := l.Positions[symbol]; ok {
		pos.CurrentPrice = price
	}
}

// Equity returns cash plus the mark-to-market value of every position.
func (l *Ledger) Equity() float64 {
	eq := l.BuyingPower
	for _, pos := range l.Positions {
		eq += pos.Quantity * pos.CurrentPrice
	}
	return eq
}

// Liquidation records one end-of-run sell synthesized by LiquidateAll.
type Liquidation struct {
	Symbol   string
	Quantity float64
	Price    float64
}

// LiquidateAll sells the full quantity of every open position at the
// price supplied by priceLookup. A position whose symbol has no price
// available is left in place and skipped. Called once at run end.
func (l *Ledger) LiquidateAll(priceLookup func(symbol string) (float64, bool)) []Liquidation {
	var fills []Liquidation
	for _, symbol := range l.heldSymbols() {
		pos := l.Positions[symbol]
		if pos.Quantity <= 0 {
			continue
		}
		price, ok := priceLookup(symbol)
		if !ok {
			continue
		}
		sold, err := l.Sell(symbol, pos.Quantity, price)
		if err != nil {
			continue
		}
		fills = append(fills, Liquidation{Symbol: symbol, Quantity: sold, Price: price})
	}
	return fills
}

// heldSymbols returns position keys in sorted order so liquidation is
// deterministic across runs.
func (l *Ledger) heldSymbols() []string {
	symbols := make([]string, 0, len(l.Positions))
	for s := range l.Positions {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}
