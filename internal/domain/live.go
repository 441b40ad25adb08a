package domain

import "time"

// AccountSnapshot is the broker's view of the account at one poll. The
// live runner owns its own snapshot; it never shares a backtest Ledger.
type AccountSnapshot struct {
	BuyingPower float64
	Equity      float64
	Currency    string
}

// MarketClock reports whether the venue is open and when it changes
// state next.
type MarketClock struct {
	IsOpen    bool
	NextOpen  time.Time
	NextClose time.Time
}

// BracketTicket is a bracket order as submitted to a real broker:
// entry plus linked take-profit and stop-loss exits.
type BracketTicket struct {
	Symbol      string
	Quantity    float64
	Side        Side
	TimeInForce string
	TakeProfit  float64
	StopTrigger float64
	StopLimit   float64
}
