package domain

import "github.com/google/uuid"

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Trigger decides when a pending order becomes eligible to fill.
type Trigger string

const (
	// TriggerInstant fills on the first step its symbol has a bar, at
	// the order's own reference price.
	TriggerInstant Trigger = "INSTANT"
	// TriggerProfit fills when the bar close rises to or above the
	// reference price.
	TriggerProfit Trigger = "PROFIT"
	// TriggerLoss fills when the bar close drops to or below the
	// reference price.
	TriggerLoss Trigger = "LOSS"
)

// OrderStatus is the lifecycle state of an order request.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusFilled    OrderStatus = "FILLED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// OrderRequest is one leg of a bracket awaiting execution. The status
// moves PENDING→FILLED exactly once, or PENDING→CANCELLED when a
// sibling exit in its group fills first. No order fills twice.
type OrderRequest struct {
	ID       string
	GroupID  string
	Symbol   string
	Side     Side
	Trigger  Trigger
	Quantity float64
	RefPrice float64
	Status   OrderStatus
}

// NewBracket builds the three linked orders of a bracket under a fresh
// group ID: an instant buy at entryPrice, a profit sell at takeProfit
// and a loss sell at stopTrigger, all for the same quantity. It never
// fails; the caller (the strategy) is responsible for a sane price
// ordering around the entry.
func NewBracket(symbol string, entryPrice, quantity, takeProfit, stopTrigger float64) [3]OrderRequest {
	groupID := uuid.New().String()
	leg := func(side Side, trigger Trigger, price float64) OrderRequest {
		return OrderRequest{
			ID:       uuid.New().String(),
			GroupID:  groupID,
			Symbol:   symbol,
			Side:     side,
			Trigger:  trigger,
			Quantity: quantity,
			RefPrice: price,
			Status:   StatusPending,
		}
	}
	return [3]OrderRequest{
		leg(SideBuy, TriggerInstant, entryPrice),
		leg(SideSell, TriggerProfit, takeProfit),
		leg(SideSell, TriggerLoss, stopTrigger),
	}
}
