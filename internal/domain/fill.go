package domain

// FillRecord is one entry of the append-only fill/rejection log a run
// produces. Rejected is set when the ledger refused the fill (e.g.
// insufficient funds); the order still left the pending set.
type FillRecord struct {
	Step     int
	GroupID  string
	Symbol   string
	Side     Side
	Trigger  Trigger
	Quantity float64
	Price    float64
	Rejected bool
	Reason   string
}
