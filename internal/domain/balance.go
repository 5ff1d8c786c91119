package domain

// UserBalance is a trip member's derived net position in the trip's
// base currency. It is never persisted; the aggregator recomputes it
// from active expenses, counted splits and completed settlements.
//
// Invariant: for any trip, the sum of NetBalance over all members is
// zero within one minor unit of rounding tolerance.
type UserBalance struct {
	UserID     string
	TotalPaid  Money
	TotalOwed  Money
	NetBalance Money
}

// Transfer is one planned peer-to-peer payment in a settlement plan.
type Transfer struct {
	FromUserID string
	ToUserID   string
	Amount     Money
}
