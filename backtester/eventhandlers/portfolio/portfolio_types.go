package portfolio

import "github.com/shopspring/decimal"

// Holding is a read only summary of one open position
type Holding struct {
	Symbol string `json:"symbol"`
	// Quantity is signed: positive for a long, negative for a short
	Quantity    decimal.Decimal `json:"quantity"`
	MarketValue decimal.Decimal `json:"market-value"`
}

// View is the derived set of currently held symbols. It is rebuilt by the
// ledger after every mutation and never modified by strategies
type View struct {
	holdings []Holding
	index    map[string]int
}
