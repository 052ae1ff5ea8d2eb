package engine

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/barsim/backtester/common"
	"github.com/thrasher-corp/barsim/backtester/data"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/ledger"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/orderbook"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/portfolio"
)

// Date returns the current simulation date
func (c *SimulationContext) Date() time.Time {
	return c.bt.Scheduler.CurrentDate()
}

// Phase returns the current phase of the date
func (c *SimulationContext) Phase() common.Phase {
	return c.bt.Scheduler.Phase()
}

// EligibleSymbols returns the symbols which can be traded today
func (c *SimulationContext) EligibleSymbols() []string {
	return c.bt.Scheduler.EligibleSymbols()
}

// IsEligible reports whether the symbol can be traded today
func (c *SimulationContext) IsEligible(symbol string) bool {
	return c.bt.Scheduler.IsEligible(symbol)
}

// View returns the held symbol set
func (c *SimulationContext) View() *portfolio.View {
	return c.bt.Ledger.View()
}

// Position returns a copy of the open position on symbol
func (c *SimulationContext) Position(symbol string) (ledger.Position, bool) {
	return c.bt.Ledger.Position(symbol)
}

// Cash returns available cash
func (c *SimulationContext) Cash() decimal.Decimal {
	return c.bt.Ledger.Cash()
}

// Equity returns the latest marked equity
func (c *SimulationContext) Equity() decimal.Decimal {
	return c.bt.Ledger.Equity()
}

// Price returns the current phase price of symbol
func (c *SimulationContext) Price(symbol string) (decimal.Decimal, error) {
	return c.bt.Data.Price(symbol, c.Date(), c.Phase())
}

// Window returns the lookback bars of symbol visible at the current phase
func (c *SimulationContext) Window(symbol string) ([]data.Bar, error) {
	return c.bt.Data.Window(symbol, c.Date(), c.bt.Scheduler.Lookback(), c.Phase())
}

// PlaceMarketOrder submits an order to the order book
func (c *SimulationContext) PlaceMarketOrder(symbol string, quantity decimal.Decimal, desired common.Phase) (uint64, error) {
	return c.bt.OrderBook.PlaceMarketOrder(symbol, quantity, desired)
}

// ExecuteOrder applies an executed order to the ledger
func (e *ledgerExecutor) ExecuteOrder(o *orderbook.Order) error {
	return e.ledger.ApplyFill(&ledger.Fill{
		OrderID:  o.ID,
		Symbol:   o.Symbol,
		Quantity: o.Quantity,
		Price:    o.ExecutionPrice,
		Date:     o.ExecutedOn,
	})
}
