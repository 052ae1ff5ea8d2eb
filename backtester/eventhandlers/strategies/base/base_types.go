package base

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/barsim/backtester/common"
	"github.com/thrasher-corp/barsim/backtester/data"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/ledger"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/orderbook"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/portfolio"
)

var (
	// ErrCustomSettingsUnsupported used when custom settings are found in the config when they shouldn't be
	ErrCustomSettingsUnsupported = errors.New("custom settings not supported")
	// ErrStrategyNotFound used when strategy specified in config does not exist
	ErrStrategyNotFound = errors.New("not found. Please ensure the strategy-settings field 'name' is spelled properly in your config")
	// ErrInvalidCustomSettings used when bad custom settings are found in the config
	ErrInvalidCustomSettings = errors.New("invalid custom settings in config")
	// ErrNilContext is returned when a hook is invoked without a context
	ErrNilContext = errors.New("nil strategy context")
)

// Context is what a strategy can see and do during a hook. Reads reflect the
// state of the simulation at the current date and phase
type Context interface {
	Date() time.Time
	Phase() common.Phase
	EligibleSymbols() []string
	IsEligible(symbol string) bool
	View() *portfolio.View
	Position(symbol string) (ledger.Position, bool)
	Cash() decimal.Decimal
	Equity() decimal.Decimal
	Price(symbol string) (decimal.Decimal, error)
	Window(symbol string) ([]data.Bar, error)
	PlaceMarketOrder(symbol string, quantity decimal.Decimal, desired common.Phase) (uint64, error)
}

// OrderDropListener can be implemented by a strategy to be told when its
// pending orders are removed because their symbol is no longer tradeable
type OrderDropListener interface {
	OnOrdersDropped(date time.Time, dropped []orderbook.Order)
}

// Strategy is base implementation of the Handler interface
type Strategy struct {
	customSettingsApplied bool
}
