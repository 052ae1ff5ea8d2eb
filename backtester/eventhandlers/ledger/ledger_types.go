package ledger

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/barsim/backtester/common"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/portfolio"
)

var (
	// ErrInsufficientLots is a fatal consistency fault raised when a reduction
	// asks for more shares than the lot ladder holds
	ErrInsufficientLots = errors.New("insufficient lots")

	errNonPositiveCash     = errors.New("initial cash must be positive")
	errZeroQuantity        = errors.New("order quantity cannot be zero")
	errNonPositiveQuantity = errors.New("quantity to remove must be positive")
	errNegativePrice       = errors.New("execution price cannot be negative")
	errEmptySymbol         = errors.New("symbol cannot be empty")
)

// Side is the direction of an open position
type Side uint8

// Position sides
const (
	Long Side = iota
	Short
)

// PriceSource returns the phase appropriate price of a symbol on a date
type PriceSource interface {
	Price(symbol string, date time.Time, phase common.Phase) (decimal.Decimal, error)
}

// Lot is one acquisition layer of a position
type Lot struct {
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Position is an open long (asset) or short (liability). Quantity is the
// magnitude; the sum of ladder quantities always equals it
type Position struct {
	Symbol          string          `json:"symbol"`
	Side            Side            `json:"side"`
	Quantity        decimal.Decimal `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	MarketValue     decimal.Decimal `json:"market-value"`
	CostBasis       decimal.Decimal `json:"cost-basis"`
	Ladder          []Lot           `json:"ladder"`
	OpenedOn        time.Time       `json:"opened-on"`
	MostRecentOrder uint64          `json:"most-recent-order"`
	RealisedPNL     decimal.Decimal `json:"realised-pnl"`
}

// Fill is an executed order as applied to the ledger. Quantity is signed:
// positive buys, negative sells
type Fill struct {
	OrderID  uint64
	Symbol   string
	Quantity decimal.Decimal
	Price    decimal.Decimal
	Date     time.Time
}

// Snapshot is an immutable copy of ledger state at the end of a date
type Snapshot struct {
	Date        time.Time       `json:"date"`
	Cash        decimal.Decimal `json:"cash"`
	Borrowed    decimal.Decimal `json:"borrowed-funds"`
	Equity      decimal.Decimal `json:"equity"`
	RealisedPNL decimal.Decimal `json:"realised-pnl"`
	Assets      []Position      `json:"assets"`
	Liabilities []Position      `json:"liabilities"`
}

// ResultRow is one entry of the cash and total value series
type ResultRow struct {
	Date  time.Time       `json:"date"`
	Cash  decimal.Decimal `json:"cash"`
	Value decimal.Decimal `json:"value"`
}

// Ledger holds cash, borrowed funds and FIFO costed positions. It is owned by
// a single simulation and is not safe for concurrent use
type Ledger struct {
	initialCash decimal.Decimal
	cash        decimal.Decimal
	borrowed    decimal.Decimal
	equity      decimal.Decimal
	realised    decimal.Decimal
	assets      map[string]*Position
	liabilities map[string]*Position
	view        portfolio.View
	initial     Snapshot
	history     []Snapshot
	results     []ResultRow
}
