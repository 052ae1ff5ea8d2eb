package orderbook

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/barsim/backtester/common"
)

var (
	// ErrOrderRejected wraps every reason an order is refused at placement.
	// Nothing is recorded for a rejected order
	ErrOrderRejected = errors.New("order rejected")

	errZeroQuantity      = errors.New("order quantity cannot be zero")
	errSymbolNotEligible = errors.New("symbol is not eligible for trading")
	errNoDate            = errors.New("order book clock has no current date")
)

// Status is the lifecycle state of an order
type Status uint8

// Order statuses. Executed is terminal
const (
	Pending Status = iota
	Executed
)

// Kind is the order type
type Kind string

// Market is the only supported order kind
const Market Kind = "market"

// Order is a strategy submitted instruction. Quantity is signed: positive
// buys, negative sells. It is never modified once executed
type Order struct {
	ID             uint64          `json:"id"`
	Symbol         string          `json:"symbol"`
	Quantity       decimal.Decimal `json:"quantity"`
	Kind           Kind            `json:"kind"`
	DesiredPhase   common.Phase    `json:"desired-phase"`
	PlacedOn       time.Time       `json:"placed-on"`
	PlacedPhase    common.Phase    `json:"placed-phase"`
	Status         Status          `json:"status"`
	ExecutionPrice decimal.Decimal `json:"execution-price,omitempty"`
	ExecutedOn     time.Time       `json:"executed-on,omitempty"`
	ExecutedPhase  common.Phase    `json:"executed-phase,omitempty"`
}

// Clock exposes the scheduler state the book needs
type Clock interface {
	CurrentDate() time.Time
	Phase() common.Phase
	IsEligible(symbol string) bool
}

// Pricer returns the phase appropriate price of a symbol
type Pricer interface {
	Price(symbol string, date time.Time, phase common.Phase) (decimal.Decimal, error)
}

// Executor settles an executed order
type Executor interface {
	ExecuteOrder(o *Order) error
}

// Book queues, executes and audits market orders for one simulation. It is
// not safe for concurrent use
type Book struct {
	clock      Clock
	prices     Pricer
	executor   Executor
	nextID     uint64
	pending    []*Order
	placements []Order
	executions []Order
}
