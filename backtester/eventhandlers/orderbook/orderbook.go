package orderbook

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/barsim/backtester/common"
	libcommon "github.com/thrasher-corp/barsim/common"
	"github.com/thrasher-corp/barsim/log"
)

// New creates an empty order book
func New(clock Clock, prices Pricer, executor Executor) (*Book, error) {
	if clock == nil {
		return nil, fmt.Errorf("%w clock", libcommon.ErrNilPointer)
	}
	if prices == nil {
		return nil, fmt.Errorf("%w pricer", libcommon.ErrNilPointer)
	}
	if executor == nil {
		return nil, fmt.Errorf("%w executor", libcommon.ErrNilPointer)
	}
	return &Book{
		clock:    clock,
		prices:   prices,
		executor: executor,
	}, nil
}

// String implements the stringer interface
func (s Status) String() string {
	if s == Executed {
		return "executed"
	}
	return "pending"
}

// PlaceMarketOrder records a new order and executes it immediately when the
// desired phase is the current phase, otherwise it is queued
func (b *Book) PlaceMarketOrder(symbol string, quantity decimal.Decimal, desired common.Phase) (uint64, error) {
	if quantity.IsZero() {
		return 0, fmt.Errorf("%w: %w", ErrOrderRejected, errZeroQuantity)
	}
	if !desired.Valid() {
		return 0, fmt.Errorf("%w: %w %d", ErrOrderRejected, common.ErrInvalidPhase, desired)
	}
	date := b.clock.CurrentDate()
	if date.IsZero() {
		return 0, errNoDate
	}
	if !b.clock.IsEligible(symbol) {
		return 0, fmt.Errorf("%w: %w %v on %v", ErrOrderRejected, errSymbolNotEligible, symbol, date.Format(libcommon.DateFormat))
	}
	o := &Order{
		ID:           b.nextID,
		Symbol:       symbol,
		Quantity:     quantity,
		Kind:         Market,
		DesiredPhase: desired,
		PlacedOn:     date,
		PlacedPhase:  b.clock.Phase(),
		Status:       Pending,
	}
	b.nextID++
	b.placements = append(b.placements, *o)
	log.Debugf(common.SubLoggers[common.OrderBook], "order %d placed %v %v for %v", o.ID, o.Symbol, o.Quantity, o.DesiredPhase)
	if desired == b.clock.Phase() {
		if err := b.execute(o); err != nil {
			b.pending = append(b.pending, o)
			return o.ID, err
		}
		return o.ID, nil
	}
	b.pending = append(b.pending, o)
	return o.ID, nil
}

// ScanAndExecute executes every pending order whose desired phase is the
// given phase in ascending id order. It returns the number executed
func (b *Book) ScanAndExecute(phase common.Phase) (int, error) {
	var executed int
	remaining := b.pending[:0]
	for i, o := range b.pending {
		if o.DesiredPhase != phase {
			remaining = append(remaining, o)
			continue
		}
		if err := b.execute(o); err != nil {
			remaining = append(remaining, b.pending[i:]...)
			b.pending = remaining
			return executed, err
		}
		executed++
	}
	for i := len(remaining); i < len(b.pending); i++ {
		b.pending[i] = nil
	}
	b.pending = remaining
	return executed, nil
}

func (b *Book) execute(o *Order) error {
	date := b.clock.CurrentDate()
	phase := b.clock.Phase()
	price, err := b.prices.Price(o.Symbol, date, phase)
	if err != nil {
		return fmt.Errorf("order %d %w", o.ID, err)
	}
	executed := *o
	executed.Status = Executed
	executed.ExecutionPrice = price
	executed.ExecutedOn = date
	executed.ExecutedPhase = phase
	if err = b.executor.ExecuteOrder(&executed); err != nil {
		return fmt.Errorf("order %d %w", o.ID, err)
	}
	*o = executed
	b.executions = append(b.executions, executed)
	log.Debugf(common.SubLoggers[common.OrderBook], "order %d executed %v %v @ %v", o.ID, o.Symbol, o.Quantity, price)
	return nil
}

// DropOrdersFor silently removes pending orders for the symbols and returns
// the dropped orders
func (b *Book) DropOrdersFor(symbols []string) []Order {
	drop := make(map[string]struct{}, len(symbols))
	for i := range symbols {
		drop[symbols[i]] = struct{}{}
	}
	return b.dropWhere(func(o *Order) bool {
		_, ok := drop[o.Symbol]
		return ok
	})
}

// DropIneligible removes pending orders for every symbol the clock no longer
// considers eligible and returns the dropped orders
func (b *Book) DropIneligible() []Order {
	return b.dropWhere(func(o *Order) bool {
		return !b.clock.IsEligible(o.Symbol)
	})
}

func (b *Book) dropWhere(match func(*Order) bool) []Order {
	var dropped []Order
	remaining := b.pending[:0]
	for _, o := range b.pending {
		if match(o) {
			dropped = append(dropped, *o)
			continue
		}
		remaining = append(remaining, o)
	}
	for i := len(remaining); i < len(b.pending); i++ {
		b.pending[i] = nil
	}
	b.pending = remaining
	for i := range dropped {
		log.Debugf(common.SubLoggers[common.OrderBook], "order %d for %v dropped unexecuted", dropped[i].ID, dropped[i].Symbol)
	}
	return dropped
}

// Pending returns copies of the queued orders in id order
func (b *Book) Pending() []Order {
	resp := make([]Order, len(b.pending))
	for i := range b.pending {
		resp[i] = *b.pending[i]
	}
	return resp
}

// Placements returns the placement audit log, one entry per order
func (b *Book) Placements() []Order {
	resp := make([]Order, len(b.placements))
	copy(resp, b.placements)
	return resp
}

// Executions returns the execution audit log, one entry per executed order
func (b *Book) Executions() []Order {
	resp := make([]Order, len(b.executions))
	copy(resp, b.executions)
	return resp
}
