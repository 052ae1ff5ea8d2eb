package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/barsim/backtester/common"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/portfolio"
	libcommon "github.com/thrasher-corp/barsim/common"
	"github.com/thrasher-corp/barsim/log"
)

// New creates a ledger holding only cash
func New(initialCash decimal.Decimal) (*Ledger, error) {
	if !initialCash.IsPositive() {
		return nil, fmt.Errorf("%w: %v", errNonPositiveCash, initialCash)
	}
	l := &Ledger{
		initialCash: initialCash,
		cash:        initialCash,
		equity:      initialCash,
		assets:      make(map[string]*Position),
		liabilities: make(map[string]*Position),
	}
	l.initial = l.snapshot(time.Time{})
	return l, nil
}

// String implements the stringer interface
func (s Side) String() string {
	if s == Short {
		return "short"
	}
	return "long"
}

// SignedQuantity returns the quantity with the sign of the side
func (p *Position) SignedQuantity() decimal.Decimal {
	if p.Side == Short {
		return p.Quantity.Neg()
	}
	return p.Quantity
}

func (p *Position) clone() Position {
	cpy := *p
	cpy.Ladder = copyLadder(p.Ladder)
	return cpy
}

// ApplyFill applies an executed order using FIFO cost accounting. Purchases
// draw on cash first and borrow any shortfall. Sale proceeds from longs repay
// borrowed funds first; short sale proceeds are credited to cash
func (l *Ledger) ApplyFill(f *Fill) error {
	if f == nil {
		return fmt.Errorf("%w fill", libcommon.ErrNilPointer)
	}
	if f.Symbol == "" {
		return errEmptySymbol
	}
	if f.Quantity.IsZero() {
		return fmt.Errorf("%w order %d", errZeroQuantity, f.OrderID)
	}
	if f.Price.IsNegative() {
		return fmt.Errorf("%w order %d price %v", errNegativePrice, f.OrderID, f.Price)
	}
	var err error
	if pos, ok := l.assets[f.Symbol]; ok {
		err = l.applyToLong(pos, f)
	} else if pos, ok := l.liabilities[f.Symbol]; ok {
		err = l.applyToShort(pos, f)
	} else {
		l.open(f, f.Quantity.Abs(), f.Quantity.IsPositive())
	}
	if err != nil {
		return err
	}
	l.revalue()
	log.Debugf(common.SubLoggers[common.Ledger], "order %d %v %v @ %v cash %v borrowed %v equity %v",
		f.OrderID, f.Symbol, f.Quantity, f.Price, l.cash, l.borrowed, l.equity)
	return nil
}

func (l *Ledger) applyToLong(pos *Position, f *Fill) error {
	if f.Quantity.IsPositive() {
		l.increase(pos, f)
		l.fund(f.Quantity.Mul(f.Price))
		return nil
	}
	sold := f.Quantity.Abs()
	if sold.LessThan(pos.Quantity) {
		cost, ladder, err := ReduceLadder(sold, pos.Ladder)
		if err != nil {
			return err
		}
		proceeds := sold.Mul(f.Price)
		l.reduce(pos, f, sold, cost, ladder, proceeds.Sub(cost))
		l.repay(proceeds)
		return nil
	}
	proceeds := pos.Quantity.Mul(f.Price)
	if err := l.close(pos, f, proceeds.Sub(pos.CostBasis)); err != nil {
		return err
	}
	l.repay(proceeds)
	if residual := sold.Sub(pos.Quantity); residual.IsPositive() {
		l.open(f, residual, false)
	}
	return nil
}

func (l *Ledger) applyToShort(pos *Position, f *Fill) error {
	if f.Quantity.IsNegative() {
		l.increase(pos, f)
		l.credit(f.Quantity.Abs().Mul(f.Price))
		return nil
	}
	bought := f.Quantity
	if bought.LessThan(pos.Quantity) {
		cost, ladder, err := ReduceLadder(bought, pos.Ladder)
		if err != nil {
			return err
		}
		outlay := bought.Mul(f.Price)
		l.reduce(pos, f, bought, cost, ladder, cost.Sub(outlay))
		l.fund(outlay)
		return nil
	}
	outlay := pos.Quantity.Mul(f.Price)
	if err := l.close(pos, f, pos.CostBasis.Sub(outlay)); err != nil {
		return err
	}
	l.fund(outlay)
	if residual := bought.Sub(pos.Quantity); residual.IsPositive() {
		l.open(f, residual, true)
	}
	return nil
}

// open seeds a new single lot position and settles it: longs are funded,
// short proceeds are credited to cash
func (l *Ledger) open(f *Fill, quantity decimal.Decimal, long bool) {
	value := quantity.Mul(f.Price)
	pos := &Position{
		Symbol:          f.Symbol,
		Quantity:        quantity,
		Price:           f.Price,
		MarketValue:     value,
		CostBasis:       value,
		Ladder:          []Lot{{Quantity: quantity, Price: f.Price}},
		OpenedOn:        f.Date,
		MostRecentOrder: f.OrderID,
	}
	if long {
		pos.Side = Long
		l.assets[f.Symbol] = pos
		l.fund(value)
		return
	}
	pos.Side = Short
	l.liabilities[f.Symbol] = pos
	l.credit(value)
}

func (l *Ledger) increase(pos *Position, f *Fill) {
	added := f.Quantity.Abs()
	pos.Ladder = append(pos.Ladder, Lot{Quantity: added, Price: f.Price})
	pos.Quantity = pos.Quantity.Add(added)
	pos.CostBasis = pos.CostBasis.Add(added.Mul(f.Price))
	pos.Price = f.Price
	pos.MarketValue = pos.Quantity.Mul(f.Price)
	pos.MostRecentOrder = f.OrderID
}

func (l *Ledger) reduce(pos *Position, f *Fill, removed, cost decimal.Decimal, ladder []Lot, pnl decimal.Decimal) {
	pos.Ladder = ladder
	pos.Quantity = pos.Quantity.Sub(removed)
	pos.CostBasis = pos.CostBasis.Sub(cost)
	pos.Price = f.Price
	pos.MarketValue = pos.Quantity.Mul(f.Price)
	pos.MostRecentOrder = f.OrderID
	pos.RealisedPNL = pos.RealisedPNL.Add(pnl)
	l.realised = l.realised.Add(pnl)
}

// close removes the whole ladder and deletes the position
func (l *Ledger) close(pos *Position, f *Fill, pnl decimal.Decimal) error {
	if _, _, err := ReduceLadder(pos.Quantity, pos.Ladder); err != nil {
		return err
	}
	l.realised = l.realised.Add(pnl)
	l.remove(pos)
	log.Debugf(common.SubLoggers[common.Ledger], "order %d closed %v %v position, realised %v", f.OrderID, pos.Side, pos.Symbol, pos.RealisedPNL.Add(pnl))
	return nil
}

func (l *Ledger) remove(pos *Position) {
	if pos.Side == Short {
		delete(l.liabilities, pos.Symbol)
		return
	}
	delete(l.assets, pos.Symbol)
}

// fund pays for a purchase from cash, borrowing whatever cash cannot cover
func (l *Ledger) fund(amount decimal.Decimal) {
	if amount.LessThanOrEqual(l.cash) {
		l.cash = l.cash.Sub(amount)
		return
	}
	l.borrowed = l.borrowed.Add(amount.Sub(l.cash))
	l.cash = decimal.Zero
}

// repay uses proceeds to pay down borrowed funds, crediting any remainder
func (l *Ledger) repay(amount decimal.Decimal) {
	if amount.GreaterThanOrEqual(l.borrowed) {
		l.cash = l.cash.Add(amount.Sub(l.borrowed))
		l.borrowed = decimal.Zero
		return
	}
	l.borrowed = l.borrowed.Sub(amount)
}

func (l *Ledger) credit(amount decimal.Decimal) {
	l.cash = l.cash.Add(amount)
}

// RemoveDelisted liquidates every position whose symbol is no longer eligible
// at its last marked value. Assets are settled before liabilities. It returns
// the removed symbols in sorted order
func (l *Ledger) RemoveDelisted(isEligible func(symbol string) bool) []string {
	var removed []string
	for _, sym := range sortedKeys(l.assets) {
		if isEligible(sym) {
			continue
		}
		pos := l.assets[sym]
		pnl := pos.MarketValue.Sub(pos.CostBasis)
		l.realised = l.realised.Add(pnl)
		l.repay(pos.MarketValue)
		l.remove(pos)
		removed = append(removed, sym)
		log.Infof(common.SubLoggers[common.Ledger], "%v delisted, liquidated long at %v", sym, pos.MarketValue)
	}
	for _, sym := range sortedKeys(l.liabilities) {
		if isEligible(sym) {
			continue
		}
		pos := l.liabilities[sym]
		pnl := pos.CostBasis.Sub(pos.MarketValue)
		l.realised = l.realised.Add(pnl)
		l.fund(pos.MarketValue)
		l.remove(pos)
		removed = append(removed, sym)
		log.Infof(common.SubLoggers[common.Ledger], "%v delisted, covered short at %v", sym, pos.MarketValue)
	}
	if len(removed) > 0 {
		sort.Strings(removed)
		l.revalue()
	}
	return removed
}

// MarkToMarket values every position at the phase price and recomputes equity
func (l *Ledger) MarkToMarket(prices PriceSource, date time.Time, phase common.Phase) error {
	if prices == nil {
		return fmt.Errorf("%w price source", libcommon.ErrNilPointer)
	}
	var errs error
	for _, book := range []map[string]*Position{l.assets, l.liabilities} {
		for sym, pos := range book {
			price, err := prices.Price(sym, date, phase)
			if err != nil {
				errs = libcommon.AppendError(errs, err)
				continue
			}
			pos.Price = price
			pos.MarketValue = pos.Quantity.Mul(price)
		}
	}
	l.revalue()
	return errs
}

// revalue recomputes equity from the current marks and rebuilds the view
func (l *Ledger) revalue() {
	equity := l.cash.Sub(l.borrowed)
	holdings := make([]portfolio.Holding, 0, len(l.assets)+len(l.liabilities))
	for _, pos := range l.assets {
		equity = equity.Add(pos.MarketValue)
		holdings = append(holdings, portfolio.Holding{Symbol: pos.Symbol, Quantity: pos.Quantity, MarketValue: pos.MarketValue})
	}
	for _, pos := range l.liabilities {
		equity = equity.Sub(pos.MarketValue)
		holdings = append(holdings, portfolio.Holding{Symbol: pos.Symbol, Quantity: pos.Quantity.Neg(), MarketValue: pos.MarketValue})
	}
	l.equity = equity
	l.view.Update(holdings)
}

// Snapshot appends a copy of the current state to the account history and a
// row to the result series
func (l *Ledger) Snapshot(date time.Time) Snapshot {
	s := l.snapshot(date)
	l.history = append(l.history, s)
	l.results = append(l.results, ResultRow{Date: date, Cash: l.cash, Value: l.equity})
	return s
}

func (l *Ledger) snapshot(date time.Time) Snapshot {
	s := Snapshot{
		Date:        date,
		Cash:        l.cash,
		Borrowed:    l.borrowed,
		Equity:      l.equity,
		RealisedPNL: l.realised,
		Assets:      make([]Position, 0, len(l.assets)),
		Liabilities: make([]Position, 0, len(l.liabilities)),
	}
	for _, sym := range sortedKeys(l.assets) {
		s.Assets = append(s.Assets, l.assets[sym].clone())
	}
	for _, sym := range sortedKeys(l.liabilities) {
		s.Liabilities = append(s.Liabilities, l.liabilities[sym].clone())
	}
	return s
}

// Reconciles reports whether equity equals cash less borrowed funds plus
// asset values less liability values
func (s *Snapshot) Reconciles() bool {
	expected := s.Cash.Sub(s.Borrowed)
	for i := range s.Assets {
		expected = expected.Add(s.Assets[i].MarketValue)
	}
	for i := range s.Liabilities {
		expected = expected.Sub(s.Liabilities[i].MarketValue)
	}
	return expected.Equal(s.Equity)
}

// Cash returns available cash
func (l *Ledger) Cash() decimal.Decimal {
	return l.cash
}

// Borrowed returns outstanding borrowed funds
func (l *Ledger) Borrowed() decimal.Decimal {
	return l.borrowed
}

// Equity returns the most recently computed account value
func (l *Ledger) Equity() decimal.Decimal {
	return l.equity
}

// InitialCash returns the starting cash
func (l *Ledger) InitialCash() decimal.Decimal {
	return l.initialCash
}

// RealisedPNL returns profit realised across all closed and reduced positions
func (l *Ledger) RealisedPNL() decimal.Decimal {
	return l.realised
}

// Position returns a copy of the open position for a symbol
func (l *Ledger) Position(symbol string) (Position, bool) {
	if pos, ok := l.assets[symbol]; ok {
		return pos.clone(), true
	}
	if pos, ok := l.liabilities[symbol]; ok {
		return pos.clone(), true
	}
	return Position{}, false
}

// View returns the derived set of held symbols
func (l *Ledger) View() *portfolio.View {
	return &l.view
}

// Initial returns the state before the first date
func (l *Ledger) Initial() Snapshot {
	return l.initial
}

// History returns the per date snapshots
func (l *Ledger) History() []Snapshot {
	resp := make([]Snapshot, len(l.history))
	copy(resp, l.history)
	return resp
}

// Results returns the per date cash and value series
func (l *Ledger) Results() []ResultRow {
	resp := make([]ResultRow, len(l.results))
	copy(resp, l.results)
	return resp
}

func sortedKeys(m map[string]*Position) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
