package data

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/barsim/backtester/common"
	libcommon "github.com/thrasher-corp/barsim/common"
)

// ParseInterval converts a config string into a supported Interval
func ParseInterval(s string) (Interval, error) {
	switch Interval(strings.ToUpper(strings.TrimSpace(s))) {
	case OneDay, "":
		return OneDay, nil
	case OneWeek:
		return OneWeek, nil
	case OneMonth:
		return OneMonth, nil
	default:
		return "", fmt.Errorf("%w '%v', supported: %v, %v, %v", ErrUnsupportedInterval, s, OneDay, OneWeek, OneMonth)
	}
}

// NormaliseDate strips the time of day so bars key on calendar dates
func NormaliseDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Validate checks the bar holds a date and consistent prices
func (b *Bar) Validate() error {
	if b.Date.IsZero() {
		return fmt.Errorf("%w missing date", errInvalidBar)
	}
	if b.Open.IsNegative() || b.High.IsNegative() || b.Low.IsNegative() || b.Close.IsNegative() || b.Volume.IsNegative() {
		return fmt.Errorf("%w negative value on %v", errInvalidBar, b.Date.Format(libcommon.DateFormat))
	}
	if b.High.LessThan(b.Low) {
		return fmt.Errorf("%w high %v below low %v on %v", errInvalidBar, b.High, b.Low, b.Date.Format(libcommon.DateFormat))
	}
	return nil
}

// NewHolder sorts and indexes the series and builds the union date index
func NewHolder(series map[string][]Bar) (*Holder, error) {
	if len(series) == 0 {
		return nil, ErrNoData
	}
	h := &Holder{
		bars:    make(map[string][]Bar, len(series)),
		offsets: make(map[string]map[int64]int, len(series)),
	}
	union := make(map[int64]time.Time)
	for symbol, bars := range series {
		if symbol == "" {
			return nil, fmt.Errorf("%w empty symbol", errInvalidBar)
		}
		if len(bars) == 0 {
			continue
		}
		sorted := make([]Bar, len(bars))
		copy(sorted, bars)
		for i := range sorted {
			sorted[i].Date = NormaliseDate(sorted[i].Date)
			if err := sorted[i].Validate(); err != nil {
				return nil, fmt.Errorf("%v %w", symbol, err)
			}
		}
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Date.Before(sorted[j].Date)
		})
		offsets := make(map[int64]int, len(sorted))
		for i := range sorted {
			key := sorted[i].Date.Unix()
			if _, ok := offsets[key]; ok {
				return nil, fmt.Errorf("%w %v %v", errDuplicateDate, symbol, sorted[i].Date.Format(libcommon.DateFormat))
			}
			offsets[key] = i
			union[key] = sorted[i].Date
		}
		h.bars[symbol] = sorted
		h.offsets[symbol] = offsets
		h.symbols = append(h.symbols, symbol)
	}
	if len(h.symbols) == 0 {
		return nil, ErrNoData
	}
	sort.Strings(h.symbols)
	h.dates = make([]time.Time, 0, len(union))
	for _, d := range union {
		h.dates = append(h.dates, d)
	}
	sort.Slice(h.dates, func(i, j int) bool {
		return h.dates[i].Before(h.dates[j])
	})
	return h, nil
}

// DateIndex returns a copy of the strictly increasing union of all bar dates
func (h *Holder) DateIndex() []time.Time {
	resp := make([]time.Time, len(h.dates))
	copy(resp, h.dates)
	return resp
}

// Symbols returns every symbol in sorted order
func (h *Holder) Symbols() []string {
	resp := make([]string, len(h.symbols))
	copy(resp, h.symbols)
	return resp
}

// Bars returns a copy of a symbol's full series
func (h *Holder) Bars(symbol string) []Bar {
	bars := h.bars[symbol]
	resp := make([]Bar, len(bars))
	copy(resp, bars)
	return resp
}

// HasBar reports whether the symbol has a bar on the date
func (h *Holder) HasBar(symbol string, date time.Time) bool {
	_, ok := h.offsets[symbol][NormaliseDate(date).Unix()]
	return ok
}

// Price returns the open price at the open phase and the close price at the
// close phase
func (h *Holder) Price(symbol string, date time.Time, phase common.Phase) (decimal.Decimal, error) {
	bar, err := h.bar(symbol, date)
	if err != nil {
		return decimal.Zero, err
	}
	switch phase {
	case common.Open:
		return bar.Open, nil
	case common.Close:
		return bar.Close, nil
	default:
		return decimal.Zero, fmt.Errorf("%w %d", common.ErrInvalidPhase, phase)
	}
}

// BarsAvailable counts the symbol's bars dated on or before asOf
func (h *Holder) BarsAvailable(symbol string, asOf time.Time) int {
	bars := h.bars[symbol]
	asOf = NormaliseDate(asOf)
	return sort.Search(len(bars), func(i int) bool {
		return bars[i].Date.After(asOf)
	})
}

// Window returns up to size bars dated on or before asOf, oldest first. At the
// open phase the bar for asOf only carries its open price
func (h *Holder) Window(symbol string, asOf time.Time, size int, phase common.Phase) ([]Bar, error) {
	if size < 1 {
		return nil, errInvalidLookback
	}
	if !phase.Valid() {
		return nil, fmt.Errorf("%w %d", common.ErrInvalidPhase, phase)
	}
	bars, ok := h.bars[symbol]
	if !ok {
		return nil, fmt.Errorf("%w %v", common.ErrUnknownSymbol, symbol)
	}
	end := h.BarsAvailable(symbol, asOf)
	start := end - size
	if start < 0 {
		start = 0
	}
	resp := make([]Bar, end-start)
	copy(resp, bars[start:end])
	asOf = NormaliseDate(asOf)
	if phase == common.Open && len(resp) > 0 && resp[len(resp)-1].Date.Equal(asOf) {
		resp[len(resp)-1] = Bar{Date: asOf, Open: resp[len(resp)-1].Open}
	}
	return resp, nil
}

func (h *Holder) bar(symbol string, date time.Time) (*Bar, error) {
	offsets, ok := h.offsets[symbol]
	if !ok {
		return nil, fmt.Errorf("%w %v", common.ErrUnknownSymbol, symbol)
	}
	i, ok := offsets[NormaliseDate(date).Unix()]
	if !ok {
		return nil, fmt.Errorf("%w %v %v", common.ErrNoDataForDate, symbol, date.Format(libcommon.DateFormat))
	}
	return &h.bars[symbol][i], nil
}
