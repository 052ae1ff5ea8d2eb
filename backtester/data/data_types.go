package data

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/barsim/backtester/common"
)

// Interval is a supported bar granularity
type Interval string

// Supported intervals. Daily bars are the native granularity, weekly and
// monthly are resampled from daily
const (
	OneDay   Interval = "1D"
	OneWeek  Interval = "1W"
	OneMonth Interval = "1M"
)

var (
	// ErrUnsupportedInterval is returned for any granularity finer than daily
	// or otherwise unknown
	ErrUnsupportedInterval = errors.New("unsupported data interval")
	// ErrNoData is returned when a loader or holder receives no bars
	ErrNoData = errors.New("no data")

	errDuplicateDate   = errors.New("duplicate bar date")
	errInvalidBar      = errors.New("invalid bar")
	errInvalidLookback = errors.New("lookback must be at least one")
)

// Bar is a single open/high/low/close/volume observation for one symbol
type Bar struct {
	Date   time.Time       `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume decimal.Decimal `json:"volume"`
}

// Provider supplies prefetched, random access price data by symbol, date and
// phase. Implementations must be safe for concurrent readers
type Provider interface {
	Price(symbol string, date time.Time, phase common.Phase) (decimal.Decimal, error)
	BarsAvailable(symbol string, asOf time.Time) int
	HasBar(symbol string, date time.Time) bool
	DateIndex() []time.Time
	Symbols() []string
	Window(symbol string, asOf time.Time, size int, phase common.Phase) ([]Bar, error)
}

// Holder is an immutable in-memory Provider built from per symbol bar series
type Holder struct {
	dates   []time.Time
	symbols []string
	bars    map[string][]Bar
	offsets map[string]map[int64]int
}
