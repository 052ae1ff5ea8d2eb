package statistics

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/ledger"
)

// DaysPerYear is the day count convention used to annualise growth
const DaysPerYear = 365

var (
	// ErrUndefinedMetric is reported when a ratio has a zero denominator
	ErrUndefinedMetric = errors.New("undefined metric")

	errReceivedNoData   = errors.New("received no data")
	errNonPositivePeak  = errors.New("running maximum is not positive, drawdown is undefined")
	errDateNotFound     = errors.New("date not found in value series")
	errInvalidDateRange = errors.New("end date must be after start date")
)

// ValueAtTime is an individual iteration of value at a time
type ValueAtTime struct {
	Time  time.Time       `json:"time"`
	Value decimal.Decimal `json:"value"`
}

// UnderwaterPoint pairs a value with its running maximum
type UnderwaterPoint struct {
	Time       time.Time       `json:"time"`
	Value      decimal.Decimal `json:"value"`
	RunningMax decimal.Decimal `json:"running-max"`
}

// Swing holds a drawdown from a peak to a trough
type Swing struct {
	Highest          ValueAtTime     `json:"highest"`
	Lowest           ValueAtTime     `json:"lowest"`
	DrawdownPercent  decimal.Decimal `json:"drawdown"`
	IntervalDuration int64           `json:"interval-duration"`
}

// Metric is a derived value which may be undefined. An undefined metric
// carries the reason instead of a NaN
type Metric struct {
	Value   decimal.Decimal `json:"value"`
	Defined bool            `json:"defined"`
	Reason  string          `json:"reason,omitempty"`
}

// Results holds the performance statistics of one run
type Results struct {
	StartDate        time.Time         `json:"start-date"`
	EndDate          time.Time         `json:"end-date"`
	StartValue       decimal.Decimal   `json:"start-value"`
	EndValue         decimal.Decimal   `json:"end-value"`
	StrategyMovement decimal.Decimal   `json:"strategy-movement"`
	Underwater       []UnderwaterPoint `json:"underwater"`
	Drawdown         []ValueAtTime     `json:"drawdown"`
	MaxDrawdown      decimal.Decimal   `json:"max-drawdown"`
	AverageDrawdown  decimal.Decimal   `json:"average-drawdown"`
	MaxDrawdownSwing Swing             `json:"max-drawdown-swing"`
	CAGR             decimal.Decimal   `json:"compound-annual-growth-rate"`
	CAGROverMDD      Metric            `json:"cagr-over-mdd"`
}

// Analyzer derives Results from a value series
type Analyzer struct{}

// Tracker observes every snapshot as it is appended during a run
type Tracker interface {
	OnSnapshot(s *ledger.Snapshot) error
}

// PeakTracker follows the peak equity and worst drawdown while a run
// progresses
type PeakTracker struct {
	peak     ValueAtTime
	worst    decimal.Decimal
	worstAt  time.Time
	observed int
}
