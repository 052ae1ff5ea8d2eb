package scheduler

import (
	"errors"
	"time"

	"github.com/thrasher-corp/barsim/backtester/common"
)

var (
	// ErrEndOfData is returned by Advance once every date has been visited.
	// It terminates the simulation loop and is not a failure
	ErrEndOfData = errors.New("end of data")

	errInvalidLookback   = errors.New("lookback must be at least one")
	errInsufficientDates = errors.New("not enough dates to satisfy lookback")
	errPhaseExhausted    = errors.New("close phase already reached for date")
	errNotStarted        = errors.New("scheduler has not advanced to a date")
)

// Calendar is the subset of a data provider the scheduler needs to step
// through dates and decide symbol eligibility
type Calendar interface {
	DateIndex() []time.Time
	Symbols() []string
	HasBar(symbol string, date time.Time) bool
	BarsAvailable(symbol string, asOf time.Time) int
}

// Scheduler owns the date cursor and phase flag. It only moves forward; a
// rerun requires a new Scheduler
type Scheduler struct {
	calendar Calendar
	dates    []time.Time
	symbols  []string
	lookback int
	cursor   int
	phase    common.Phase
	eligible []string
	lookup   map[string]struct{}
}
