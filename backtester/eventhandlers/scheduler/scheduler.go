package scheduler

import (
	"fmt"
	"time"

	"github.com/thrasher-corp/barsim/backtester/common"
	libcommon "github.com/thrasher-corp/barsim/common"
	"github.com/thrasher-corp/barsim/log"
)

// New creates a scheduler positioned before the first date
func New(c Calendar, lookback int) (*Scheduler, error) {
	if c == nil {
		return nil, fmt.Errorf("%w calendar", libcommon.ErrNilPointer)
	}
	if lookback < 1 {
		return nil, errInvalidLookback
	}
	dates := c.DateIndex()
	if len(dates) < lookback {
		return nil, fmt.Errorf("%w: %d dates, lookback %d", errInsufficientDates, len(dates), lookback)
	}
	return &Scheduler{
		calendar: c,
		dates:    dates,
		symbols:  c.Symbols(),
		lookback: lookback,
		cursor:   -1,
	}, nil
}

// Advance moves to the next date, resets the phase to open and recomputes the
// eligible symbol set. It returns ErrEndOfData when the index is exhausted
func (s *Scheduler) Advance() (time.Time, error) {
	if s.cursor+1 >= len(s.dates) {
		s.cursor = len(s.dates)
		return time.Time{}, ErrEndOfData
	}
	s.cursor++
	s.phase = common.Open
	date := s.dates[s.cursor]
	s.eligible = s.eligible[:0]
	s.lookup = make(map[string]struct{}, len(s.symbols))
	for _, sym := range s.symbols {
		if !s.calendar.HasBar(sym, date) {
			continue
		}
		if s.calendar.BarsAvailable(sym, date) < s.lookback {
			continue
		}
		s.eligible = append(s.eligible, sym)
		s.lookup[sym] = struct{}{}
	}
	log.Debugf(common.SubLoggers[common.Scheduler], "%v %d eligible symbols", date.Format(libcommon.DateFormat), len(s.eligible))
	return date, nil
}

// NextPhase moves from the open phase to the close phase of the current date
func (s *Scheduler) NextPhase() error {
	if s.cursor < 0 || s.cursor >= len(s.dates) {
		return errNotStarted
	}
	if s.phase == common.Close {
		return errPhaseExhausted
	}
	s.phase = common.Close
	return nil
}

// Phase returns the current phase
func (s *Scheduler) Phase() common.Phase {
	return s.phase
}

// CurrentDate returns the date under the cursor, or zero before the first
// Advance and after the last
func (s *Scheduler) CurrentDate() time.Time {
	if s.cursor < 0 || s.cursor >= len(s.dates) {
		return time.Time{}
	}
	return s.dates[s.cursor]
}

// EligibleSymbols returns a copy of the current date's eligible symbols in
// sorted order
func (s *Scheduler) EligibleSymbols() []string {
	resp := make([]string, len(s.eligible))
	copy(resp, s.eligible)
	return resp
}

// IsEligible reports whether the symbol is tradeable on the current date
func (s *Scheduler) IsEligible(symbol string) bool {
	_, ok := s.lookup[symbol]
	return ok
}

// StrategyStart is the first date with enough history to satisfy the lookback
func (s *Scheduler) StrategyStart() time.Time {
	return s.dates[s.lookback-1]
}

// StrategyEnd is the last date of the index
func (s *Scheduler) StrategyEnd() time.Time {
	return s.dates[len(s.dates)-1]
}

// StrategyActive reports whether the current date is on or after the
// strategy start
func (s *Scheduler) StrategyActive() bool {
	return s.cursor >= s.lookback-1 && s.cursor < len(s.dates)
}

// Lookback returns the configured lookback window
func (s *Scheduler) Lookback() int {
	return s.lookback
}

// Dates returns a copy of the full date index
func (s *Scheduler) Dates() []time.Time {
	resp := make([]time.Time, len(s.dates))
	copy(resp, s.dates)
	return resp
}
